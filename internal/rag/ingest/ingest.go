package ingest

import (
	"path/filepath"
	"strings"

	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/pkg/logger_i"
)

var logger = logger_i.NewLogger("ingest")

type DocType string

const (
	PDF  DocType = "pdf"
	DOCX DocType = "docx"
	ERR  DocType = "unsupported"
)

func GetDocType(docPath string) DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return PDF
	case ".docx", ".txt", ".rtf", ".odt", ".md":
		return DOCX
	default:
		return ERR
	}
}

// ExtractText pulls the plain text out of an uploaded file. The document
// type is derived from the file extension; unsupported types fail with
// IngestionError so the caller can reject the upload up front.
func ExtractText(path string) (string, error) {
	docType := GetDocType(path)
	logger.Debug("extracting document", "path", path, "type", docType)

	switch docType {
	case PDF:
		return extractPDF(path)
	case DOCX:
		return extractdocxTxtRtf(path)
	default:
		return "", &ragModel.IngestionError{Reason: "unsupported document type " + filepath.Ext(path)}
	}
}
