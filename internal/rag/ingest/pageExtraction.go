package ingest

import (
	"errors"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/lu4p/cat"
)

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening pdf file", "error", err)
		return "", &ragModel.IngestionError{Reason: "failed to open pdf", Err: err}
	}

	var sb strings.Builder
	numPages := f.NumPage()
	logger.Debug("extractPDF", "pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// keep going, one bad page should not sink the document
			logger.Error("error parsing page content", "page", i, "error", err)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(content)
	}
	return sb.String(), nil
}

// File reads a .odt, .docx, .rtf or plaintext file and returns the content as a string
func extractdocxTxtRtf(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("error extracting content from doc", "error", err)
		return "", &ragModel.IngestionError{Reason: "failed to extract document text", Err: err}
	}
	return text, nil
}

// protectExtract guards against pdf pages whose content streams hang the
// parser. Extraction for a single page is capped at 10 seconds.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "timeout", page.V)
		return "", errors.New("timeout")
	}
}
