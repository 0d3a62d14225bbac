package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jortega/docrag/internal/adapter"
	"github.com/jortega/docrag/internal/adapter/utils"
	"github.com/jortega/docrag/internal/api"
	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/rag"
	"github.com/jortega/docrag/internal/rag/ingest"
	"github.com/jortega/docrag/pkg/logger_i"
)

var (
	logRH       *logger_i.Logger
	_ragService rag.Service
	_docStore   ragModel.DocumentStore
)

type newJobData struct {
	id           string
	traceId      string
	documentId   string
	documentName string
}

func InitRequestHandler(ragService rag.Service, docStore ragModel.DocumentStore) {
	_ragService = ragService
	_docStore = docStore
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PostDocumentHandler handles the uploading of PDF, DOCX or plaintext documents.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, extracts its text, stores the document and queues an ingestion job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "The PDF, DOCX or text file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id and document id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields, unsupported type or file too large"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or write error"
// @Router       /documents [post]
func PostDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	const maxUploadSize = 32 << 20 //32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := r.FormValue("document_name")
	if docName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if ingest.GetDocType(fileMetadata.Filename) == ingest.ERR {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Unsupported document type")
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		destinationFileWriter.Close()
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}
	destinationFileWriter.Close()
	defer os.Remove(tempFilePath)

	text, err := ingest.ExtractText(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not extract document text")
		return
	}
	if text == "" {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Document is empty")
		return
	}
	if len(text) > config.MaxDocumentBytes {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Document exceeds the maximum size")
		return
	}

	doc := ragModel.Document{
		Id:         utils.GetNewUUID(),
		Name:       docName,
		Text:       text,
		Length:     len(text),
		IngestedAt: time.Now(),
	}
	if err := _docStore.SaveDocument(r.Context(), doc); err != nil {
		logRH.Error("Failed to store document", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	newJob := newJobData{
		id:           utils.GetNewUUID(),
		traceId:      traceIdFrom(r),
		documentId:   doc.Id,
		documentName: docName,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, doc.Id))
}

// GetStatusHandler godoc
// @Summary      Get ingestion job status
// @Description  Retrieves the current status of an ingestion job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse "The current status of the job"
// @Failure      404  {object}  api.JobResponse "Job not found"
// @Router       /jobs/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceIdFrom(r))

	logRH.Debug("Get Status Request", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// QueryHandler godoc
// @Summary      Ask a question over the indexed documents
// @Description  Embeds the question, retrieves relevant chunks and returns a grounded answer with citations. Answers with grounded=false when no evidence clears the threshold.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "Question with optional document scope, top_k and threshold"
// @Success      200      {object}  api.AnswerResponse "Answer with citations"
// @Failure      400      {object}  api.JobResponse "Invalid request data"
// @Failure      502      {object}  api.JobResponse "A dependency failed"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	var requestData api.QueryRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Question == "" {
		logRH.Warn("Bad query request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "question is required")
		return
	}

	answer, err := _ragService.Query(r.Context(), ragModel.Query{
		Question:   requestData.Question,
		DocumentId: requestData.DocumentId,
		TopK:       requestData.TopK,
		Threshold:  requestData.Threshold,
	})
	if err != nil {
		logRH.Error("Query failed", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "", "Could not retrieve evidence due to a system error")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAnswerResponse(requestData.Question, answer))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document and all of its indexed chunks.
// @Tags         Ingestion
// @Produce      json
// @Param        id   path  string  true  "Document ID"
// @Success      204  "Deleted"
// @Failure      502  {object}  api.JobResponse "Index failure"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")

	if err := _ragService.DeleteDocument(r.Context(), id); err != nil {
		logRH.Error("Delete failed", "documentId", id, "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, id, "Could not delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocumentsHandler godoc
// @Summary      List ingested documents
// @Tags         Ingestion
// @Produce      json
// @Success      200  {array}  api.DocumentInfo
// @Failure      500  {object}  api.JobResponse "Store failure"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	docs, err := _docStore.ListDocuments(r.Context())
	if err != nil {
		logRH.Error("List documents failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list documents")
		return
	}

	infos := make([]api.DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, adapter.ToDocumentInfo(doc))
	}
	writeJsonResponse(w, http.StatusOK, infos)
}

// SummaryHandler godoc
// @Summary      Summarize the indexed corpus
// @Description  Samples indexed chunks across all documents and generates a global summary.
// @Tags         Query
// @Produce      json
// @Success      200  {object}  api.SummaryResponse
// @Failure      502  {object}  api.JobResponse "A dependency failed"
// @Router       /summary [post]
func SummaryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	summary, err := _ragService.Summarize(r.Context())
	if err != nil {
		logRH.Error("Summary failed", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "", "Could not generate summary")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.SummaryResponse{Summary: summary})
}
