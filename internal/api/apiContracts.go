package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status       string `json:"status"`
	DocumentId   string `json:"document_id,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
	ChunkCount   int    `json:"chunk_count,omitempty"`
}

type InitJobResponse struct {
	Id         string `json:"id"`
	DocumentId string `json:"document_id"`
	StatusURL  string `json:"status_url"`
}

type AnswerResponse struct {
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
	Grounded  bool     `json:"grounded"`
}

type DocumentInfo struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Length     int       `json:"length"`
	IngestedAt time.Time `json:"ingested_at"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

// requests---------------------

type QueryRequest struct {
	Question   string  `json:"question" validate:"required"`
	DocumentId string  `json:"document_id,omitempty"`
	TopK       int     `json:"top_k,omitempty"`
	Threshold  float32 `json:"threshold,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
