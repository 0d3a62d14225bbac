package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit      InternalStatus = "IngestInit"
	ChunkingStep    InternalStatus = "Chunking"
	EmbeddingStep   InternalStatus = "EmbeddingAPI"
	IndexUpsertStep InternalStatus = "IndexUpsert"
	Complete        InternalStatus = "Complete"
	Error           InternalStatus = "Error"
)

// Job tracks one asynchronous document ingestion. Queries run synchronously
// and never become jobs.
type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	Payload     IngestPayload  `json:"payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"can_retry"`
}

type IngestPayload struct {
	DocumentId   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	ChunkCount   int    `json:"chunk_count,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobId string)
}
