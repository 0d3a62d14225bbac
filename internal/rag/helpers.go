package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/jobModel"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/metrics"
	"github.com/jortega/docrag/internal/rag/chunker"
	"github.com/jortega/docrag/pkg/logger_i"
)

func logStep(job *jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) {
	job.CurrentStep = status
	log.Debug("IngestDocument", "currentStep", job.CurrentStep)
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err, "jobId", job.Id)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func (s *service) executeChunkingStep(log *logger_i.Logger, job *jobModel.Job, doc ragModel.Document) ([]ragModel.Chunk, error) {
	logStep(job, jobModel.ChunkingStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chunking", time.Since(start)) }()

	return chunker.Split(doc.Id, doc.Text, config.ChunkMaxTokens, config.ChunkOverlapTokens)
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, chunks []ragModel.Chunk) ([][]float32, error) {
	logStep(job, jobModel.EmbeddingStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding_batch", time.Since(start)) }()

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return s.embedder.EmbedBatch(ctx, texts)
}

// executeUpsertStep replaces the document's entries in the index. Stale
// chunks from a prior version are deleted first so a shrinking document
// leaves no orphans, then the fresh set is written. Chunk ids are
// deterministic, so rerunning the same job overwrites instead of duplicating.
func (s *service) executeUpsertStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, doc ragModel.Document, chunks []ragModel.Chunk, vectors [][]float32) error {
	logStep(job, jobModel.IndexUpsertStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_upsert", time.Since(start)) }()

	if err := s.index.DeleteByDocument(ctx, doc.Id); err != nil {
		return err
	}

	entries := make([]ragModel.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = ragModel.IndexEntry{
			ChunkId:    chunk.Id(),
			Vector:     vectors[i],
			DocumentId: chunk.DocumentId,
			ChunkIndex: chunk.Index,
			Excerpt:    chunk.Text,
		}
	}
	return s.index.Upsert(ctx, entries)
}
