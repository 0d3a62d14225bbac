package rag

import (
	"context"
	"time"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/jobModel"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/metrics"
	"github.com/jortega/docrag/internal/rag/assembler"
	"github.com/jortega/docrag/internal/rag/embedding"
	"github.com/jortega/docrag/internal/rag/generator"
	"github.com/jortega/docrag/internal/rag/llm"
	"github.com/jortega/docrag/internal/rag/retriever"
	"github.com/jortega/docrag/internal/rag/summarizer"
	"github.com/jortega/docrag/internal/rag/vectorDB"
	"github.com/jortega/docrag/pkg/logger_i"
)

// Service is the only contract the worker and the handlers see. They do not
// need to know which index or which model provider sits behind it.
type Service interface {
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	Query(ctx context.Context, query ragModel.Query) (ragModel.Answer, error)
	Summarize(ctx context.Context) (string, error)
	DeleteDocument(ctx context.Context, documentId string) error
}

type service struct {
	index      vectorDB.Index
	embedder   embedding.Embedder
	retriever  *retriever.Retriever
	generator  *generator.Generator
	summarizer *summarizer.Summarizer
	docStore   ragModel.DocumentStore
	logger     *logger_i.Logger
}

// NewService wires the pipeline. Swapping the index or the provider for
// mocks in tests touches nothing but this constructor.
func NewService(index vectorDB.Index, provider llm.Provider, em embedding.Embedder, docs ragModel.DocumentStore) Service {
	return &service{
		index:      index,
		embedder:   em,
		retriever:  retriever.NewRetriever(em, index),
		generator:  generator.NewGenerator(provider),
		summarizer: summarizer.NewSummarizer(index, provider),
		docStore:   docs,
		logger:     logger_i.NewLogger("rag_service"),
	}
}

// IngestDocument runs the full ingestion pipeline for one job: chunk the
// stored document, embed every chunk, then replace the document's entries
// in the index. Embedding is all-or-nothing, so a query never observes a
// partially indexed document.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	inMethodLogger := s.logger.WithTrace(ctx).With("jobId", job.Id, "documentId", job.Payload.DocumentId)

	doc, found := s.docStore.GetDocument(ctx, job.Payload.DocumentId)
	if !found {
		return s.jobError(job, &ragModel.IngestionError{Reason: "document not found"}, "INGESTION_FAILURE", false)
	}

	chunks, err := s.executeChunkingStep(inMethodLogger, &job, doc)
	if err != nil {
		return s.jobError(job, err, "CHUNKING_FAILURE", false)
	}

	vectors, err := s.executeEmbeddingStep(ctx, inMethodLogger, &job, chunks)
	if err != nil {
		return s.jobError(job, err, "EMBEDDING_FAILURE", true)
	}

	if err := s.executeUpsertStep(ctx, inMethodLogger, &job, doc, chunks, vectors); err != nil {
		return s.jobError(job, err, "INDEX_UPSERT_FAILURE", true)
	}

	job.Payload.ChunkCount = len(chunks)
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	inMethodLogger.Info("document ingested", "chunks", len(chunks))
	return job
}

// Query is the synchronous path: embed the question, retrieve, assemble a
// bounded context and generate a grounded answer.
func (s *service) Query(ctx context.Context, query ragModel.Query) (ragModel.Answer, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query", time.Since(start)) }()

	processCtx, cancel := context.WithTimeout(ctx, config.QueryTimeout)
	defer cancel()

	result, err := s.retriever.Retrieve(processCtx, query)
	if err != nil {
		return ragModel.Answer{}, err
	}

	contextText, manifest := assembler.Assemble(result)

	return s.generator.Answer(processCtx, query.Question, contextText, manifest)
}

func (s *service) Summarize(ctx context.Context) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("summary", time.Since(start)) }()

	return s.summarizer.Summarize(ctx)
}

// DeleteDocument removes the document's chunks from the index and the
// document itself from the store.
func (s *service) DeleteDocument(ctx context.Context, documentId string) error {
	if err := s.index.DeleteByDocument(ctx, documentId); err != nil {
		return err
	}
	return s.docStore.DeleteDocument(ctx, documentId)
}
