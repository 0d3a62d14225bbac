package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/jobModel"
	"github.com/jortega/docrag/internal/metrics"
)

// executeJob runs one ingestion job end to end under the job timeout.
// The trace id travels from the enqueueing request into the job context
// so ingestion logs correlate with the upload request.
func executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()
	logger.Debug("Processing job", "jobId", job.Id, "traceId", job.TraceId)

	saveJobState(ctx, job, jobModel.JobStatusRunning)

	job = _ragService.IngestDocument(ctx, job)

	job.EndTime = time.Now()
	saveJobState(ctx, job, job.Status)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, job jobModel.Job, jobStatus jobModel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to persist job status", "jobId", job.Id, "err", err)
	}
}
