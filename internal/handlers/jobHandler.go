package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/jobModel"
	"github.com/jortega/docrag/internal/job"
	"github.com/jortega/docrag/internal/metrics"
	"github.com/jortega/docrag/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("job_handler")
		logRH = logger_i.NewLogger("request_handler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(newJob newJobData) {
	logJH.Info("Creating new ingestion job", "traceId", newJob.traceId, "jobId", newJob.id)
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {
	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.CurrentStep = jobModel.IngestInit
	_job.Payload.DocumentId = newJob.documentId
	_job.Payload.DocumentName = newJob.documentName

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //a blocking send to prevent the system from being overwhelmed
	logJH.Info("Queued new job", "jobId", _job.Id)

	// ingestion involves batch embedding calls which can take a while, so
	// every queued job nudges the dispatcher; idle workers retire on their
	// own which keeps the pool small between uploads
	atomic.AddInt64(&h.service.RequestCount, 1)
	h.service.DispatcherChannel <- true
}
