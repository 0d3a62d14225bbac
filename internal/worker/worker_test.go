package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jortega/docrag/internal/domain/jobModel"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/job"
)

// MockRagService tracks how many jobs reached the pipeline.
type MockRagService struct {
	ProcessedCount int32
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	j.Status = jobModel.JobStatusComplete
	return j
}

func (m *MockRagService) Query(ctx context.Context, q ragModel.Query) (ragModel.Answer, error) {
	return ragModel.Answer{}, nil
}

func (m *MockRagService) Summarize(ctx context.Context) (string, error) {
	return "", nil
}

func (m *MockRagService) DeleteDocument(ctx context.Context, id string) error {
	return nil
}

type MockJobStore struct {
	mu    sync.Mutex
	saved []jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobId string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, j)
	return nil
}

func (m *MockJobStore) lastStatus() (jobModel.JobStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return "", false
	}
	return m.saved[len(m.saved)-1].Status, true
}

func TestWorkerPool_Flow(t *testing.T) {
	jobStore := &MockJobStore{}
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          jobStore,
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-1", TraceId: "trace-1"}
		jobSvc.JobChannel <- testJob

		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}

		status, ok := jobStore.lastStatus()
		if !ok {
			t.Fatal("job status was never persisted")
		}
		if status != jobModel.JobStatusComplete {
			t.Errorf("Expected final status COMPLETE, got %s", status)
		}
	})

	t.Run("Stop signal retires a worker", func(t *testing.T) {
		before := atomic.LoadInt64(&currentWorkerCount)
		stopChan <- true

		time.Sleep(50 * time.Millisecond)

		after := atomic.LoadInt64(&currentWorkerCount)
		if after >= before {
			t.Errorf("Expected worker count to drop from %d, got %d", before, after)
		}
	})
}
