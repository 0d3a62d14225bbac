package adapter

import (
	"fmt"
	"time"

	"github.com/jortega/docrag/internal/api"
	"github.com/jortega/docrag/internal/domain/jobModel"
	"github.com/jortega/docrag/internal/domain/ragModel"
)

func ToInitJobResponse(id string, documentId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:         id,
		DocumentId: documentId,
		StatusURL:  fmt.Sprintf("jobs/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:       string(job.Status),
		DocumentId:   job.Payload.DocumentId,
		DocumentName: job.Payload.DocumentName,
		ChunkCount:   job.Payload.ChunkCount,
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToAnswerResponse(question string, answer ragModel.Answer) api.AnswerResponse {
	return api.AnswerResponse{
		Question:  question,
		Answer:    answer.Text,
		Citations: answer.Citations,
		Grounded:  answer.Grounded,
	}
}

func ToDocumentInfo(doc ragModel.Document) api.DocumentInfo {
	return api.DocumentInfo{
		Id:         doc.Id,
		Name:       doc.Name,
		Length:     doc.Length,
		IngestedAt: doc.IngestedAt,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
