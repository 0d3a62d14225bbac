package middleware

import (
	"net/http"
	"strconv"

	"github.com/jortega/docrag/internal/handlers"
	"github.com/jortega/docrag/internal/metrics"
	"github.com/jortega/docrag/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var GetHandler = Wrap(handlers.GetHandler)

var PostDocumentHandler = Wrap(handlers.PostDocumentHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var QueryHandler = Wrap(handlers.QueryHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var SummaryHandler = Wrap(handlers.SummaryHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	re = rateLimiter(re)
	return re
}
