package customHttpClient

import (
	"net/http"

	"github.com/jortega/docrag/internal/config"
)

var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// Pooled returns the shared connection-reusing client handed to the OpenAI
// embedding and LLM SDK clients.
func Pooled() *http.Client {
	return &http.Client{Transport: pooledTransport}
}
