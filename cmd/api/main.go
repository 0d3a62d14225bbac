// @title           Document RAG API
// @version         1.0
// @description     Document ingestion and grounded question answering over an indexed corpus
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/data/store"
	"github.com/jortega/docrag/internal/domain/jobModel"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/handlers"
	"github.com/jortega/docrag/internal/job"
	"github.com/jortega/docrag/internal/mcpserver"
	"github.com/jortega/docrag/internal/rag"
	"github.com/jortega/docrag/internal/rag/embedding"
	"github.com/jortega/docrag/internal/rag/embedding/googleEmbedding"
	"github.com/jortega/docrag/internal/rag/embedding/openaiEmbedding"
	"github.com/jortega/docrag/internal/rag/llm"
	"github.com/jortega/docrag/internal/rag/llm/gemini"
	"github.com/jortega/docrag/internal/rag/llm/openaiLLM"
	"github.com/jortega/docrag/internal/rag/vectorDB"
	"github.com/jortega/docrag/internal/rag/vectorDB/memoryDB"
	"github.com/jortega/docrag/internal/rag/vectorDB/qdrantDB"
	"github.com/jortega/docrag/internal/server"
	"github.com/jortega/docrag/internal/worker"
	"github.com/jortega/docrag/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//job store, with in-memory fallback when redis is offline
	var jobStore jobModel.JobStore
	if redisJobs := store.GetRedisJobStore(serviceContext); redisJobs != nil {
		jobStore = redisJobs
	} else {
		logger.Error("Redis job store is offline, falling back to in-memory")
		jobStore = store.InitInMemoryJobStore()
	}

	var docStore ragModel.DocumentStore
	if redisDocs := store.GetRedisDocStore(serviceContext); redisDocs != nil {
		docStore = redisDocs
	} else {
		logger.Error("Redis document store is offline, falling back to in-memory")
		docStore = store.InitInMemoryDocStore()
	}

	var vectorCache embedding.VectorCache
	if redisCache := store.GetRedisVectorCache(serviceContext); redisCache != nil {
		vectorCache = redisCache
	} else {
		logger.Error("Redis vector cache is offline, falling back to in-memory")
		vectorCache = embedding.NewMemoryCache()
	}

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	//vector index, with in-memory fallback when qdrant is offline
	var index vectorDB.Index
	if qdrant := qdrantDB.GetQdrantClient(serviceContext); qdrant != nil {
		index = qdrant
	} else {
		logger.Error("Qdrant is offline, falling back to in-memory index")
		index = memoryDB.NewStore(config.EmbeddingDimension)
	}

	provider, llmProvider := initProviders(serviceContext, logger)
	if provider == nil || llmProvider == nil {
		logger.Error("No embedding or generation provider available. Shutting down.",
			"embedding", provider != nil, "llm", llmProvider != nil)
		return
	}

	embedder := embedding.NewManager(provider, vectorCache)
	ragService := rag.NewService(index, llmProvider, embedder, docStore)

	handlers.InitJobHandler(service)
	handlers.InitRequestHandler(ragService, docStore)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	mcpServer := mcpserver.NewServer(ragService, docStore)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, mcpServer.Handler())

	<-stopExecution
	logger.Info("Server stopped")
}

// initProviders picks the embedding and generation providers from the
// available credentials. OpenAI is preferred, Gemini is the alternative.
func initProviders(ctx context.Context, logger *logger_i.Logger) (embedding.Provider, llm.Provider) {
	var provider embedding.Provider
	var llmProvider llm.Provider

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		logger.Info("Using OpenAI providers")
		if p := openaiEmbedding.GetOpenAIEmbeddingClient(key, config.EmbeddingModel); p != nil {
			provider = p
		}
		if p := openaiLLM.GetOpenAIClient(key, config.LLMModel); p != nil {
			llmProvider = p
		}
		return provider, llmProvider
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		logger.Info("Using Gemini providers")
		if p := googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, key); p != nil {
			provider = p
		}
		if p := gemini.GetGeminiClient(ctx, config.GeminiModelName, key); p != nil {
			llmProvider = p
		}
		return provider, llmProvider
	}

	logger.Error("Neither OPENAI_API_KEY nor GEMINI_API_KEY is set")
	return nil, nil
}
