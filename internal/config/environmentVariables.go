package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//server
	ServerListenAddr       = ":3000"
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//chunking
	//budgets are in estimated tokens, ~4 chars per token
	ChunkMaxTokens    = 200
	ChunkOverlapTokens = 25
	MaxDocumentBytes  = 8 << 20 //8mb of extracted text
	CharsPerToken     = 4

	//embedding
	EmbeddingDimension   = 1536
	EmbeddingModel       = "text-embedding-3-small"
	EmbedBatchSize       = 50
	EmbedConcurrency     = 4
	EmbedMaxAttempts     = 3
	EmbedBackoffBase     = 500 * time.Millisecond
	EmbedCallTimeout     = 30 * time.Second
	GoogleEmbeddingModel = "gemini-embedding-001"

	//retrieval
	DefaultTopK        = 4
	DefaultScoreThreshold float32 = 0.30
	LexicalBoostWeight    float32 = 0.05

	//context assembly
	ContextMaxTokens = 1500

	//generation
	LLMModel          = "gpt-4o-mini"
	GeminiModelName   = "gemini-2.5-flash"
	LLMTemperature    = 0.2
	AnswerMaxTokens   = 500
	GenerateTimeout   = 45 * time.Second
	GenerateAttempts  = 2
	QueryTimeout      = 60 * time.Second
	RefusalAnswer     = "I could not find relevant evidence in the indexed documents to answer this question."

	//global summary
	MaxSummaryChunks  = 20
	SummaryMaxTokens  = 500
	SummaryCharBudget = 20000

	//vector index
	CollectionName          = "docrag-chunks"
	QdrantHost              = ""
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	QdrantScanPageSize      = 256
	QdrantScanMaxPoints     = 10000

	//worker pool for ingestion jobs
	MinWorkerCount    int64 = 1
	MaxWorkerCount    int64 = 10
	IdleWorkerTimeout       = 1 * time.Minute
	IngestJobTimeout        = 5 * time.Minute
	BufferLimit             = 100

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisJobStoreDB     = 0
	RedisDocStoreDB     = 1
	RedisVectorCacheDB  = 2

	RedisJobStoreTTL    = 24 * time.Hour
	RedisDocStoreTTL    = 0 //documents do not expire
	RedisVectorCacheTTL = 7 * 24 * time.Hour

	//shared outbound http client
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
)
