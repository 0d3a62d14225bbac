package openaiEmbedding

import (
	"context"
	"sync"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/customHttpClient"
	"github.com/jortega/docrag/internal/rag/embedding"
	"github.com/jortega/docrag/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	logger          *logger_i.Logger
	once            sync.Once
	embeddingClient *client
)

type client struct {
	api   openai.Client
	model string
}

// GetOpenAIEmbeddingClient is the default embedding provider
// (text-embedding-3-small, the model the corpus was indexed with). Returns
// nil when no API key is supplied.
func GetOpenAIEmbeddingClient(apikey string, model string) embedding.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI API key missing, embedding client unavailable")
			return
		}
		embeddingClient = &client{
			api: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithHTTPClient(customHttpClient.Pooled()),
			),
			model: model,
		}
		logger.Info("OpenAI embedding client created", "model", model)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) Model() string { return c.model }

func (c *client) Dimension() int { return config.EmbeddingDimension }

func (c *client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.WithTrace(ctx)

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:          openai.EmbeddingModel(c.model),
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions:     openai.Int(int64(config.EmbeddingDimension)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		log.Error("OpenAI embedding call failed", "error", err)
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		vectors[int(item.Index)] = vec
	}
	return vectors, nil
}
