package googleEmbedding

import (
	"context"
	"sync"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/rag/embedding"
	"github.com/jortega/docrag/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	logger          *logger_i.Logger
	once            sync.Once
	embeddingClient *client
)

var dimension int32 = config.EmbeddingDimension

type client struct {
	genAi *genai.Client
	model string
}

// GetGoogleEmbeddingClient is the alternative embedding provider, used when
// only GEMINI_API_KEY is set. Returns nil when the client cannot be
// initialized.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
		if err != nil {
			logger.Error("Error creating Google embedding client", "error", err)
			return
		}
		embeddingClient = &client{genAi: c, model: modelName}
		logger.Info("Google embedding client created", "model", modelName)
		go closeClient(ctx, embeddingClient)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func closeClient(ctx context.Context, c *client) {
	<-ctx.Done()
	logger.Info("Closing Google embedding client")
	c.genAi = nil
}

func (c *client) Model() string { return c.model }

func (c *client) Dimension() int { return int(dimension) }

func (c *client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.WithTrace(ctx)

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
			log.Error("Rate limit hit!", "error", err)
		} else {
			log.Error("Error getting embeddings from Google", "error", err)
		}
		return nil, err
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, r := range result.Embeddings {
		vectors = append(vectors, r.Values)
	}
	return vectors, nil
}
