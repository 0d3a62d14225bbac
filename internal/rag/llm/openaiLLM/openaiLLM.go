package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/customHttpClient"
	"github.com/jortega/docrag/internal/rag/llm"
	"github.com/jortega/docrag/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client    openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		newOpenAIClient(apikey, modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func newOpenAIClient(apikey string, modelName string) {
	if apikey == "" {
		logger.Error("OpenAI API key is empty, chat client not created")
		return
	}
	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.Pooled()),
	)
	openaiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("OpenAI chat client created", "model", modelName)
}

func (c *llmClient) Model() string {
	return c.modelName
}

func (c *llmClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       c.modelName,
		Temperature: openai.Float(config.LLMTemperature),
		MaxTokens:   openai.Int(config.AnswerMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
