// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	config          *Config
	embeddingClient *openai.Client
	llmClient       *openai.Client
	logger          Logger
}

func NewOpenAIProvider(config *Config, logger Logger) (*OpenAIProvider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	llmConfig := openai.DefaultConfig(config.LLMKey)
	llmConfig.BaseURL = config.LLMBaseURL

	embeddingConfig := openai.DefaultConfig(config.embeddingKey())
	embeddingConfig.BaseURL = config.embeddingBaseURL()

	return &OpenAIProvider{
		config:          config,
		embeddingClient: openai.NewClientWithConfig(embeddingConfig),
		llmClient:       openai.NewClientWithConfig(llmConfig),
		logger:          logger,
	}, nil
}

func (p *OpenAIProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// CreateEmbeddings embeds texts in one request. The result is index-aligned
// with the input.
func (p *OpenAIProvider) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, NewValidationError("embedding", "no input texts")
	}
	if p.config.EmbeddingModel == "" {
		return nil, NewConfigError("embedding model is not configured")
	}

	var vectors [][]float32
	err := p.retryWithTimeout(ctx, "embedding", func(ctx context.Context) error {
		resp, err := p.embeddingClient.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) != len(texts) {
			return &AIError{
				Type:      ErrTypeProvider,
				Operation: "embedding",
				Message:   "embedding count does not match input count",
				Model:     p.config.EmbeddingModel,
			}
		}

		out := make([][]float32, len(texts))
		for i, d := range resp.Data {
			idx := d.Index
			if idx < 0 || idx >= len(out) {
				idx = i
			}
			if len(d.Embedding) == 0 {
				return &AIError{Type: ErrTypeProvider, Operation: "embedding", Message: "empty embedding response"}
			}
			out[idx] = d.Embedding
		}
		vectors = out
		return nil
	})
	if err != nil {
		return nil, wrapProviderError("embedding", "failed to create embeddings", p.config.EmbeddingModel, err)
	}
	return vectors, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", NewValidationError("completion", "no messages")
	}

	var reply string
	err := p.retryWithTimeout(ctx, "completion", func(ctx context.Context) error {
		resp, err := p.llmClient.CreateChatCompletion(ctx, p.request(messages, false))
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return &AIError{Type: ErrTypeModel, Operation: "completion", Message: "empty completion response", Model: p.config.ChatModel}
		}
		reply = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", wrapProviderError("completion", "failed to create completion", p.config.ChatModel, err)
	}
	return reply, nil
}

// StreamCompletion retries opening the stream only. Once fragments have been
// delivered a failure is returned as is.
func (p *OpenAIProvider) StreamCompletion(ctx context.Context, messages []Message, onDelta func(string) error) error {
	if len(messages) == 0 {
		return NewValidationError("streaming", "no messages")
	}

	var stream *openai.ChatCompletionStream
	err := p.retryWithTimeout(ctx, "streaming", func(attemptCtx context.Context) error {
		// The stream outlives this attempt, so it is opened on the caller's context.
		s, err := p.llmClient.CreateChatCompletionStream(ctx, p.request(messages, true))
		if err != nil {
			return err
		}
		stream = s
		return nil
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			p.logger.Error("OpenAI API error",
				"status", apiErr.HTTPStatusCode,
				"type", apiErr.Type,
				"message", apiErr.Message)
		}
		return wrapProviderError("streaming", "failed to create stream", p.config.ChatModel, err)
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return wrapProviderError("streaming", "stream receive error", p.config.ChatModel, err)
		}

		for _, choice := range response.Choices {
			if delta := choice.Delta.Content; delta != "" && onDelta != nil {
				if cbErr := onDelta(delta); cbErr != nil {
					return cbErr
				}
			}
		}
	}
}

func (p *OpenAIProvider) GetStatus(ctx context.Context) ProviderStatus {
	status := ProviderStatus{LLMHealthy: true, EmbeddingHealthy: true}

	if _, err := p.llmClient.ListModels(ctx); err != nil {
		status.LLMHealthy = false
		status.Message = err.Error()
	}
	if p.config.EmbeddingModel != "" {
		if _, err := p.CreateEmbedding(ctx, "health check"); err != nil {
			status.EmbeddingHealthy = false
			status.Message = err.Error()
		}
	}

	status.IsHealthy = status.LLMHealthy && status.EmbeddingHealthy
	if status.IsHealthy {
		status.Message = "OpenAI-compatible provider healthy"
	}
	return status
}

func (p *OpenAIProvider) request(messages []Message, stream bool) openai.ChatCompletionRequest {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       p.config.ChatModel,
		Messages:    out,
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
		Stream:      stream,
	}
}

func wrapProviderError(operation, msg, model string, err error) error {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr
	}
	e := NewProviderError(operation, msg, err)
	e.Model = model
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		e.Code = apiErr.HTTPStatusCode
		if apiErr.HTTPStatusCode == 429 {
			e.Type = ErrTypeRateLimit
		}
	}
	return e
}
