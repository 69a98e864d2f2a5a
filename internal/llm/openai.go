package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements the LLM interface against any OpenAI-compatible
// chat-completions endpoint (hosted providers expose one, as do local serving
// stacks).
type OpenAIClient struct {
	client openai.Client
	model  string
}

// OpenAIOption is a functional option for configuring OpenAIClient.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	apiKey  string
	baseURL string
	model   string
}

// WithAPIKey sets the API key for the endpoint.
func WithAPIKey(key string) OpenAIOption {
	return func(c *openAIConfig) {
		c.apiKey = key
	}
}

// WithOpenAIBaseURL points the client at a compatible endpoint other than
// api.openai.com.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// WithOpenAIModel sets the default model for the client.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *openAIConfig) {
		c.model = model
	}
}

// NewOpenAIClient creates a new OpenAI-compatible LLM client.
func NewOpenAIClient(opts ...OpenAIOption) *OpenAIClient {
	cfg := &openAIConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var reqOpts []option.RequestOption
	if cfg.apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.apiKey))
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		model:  cfg.model,
	}
}

func (c *OpenAIClient) buildParams(prompt string, opts GenerateOptions) openai.ChatCompletionNewParams {
	model := opts.Model
	if model == "" {
		model = c.model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if opts.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(opts.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(model),
		Temperature: openai.Float(float64(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	return params
}

// Generate sends a prompt and returns the complete response text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, c.buildParams(prompt, opts))
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// GenerateStream sends a prompt and streams response chunks.
func (c *OpenAIClient) GenerateStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan StreamChunk, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.buildParams(prompt, opts))

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			select {
			case ch <- StreamChunk{Token: chunk.Choices[0].Delta.Content}:
			case <-ctx.Done():
				ch <- StreamChunk{Error: ctx.Err(), Done: true}
				return
			}
		}
		if err := stream.Err(); err != nil {
			ch <- StreamChunk{Error: fmt.Errorf("stream failed: %w", err), Done: true}
			return
		}
		ch <- StreamChunk{Done: true}
	}()

	return ch, nil
}

// Ensure OpenAIClient implements LLM interface.
var _ LLM = (*OpenAIClient)(nil)
