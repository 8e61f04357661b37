package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"genai-chatbot-be/pkg/llm"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// OpenAIProvider talks to any OpenAI-compatible Chat Completions endpoint.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, baseURL, model string, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	options := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		options = append(options, option.WithAPIKey(apiKey))
	}

	return &OpenAIProvider{
		client: openai.NewClient(options...),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Generate sends the prompt as one user message. top_k is not part of the
// Chat Completions API and is not sent.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	opts := llm.NewOptions(options...)

	param := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if opts.Model != "" {
		param.Model = opts.Model
	}
	if opts.Temperature != nil {
		param.Temperature = openai.Float(*opts.Temperature)
	}
	if opts.TopP != nil {
		param.TopP = openai.Float(*opts.TopP)
	}
	if opts.MaxTokens > 0 {
		param.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, param)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", llm.ErrMalformedResponse)
	}

	choice := completion.Choices[0]
	return &llm.Completion{
		Text:  choice.Message.Content,
		Model: completion.Model,
		Metadata: map[string]interface{}{
			"provider":      p.Name(),
			"finish_reason": choice.FinishReason,
			"usage": map[string]interface{}{
				"prompt_tokens":     completion.Usage.PromptTokens,
				"completion_tokens": completion.Usage.CompletionTokens,
				"total_tokens":      completion.Usage.TotalTokens,
			},
		},
	}, nil
}
