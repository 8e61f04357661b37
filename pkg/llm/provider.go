package llm

import (
	"context"
	"errors"
)

// ErrMalformedResponse is wrapped when a provider answers 200 with a payload
// that carries no usable text.
var ErrMalformedResponse = errors.New("malformed provider response")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

// Options carries sampling parameters. Pointer fields are left to the
// provider default when nil.
type Options struct {
	Temperature *float64
	TopP        *float64
	TopK        *int
	MaxTokens   int
	Model       string // Override default model
}

func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = &temp
	}
}

func WithTopP(topP float64) Option {
	return func(o *Options) {
		o.TopP = &topP
	}
}

func WithTopK(topK int) Option {
	return func(o *Options) {
		o.TopK = &topK
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Completion is the generated text plus whatever the provider reported about it.
type Completion struct {
	Text     string
	Model    string
	Metadata map[string]interface{}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Generate sends a single prompt to the model
	Generate(ctx context.Context, prompt string, options ...Option) (*Completion, error)

	// Name identifies the backend in logs and telemetry
	Name() string
}
