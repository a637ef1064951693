package providers

import (
	"context"
	"fmt"
)

const defaultMaxTokens = 4000

// Request is a single completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the text returned by a provider.
type Response struct {
	Content    string
	TokensUsed int
}

// Provider sends one completion request to an LLM backend.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Option configures provider construction.
type Option func(*options)

type options struct {
	region string
}

// WithRegion sets the cloud region for providers that need one (Bedrock).
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// New creates a provider by name.
func New(provider, model string, opts ...Option) (Provider, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	case "bedrock":
		return NewBedrock(model, o.region)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// Names lists the accepted provider names, aliases included.
func Names() []string {
	return []string{"anthropic", "openai", "gemini", "google", "ollama", "lmstudio", "bedrock"}
}

func maxTokens(req Request) int {
	if req.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return req.MaxTokens
}
