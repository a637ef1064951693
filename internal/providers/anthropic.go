package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic implements the Provider interface for Anthropic's API.
type Anthropic struct {
	apiKey string
	model  string
	client *http.Client
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(model string) (*Anthropic, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, &AuthError{Provider: "anthropic", Message: "ANTHROPIC_API_KEY environment variable is not set"}
	}
	return &Anthropic{
		apiKey: key,
		model:  model,
		client: &http.Client{Timeout: 300 * time.Second},
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Complete(ctx context.Context, req Request) (Response, error) {
	body := newAnthropicRequest(req)
	body.Model = a.model

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}
	var result anthropicResponse
	if err := postJSON(ctx, a.client, a.Name(), anthropicAPIURL, headers, body, &result); err != nil {
		return Response{}, err
	}
	return result.toResponse()
}

func newAnthropicRequest(req Request) anthropicRequest {
	temp := req.Temperature
	return anthropicRequest{
		MaxTokens:   maxTokens(req),
		Temperature: &temp,
		System:      req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
}

// anthropicRequest is the Messages API body; Bedrock reuses it with
// AnthropicVersion set and Model left empty.
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version,omitempty"`
	Model            string             `json:"model,omitempty"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      *float64           `json:"temperature,omitempty"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (r anthropicResponse) toResponse() (Response, error) {
	var content strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return Response{}, fmt.Errorf("empty text content in API response")
	}
	return Response{
		Content:    content.String(),
		TokensUsed: r.Usage.InputTokens + r.Usage.OutputTokens,
	}, nil
}
