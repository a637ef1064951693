package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/diogo-cruz/literature-review/internal/redact"
)

// OpenAI implements the Provider interface on top of the official SDK. The
// SDK's own retries are disabled; package ratelimit owns retrying.
type OpenAI struct {
	model  string
	client openai.Client
}

// NewOpenAI creates a new OpenAI provider. LITREVIEW_OPENAI_BASE_URL points it
// at a compatible endpoint.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, &AuthError{Provider: "openai", Message: "OPENAI_API_KEY environment variable is not set"}
	}
	return newOpenAI(model, key, os.Getenv("LITREVIEW_OPENAI_BASE_URL")), nil
}

func newOpenAI(model, apiKey, baseURL string, extra ...option.RequestOption) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: 300 * time.Second}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)
	return &OpenAI{model: model, client: openai.NewClient(opts...)}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Complete(ctx context.Context, req Request) (Response, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(maxTokens(req))),
		Temperature:         openai.Float(req.Temperature),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, o.classify(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("no choices in response")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return Response{}, fmt.Errorf("empty text content in API response")
	}
	return Response{
		Content:    content,
		TokensUsed: int(resp.Usage.TotalTokens),
	}, nil
}

func (o *OpenAI) classify(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return redact.Error(fmt.Errorf("sending request: %w", err))
	}
	msg := truncate(apiErr.Message)
	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		rl := &RateLimitError{Provider: o.Name(), Message: msg}
		if apiErr.Response != nil {
			rl.RetryAfter = retryAfter(apiErr.Response.Header)
		}
		return rl
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: o.Name(), Message: msg}
	default:
		return &StatusError{Provider: o.Name(), StatusCode: apiErr.StatusCode, Body: msg}
	}
}
