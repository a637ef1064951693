package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	bedrockAnthropicVersion = "bedrock-2023-05-31"
	defaultBedrockModel     = "anthropic.claude-3-5-haiku-20241022-v1:0"
)

type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Bedrock implements the Provider interface for Claude models served by AWS
// Bedrock. Credentials come from the default AWS chain.
type Bedrock struct {
	model  string
	client bedrockInvoker
}

// NewBedrock creates a Bedrock provider. An empty region falls back to
// AWS_REGION and the shared AWS config.
func NewBedrock(model, region string) (*Bedrock, error) {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if model == "" {
		model = defaultBedrockModel
	}
	return &Bedrock{
		model:  model,
		client: bedrockruntime.NewFromConfig(cfg),
	}, nil
}

func (b *Bedrock) Name() string { return "bedrock" }

func (b *Bedrock) Complete(ctx context.Context, req Request) (Response, error) {
	body := newAnthropicRequest(req)
	body.AnthropicVersion = bedrockAnthropicVersion

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.model),
		Body:        payload,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return Response{}, b.classify(err)
	}

	var result anthropicResponse
	if err := json.Unmarshal(out.Body, &result); err != nil {
		return Response{}, fmt.Errorf("parsing response: %w", err)
	}
	return result.toResponse()
}

func (b *Bedrock) classify(err error) error {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return &RateLimitError{Provider: b.Name(), Message: throttled.ErrorMessage()}
	}
	var quota *types.ServiceQuotaExceededException
	if errors.As(err, &quota) {
		return &RateLimitError{Provider: b.Name(), Message: quota.ErrorMessage()}
	}
	var denied *types.AccessDeniedException
	if errors.As(err, &denied) {
		return &AuthError{Provider: b.Name(), Message: denied.ErrorMessage()}
	}
	return fmt.Errorf("invoking model: %w", err)
}
