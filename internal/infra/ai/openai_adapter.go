// File: internal/infra/ai/openai_adapter.go
package ai

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"nexus-ai-portal/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter handles image generation through the official SDK.
type OpenAIAdapter struct {
	client openai.Client
}

func NewOpenAIAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	return &OpenAIAdapter{client: openai.NewClient(option.WithAPIKey(apiKey))}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) GenerateText(context.Context, string, string) (string, error) {
	return "", errors.New("openai: text generation not wired")
}

func (o *OpenAIAdapter) GenerateImage(ctx context.Context, prompt string) (*adapter.GeneratedImage, error) {
	res, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModelDallE3,
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, errors.New("openai: empty image response")
	}
	return &adapter.GeneratedImage{
		URL:     res.Data[0].URL,
		B64Data: res.Data[0].B64JSON,
	}, nil
}
