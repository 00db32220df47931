// File: internal/infra/ai/noop_ai.go
package ai

import (
	"context"

	"nexus-ai-portal/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAdapter)(nil)

// NoopAdapter echoes canned output so the rest of the stack can run without
// provider credentials.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter { return &NoopAdapter{} }

func (NoopAdapter) Name() string { return "noop" }

func (NoopAdapter) GenerateText(_ context.Context, _, prompt string) (string, error) {
	return "echo: " + prompt, nil
}

func (NoopAdapter) GenerateImage(context.Context, string) (*adapter.GeneratedImage, error) {
	return &adapter.GeneratedImage{URL: "https://example.invalid/noop.png"}, nil
}
