package adapter

import "context"

// GeneratedImage is a provider-agnostic image result: either a hosted URL or
// inline base64 data, depending on what the provider returns.
type GeneratedImage struct {
	URL     string
	B64Data string
}

// AIServiceAdapter is the hex port for upstream AI providers. Calls are
// plain relays; retry and correctness belong to the provider.
type AIServiceAdapter interface {
	Name() string
	GenerateText(ctx context.Context, modelName, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}
