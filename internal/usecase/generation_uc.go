// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/ports/adapter"
	"nexus-ai-portal/internal/domain/ports/repository"
)

var _ GenerationUseCase = (*generationUC)(nil)

// GenerationUseCase gates the AI providers behind membership entitlement.
// Every call re-reads the profile; entitlement is never cached in the
// session token.
type GenerationUseCase interface {
	GenerateText(ctx context.Context, userID, modelName, prompt string) (string, error)
	GenerateImage(ctx context.Context, userID, prompt string) (*adapter.GeneratedImage, error)
}

type generationUC struct {
	profiles repository.ProfileRepository
	text     adapter.AIServiceAdapter
	image    adapter.AIServiceAdapter
	log      *zerolog.Logger
}

func NewGenerationUseCase(profiles repository.ProfileRepository, text, image adapter.AIServiceAdapter, logger *zerolog.Logger) *generationUC {
	return &generationUC{profiles: profiles, text: text, image: image, log: logger}
}

func (u *generationUC) authorize(ctx context.Context, userID string) error {
	p, err := u.profiles.FindByUserID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if !p.HasAccess() {
		return domain.ErrNoAccess
	}
	return nil
}

func (u *generationUC) GenerateText(ctx context.Context, userID, modelName, prompt string) (string, error) {
	if prompt == "" {
		return "", domain.ErrInvalidArgument
	}
	if err := u.authorize(ctx, userID); err != nil {
		return "", err
	}
	out, err := u.text.GenerateText(ctx, modelName, prompt)
	if err != nil {
		u.log.Warn().Err(err).Str("provider", u.text.Name()).Msg("text generation failed")
		return "", err
	}
	return out, nil
}

func (u *generationUC) GenerateImage(ctx context.Context, userID, prompt string) (*adapter.GeneratedImage, error) {
	if prompt == "" {
		return nil, domain.ErrInvalidArgument
	}
	if err := u.authorize(ctx, userID); err != nil {
		return nil, err
	}
	img, err := u.image.GenerateImage(ctx, prompt)
	if err != nil {
		u.log.Warn().Err(err).Str("provider", u.image.Name()).Msg("image generation failed")
		return nil, err
	}
	return img, nil
}
