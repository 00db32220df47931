package repository

import (
	"context"
	"time"

	"nexus-ai-portal/internal/domain/model"
)

// ProfileRepository persists membership profiles. Create is a distinct
// operation from UpdateMembership so registration stays the only writer of
// new rows (no lazy creation on read paths).
type ProfileRepository interface {
	Create(ctx context.Context, tx Tx, p *model.Profile) error
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.Profile, error)
	FindByIdentifier(ctx context.Context, tx Tx, identifier string) (*model.Profile, error)

	// UpdateMembership overwrites the membership pair. expiresAt nil clears
	// the expiry (lifetime); updatedAt is bumped by the store.
	UpdateMembership(ctx context.Context, tx Tx, userID string, membership model.MembershipType, expiresAt *time.Time) error

	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Profile, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
