// File: internal/infra/db/postgres/postgres_profile_repo_cache.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/repository"
	"nexus-ai-portal/internal/infra/metrics"
	red "nexus-ai-portal/internal/infra/redis"
)

var _ repository.ProfileRepository = (*profileRepoCacheDecorator)(nil)

// profileRepoCacheDecorator is a read-through cache in front of the profile
// repository. Membership writes invalidate rather than update, so a racing
// reader can never observe a stale entitlement past the TTL.
type profileRepoCacheDecorator struct {
	inner repository.ProfileRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewProfileRepoCacheDecorator(inner repository.ProfileRepository, cache red.RedisClient, ttl time.Duration) repository.ProfileRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &profileRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func profileKey(userID string) string { return fmt.Sprintf("profile:id:%s", userID) }

func (d *profileRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	_ = d.cache.Del(ctx, profileKey(p.UserID))
	return d.inner.Create(ctx, tx, p)
}

func (d *profileRepoCacheDecorator) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Profile, error) {
	// Transactional reads must see the row under lock, not a cached copy.
	if tx != nil {
		return d.inner.FindByUserID(ctx, tx, userID)
	}

	key := profileKey(userID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("profile", "hit")
		var p model.Profile
		if json.Unmarshal([]byte(val), &p) == nil {
			return &p, nil
		}
	} else if err != redis.Nil {
		// Redis trouble degrades to a DB read.
	}

	metrics.IncCacheRequest("profile", "miss")
	p, err := d.inner.FindByUserID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		bytes, _ := json.Marshal(p)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return p, nil
}

func (d *profileRepoCacheDecorator) FindByIdentifier(ctx context.Context, tx repository.Tx, identifier string) (*model.Profile, error) {
	// Identifier lookups are admin-path only; not worth a second key space.
	return d.inner.FindByIdentifier(ctx, tx, identifier)
}

func (d *profileRepoCacheDecorator) UpdateMembership(ctx context.Context, tx repository.Tx, userID string, membership model.MembershipType, expiresAt *time.Time) error {
	_ = d.cache.Del(ctx, profileKey(userID))
	if err := d.inner.UpdateMembership(ctx, tx, userID, membership, expiresAt); err != nil {
		return err
	}
	// Invalidate again after the write lands so a read-through between the
	// first Del and the commit cannot pin the old row.
	_ = d.cache.Del(ctx, profileKey(userID))
	return nil
}

func (d *profileRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Profile, error) {
	return d.inner.List(ctx, tx, offset, limit)
}

func (d *profileRepoCacheDecorator) Count(ctx context.Context, tx repository.Tx) (int, error) {
	return d.inner.Count(ctx, tx)
}
