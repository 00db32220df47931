// File: internal/usecase/profile_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/adapter"
	"nexus-ai-portal/internal/domain/ports/repository"
)

var _ ProfileUseCase = (*profileUC)(nil)

// Session bundles the identity provider's access token with the local
// profile for login/registration responses.
type Session struct {
	AccessToken string
	Profile     *model.Profile
}

type ProfileUseCase interface {
	// Register creates the identity account and, in the same request, the
	// local profile row. Profile creation is not deferred to first use.
	Register(ctx context.Context, email, password, username string) (*model.Profile, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, userID string) (*model.Profile, error)

	// ManualActivate grants a plan to an identifier (email, username, or
	// user id), provisioning the account and profile when missing.
	// Last write wins against concurrent gateway callbacks.
	ManualActivate(ctx context.Context, identifier string, plan model.Plan) (*model.Profile, error)

	List(ctx context.Context, offset, limit int) ([]*model.Profile, error)
}

type profileUC struct {
	profiles repository.ProfileRepository
	identity adapter.IdentityProvider
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewProfileUseCase(profiles repository.ProfileRepository, identity adapter.IdentityProvider, tm repository.TransactionManager, logger *zerolog.Logger) *profileUC {
	return &profileUC{profiles: profiles, identity: identity, tm: tm, log: logger}
}

func (u *profileUC) Register(ctx context.Context, email, password, username string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}

	user, err := u.identity.SignUp(ctx, email, password, username)
	if err != nil {
		return nil, err
	}

	p, err := model.NewProfile(user.ID, email, username)
	if err != nil {
		return nil, err
	}
	if err := u.profiles.Create(ctx, nil, p); err != nil {
		// The identity account exists either way; surface the conflict so
		// the caller retries a login instead of a signup.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		u.log.Error().Err(err).Str("user_id", user.ID).Msg("profile creation failed after signup")
		return nil, err
	}
	u.log.Info().Str("user_id", user.ID).Msg("profile registered")
	return p, nil
}

func (u *profileUC) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	token, user, err := u.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p, err := u.profiles.FindByUserID(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, Profile: p}, nil
}

func (u *profileUC) Me(ctx context.Context, userID string) (*model.Profile, error) {
	return u.profiles.FindByUserID(ctx, nil, userID)
}

func (u *profileUC) List(ctx context.Context, offset, limit int) ([]*model.Profile, error) {
	return u.profiles.List(ctx, nil, offset, limit)
}

func (u *profileUC) ManualActivate(ctx context.Context, identifier string, plan model.Plan) (*model.Profile, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !model.ValidPlan(string(plan)) {
		return nil, domain.ErrInvalidPlan
	}

	p, err := u.profiles.FindByIdentifier(ctx, nil, identifier)
	if errors.Is(err, domain.ErrProfileNotFound) {
		p, err = u.provision(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var out *model.Profile
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		fresh, err := u.profiles.FindByUserID(ctx, tx, p.UserID)
		if err != nil {
			return err
		}
		next := *fresh
		next.ApplyPlan(plan, now)
		if err := u.profiles.UpdateMembership(ctx, tx, next.UserID, next.MembershipType, next.MembershipExpiresAt); err != nil {
			return err
		}
		out = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", out.UserID).Str("plan", string(plan)).Msg("membership manually activated")
	return out, nil
}

// provision creates the identity account and profile for an activation
// target that has never registered. Only email identifiers can be
// provisioned; the account gets a throwaway password and the user resets it
// out of band.
func (u *profileUC) provision(ctx context.Context, identifier string) (*model.Profile, error) {
	if !strings.Contains(identifier, "@") {
		return nil, domain.ErrProfileNotFound
	}
	email := strings.ToLower(identifier)
	user, err := u.identity.AdminCreateUser(ctx, email, uuid.NewString())
	if err != nil {
		return nil, err
	}
	p, err := model.NewProfile(user.ID, email, "")
	if err != nil {
		return nil, err
	}
	if err := u.profiles.Create(ctx, nil, p); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return nil, err
	}
	return p, nil
}
