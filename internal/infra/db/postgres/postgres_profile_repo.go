// File: internal/infra/db/postgres/postgres_profile_repo.go
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nexus-ai-portal/internal/domain"
	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

type profileRepo struct{ pool *pgxpool.Pool }

func NewProfileRepo(pool *pgxpool.Pool) *profileRepo {
	return &profileRepo{pool: pool}
}

const profileColumns = `user_id, email, username, role, membership_type, membership_expires_at, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	p := &model.Profile{}
	var username *string
	if err := row.Scan(&p.UserID, &p.Email, &username, &p.Role, &p.MembershipType, &p.MembershipExpiresAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if username != nil {
		p.Username = *username
	}
	return p, nil
}

func (r *profileRepo) Create(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	const q = `
INSERT INTO profiles (
  user_id, email, username, role, membership_type, membership_expires_at, created_at, updated_at
) VALUES (
  $1,$2,NULLIF($3,''),$4,$5,$6,$7,$8
);`

	_, err := execSQL(ctx, r.pool, tx, q, p.UserID, p.Email, p.Username, p.Role, p.MembershipType, p.MembershipExpiresAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *profileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanProfile(row)
}

func (r *profileRepo) FindByIdentifier(ctx context.Context, tx repository.Tx, identifier string) (*model.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE user_id=$1 OR lower(email)=lower($1) OR username=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	return scanProfile(row)
}

func (r *profileRepo) UpdateMembership(ctx context.Context, tx repository.Tx, userID string, membership model.MembershipType, expiresAt *time.Time) error {
	const q = `UPDATE profiles SET membership_type=$2, membership_expires_at=$3, updated_at=NOW() WHERE user_id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID, membership, expiresAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Profile, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, mapQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *profileRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM profiles;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
