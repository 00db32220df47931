package adapter

import "context"

// IdentityUser is the slice of the identity provider's user record the core
// cares about.
type IdentityUser struct {
	ID       string
	Email    string
	Username string
}

// IdentityProvider is the hex port for the managed identity service. It is
// authoritative for user existence and session issuance; this service only
// verifies the tokens it mints.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, username string) (*IdentityUser, error)
	SignInWithPassword(ctx context.Context, email, password string) (accessToken string, user *IdentityUser, err error)
	GetUser(ctx context.Context, userID string) (*IdentityUser, error)
	// AdminCreateUser provisions a confirmed account without a signup flow
	// (manual activation path).
	AdminCreateUser(ctx context.Context, email, password string) (*IdentityUser, error)
}
