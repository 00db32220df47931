package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidPlan        = errors.New("unknown membership plan")
	ErrAmountMismatch     = errors.New("amount does not match plan price")
	ErrOrderTerminal      = errors.New("order is already in a terminal state")
	ErrSignatureInvalid   = errors.New("gateway signature verification failed")
	ErrNoAccess           = errors.New("membership required")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrRateLimited        = errors.New("too many requests")
)
