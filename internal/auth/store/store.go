package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is an optimistic-concurrency failure: the record changed
	// between read and write.
	ErrConflict = errors.New("store: version conflict")
)

// Store is the root data access interface implemented by each driver. It
// hands out sub-repositories rather than embedding them so that a Tx cannot
// open another transaction by accident.
type Store interface {
	Users() Users
	Challenges() Challenges

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (domain.User, error)

	// GetUserByEmail returns the oldest user with this email. Email is not
	// unique, so callers treat this as a best match.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u at version 1. A duplicate username or Google id
	// returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser saves every mutable field of u if the stored version still
	// equals u.Version, and returns the row with the bumped version. A stale
	// version returns ErrConflict.
	UpdateUser(ctx context.Context, u domain.User) (domain.User, error)

	DeleteUser(ctx context.Context, id string) error

	CountUsers(ctx context.Context) (int, error)
}

// Challenges holds short-lived login state: pending TOTP logins and pending
// OAuth round trips. Drivers may expire records on their own; callers still
// check ExpiresAt.
type Challenges interface {
	// PutTOTPChallenge creates or replaces the challenge for c.UserID.
	PutTOTPChallenge(ctx context.Context, c domain.TOTPChallenge) error

	GetTOTPChallenge(ctx context.Context, userID string) (domain.TOTPChallenge, error)

	// IncrementTOTPAttempts atomically adds one failed attempt and returns
	// the updated challenge.
	IncrementTOTPAttempts(ctx context.Context, userID string) (domain.TOTPChallenge, error)

	DeleteTOTPChallenge(ctx context.Context, userID string) error

	PutLinkRequest(ctx context.Context, l domain.LinkRequest) error

	// TakeLinkRequest returns and deletes the request in one step, so a state
	// can be redeemed once.
	TakeLinkRequest(ctx context.Context, stateHash string) (domain.LinkRequest, error)

	// DeleteExpired removes records that expired at or before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	Ping(ctx context.Context) error
}
