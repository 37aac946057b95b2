package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/gatekeep/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned when a conditional update matched no row
	// because the record is not in the expected state.
	ErrConflict = errors.New("store: state conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. Repositories hang off it as methods so a Tx can expose the
// same repositories bound to the transaction, which stops callers from
// starting transactions within transactions.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used during password login. Matching is case-sensitive.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user and returns the id assigned by the store.
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)

	// UpdateTOTPSecret stores a (possibly replacement) pending TOTP secret.
	// Returns ErrConflict if 2FA is already enabled for the user.
	UpdateTOTPSecret(ctx context.Context, userID int64, secret string) error

	// EnableTwoFactor flips is_2fa_enabled to true. Returns ErrConflict
	// unless a secret is present and 2FA is not yet enabled.
	EnableTwoFactor(ctx context.Context, userID int64) error

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int64, error)
}
