package sqlite

import (
	"context"

	"github.com/aussiebroadwan/gatekeep/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeep/internal/auth/store"
)

type usersRepo struct {
	q *queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row, err := r.q.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	id, err := r.q.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *usersRepo) UpdateTOTPSecret(ctx context.Context, userID int64, secret string) error {
	n, err := r.q.UpdateUserTOTPSecret(ctx, userID, mapStringNull(secret))
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missingOrConflict(ctx, userID)
	}
	return nil
}

func (r *usersRepo) EnableTwoFactor(ctx context.Context, userID int64) error {
	n, err := r.q.EnableUserTwoFactor(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missingOrConflict(ctx, userID)
	}
	return nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	return r.q.CountUsers(ctx)
}

// missingOrConflict explains why a conditional update touched no rows.
func (r *usersRepo) missingOrConflict(ctx context.Context, userID int64) error {
	if _, err := r.q.GetUserByID(ctx, userID); err != nil {
		return mapNotFound(err)
	}
	return store.ErrConflict
}
