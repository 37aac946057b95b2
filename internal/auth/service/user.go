package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/gatekeep/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeep/internal/auth/store"
	"github.com/aussiebroadwan/gatekeep/pkg/slogx"
)

// Register creates a user with 2FA off and returns its public view.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (domain.UserView, error) {
	l := slogx.FromContext(ctx)

	if err := s.validate(req); err != nil {
		return domain.UserView{}, err
	}

	if _, err := s.Store.Users().GetUserByUsername(ctx, req.Username); err == nil {
		return domain.UserView{}, fmt.Errorf("%w: username already registered", ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.UserView{}, err
	}

	hash, err := s.Hasher.HashPassword(req.Password)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("hash password: %w", err)
	}

	// The pre-check above can race; the unique index settles it.
	id, err := s.Store.Users().CreateUser(ctx, req.Username, hash)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.UserView{}, fmt.Errorf("%w: username already registered", ErrConflict)
		}
		return domain.UserView{}, err
	}

	l.Info("user registered", slog.Int64("user_id", id))

	return domain.UserView{ID: id, Username: req.Username, TwoFAEnabled: false}, nil
}

// CurrentUser resolves the subject of a verified access token. A token for a
// user that no longer exists is rejected with ErrAuth.
func (s *AuthService) CurrentUser(ctx context.Context, subject string) (domain.User, error) {
	if subject == "" {
		return domain.User{}, ErrAuth
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrAuth
		}
		return domain.User{}, err
	}
	return user, nil
}
