package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/gatekeep/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeep/internal/auth/store"
	"github.com/aussiebroadwan/gatekeep/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeep/pkg/slogx"
)

// Login checks a username and password. Users with 2FA enabled get a
// RequiresTwoFactor result instead of a token and must finish with
// LoginWithSecondFactor.
//
// Only the confirmed flag gates login. A secret stored by an unconfirmed
// enrollment does not require a second factor yet.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	if err := s.validate(req); err != nil {
		return domain.LoginResult{}, err
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.burnHash(req.Password)
			l.Info("login failed", slog.String("reason", "unknown_user"))
			return domain.LoginResult{}, ErrAuth
		}
		return domain.LoginResult{}, err
	}

	if !s.Hasher.CheckPassword(req.Password, user.PasswordHash) {
		l.Info("login failed", slog.String("reason", "bad_password"), slog.Int64("user_id", user.ID))
		return domain.LoginResult{}, ErrAuth
	}

	if user.TwoFAEnabled {
		l.Info("login requires second factor", slog.Int64("user_id", user.ID))
		return domain.LoginResult{RequiresTwoFactor: true, TempUserID: user.ID}, nil
	}

	return s.issue(ctx, user, []string{jwtx.AMRPassword})
}

// LoginWithSecondFactor completes a login for a user with 2FA enabled.
func (s *AuthService) LoginWithSecondFactor(ctx context.Context, req SecondFactorRequest) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	if err := s.validate(req); err != nil {
		return domain.LoginResult{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResult{}, fmt.Errorf("%w: 2FA not enabled for this user", ErrBadRequest)
		}
		return domain.LoginResult{}, err
	}

	if !user.TwoFAEnabled || !user.HasTOTPSecret() {
		return domain.LoginResult{}, fmt.Errorf("%w: 2FA not enabled for this user", ErrBadRequest)
	}

	if !s.OTP.VerifyAt(*user.TOTPSecret, req.Code, s.now()) {
		l.Info("second factor rejected", slog.Int64("user_id", user.ID))
		return domain.LoginResult{}, ErrAuth
	}

	return s.issue(ctx, user, []string{jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA})
}

func (s *AuthService) issue(ctx context.Context, user domain.User, amr []string) (domain.LoginResult, error) {
	tok, err := s.Tokens.Issue(user.Username, user.ID, amr, s.now())
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	slogx.FromContext(ctx).Info("access token issued",
		slog.Int64("user_id", user.ID),
		slog.Any("amr", amr),
	)

	return domain.LoginResult{
		AccessToken: tok.Token,
		TokenType:   tok.TokenType,
		ExpiresAt:   tok.ExpiresAt,
	}, nil
}
