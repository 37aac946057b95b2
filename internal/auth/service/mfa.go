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

// ConfirmationMessage is returned once 2FA has been switched on.
const ConfirmationMessage = "2FA enabled successfully"

// BeginTwoFactorEnrollment stores a fresh TOTP secret for user and returns
// what an authenticator app needs to import it. 2FA stays off until
// ConfirmTwoFactorEnrollment succeeds. Calling it again while pending
// replaces the secret.
func (s *AuthService) BeginTwoFactorEnrollment(ctx context.Context, user domain.User) (domain.TwoFactorEnrollment, error) {
	l := slogx.FromContext(ctx)

	secret, err := s.OTP.GenerateSecret()
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("generate secret: %w", err)
	}

	var enrollment domain.TwoFactorEnrollment
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().GetUserByID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAuth
			}
			return err
		}
		if current.TwoFAEnabled {
			return fmt.Errorf("%w: 2FA already enabled", ErrConflict)
		}

		if err := tx.Users().UpdateTOTPSecret(ctx, current.ID, secret); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("%w: 2FA already enabled", ErrConflict)
			}
			return fmt.Errorf("store secret: %w", err)
		}

		// A URI or QR failure rolls the stored secret back.
		uri, err := s.OTP.ProvisioningURI(current.Username, secret)
		if err != nil {
			return fmt.Errorf("provisioning uri: %w", err)
		}
		qr, err := s.OTP.QRDataURI(uri)
		if err != nil {
			return fmt.Errorf("render qr: %w", err)
		}

		enrollment = domain.TwoFactorEnrollment{
			Secret: secret,
			URI:    uri,
			QRCode: qr,
			UserID: current.ID,
		}
		return nil
	})
	if err != nil {
		return domain.TwoFactorEnrollment{}, err
	}

	l.Info("2fa enrollment started", slog.Int64("user_id", enrollment.UserID))

	return enrollment, nil
}

// ConfirmTwoFactorEnrollment switches 2FA on once the user proves their
// authenticator produces codes for the pending secret. A wrong code leaves the
// record untouched.
func (s *AuthService) ConfirmTwoFactorEnrollment(
	ctx context.Context,
	user domain.User,
	req ConfirmRequest,
) (domain.TwoFactorConfirmation, error) {
	l := slogx.FromContext(ctx)

	if err := s.validate(req); err != nil {
		return domain.TwoFactorConfirmation{}, err
	}
	if req.UserID != 0 && req.UserID != user.ID {
		return domain.TwoFactorConfirmation{}, fmt.Errorf("%w: user_id does not match the authenticated user", ErrBadRequest)
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().GetUserByID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAuth
			}
			return err
		}

		switch current.TwoFactorState() {
		case domain.TwoFactorEnabled:
			return fmt.Errorf("%w: 2FA already enabled", ErrBadRequest)
		case domain.TwoFactorNone:
			return fmt.Errorf("%w: 2FA setup has not been started", ErrBadRequest)
		}

		if !s.OTP.VerifyAt(*current.TOTPSecret, req.Code, s.now()) {
			l.Info("2fa confirmation rejected", slog.Int64("user_id", current.ID))
			return ErrAuth
		}

		if err := tx.Users().EnableTwoFactor(ctx, current.ID); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("%w: 2FA state changed, retry setup", ErrBadRequest)
			}
			return fmt.Errorf("enable 2fa: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.TwoFactorConfirmation{}, err
	}

	l.Info("2fa enabled", slog.Int64("user_id", user.ID))

	return domain.TwoFactorConfirmation{Message: ConfirmationMessage}, nil
}
