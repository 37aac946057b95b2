package domain

import "time"

// TwoFactorState is the position of a user in the enrollment lifecycle.
type TwoFactorState int

const (
	// TwoFactorNone means no secret has been generated.
	TwoFactorNone TwoFactorState = iota
	// TwoFactorPending means a secret exists but has not been confirmed.
	TwoFactorPending
	// TwoFactorEnabled means the secret was confirmed with a valid code.
	TwoFactorEnabled
)

func (s TwoFactorState) String() string {
	switch s {
	case TwoFactorPending:
		return "pending"
	case TwoFactorEnabled:
		return "enabled"
	default:
		return "none"
	}
}

type User struct {
	ID           int64
	Username     string  // unique, case-sensitive, immutable
	PasswordHash string  // argon2id PHC string
	TOTPSecret   *string // base32, nil until enrollment begins
	TwoFAEnabled bool    // only set by a confirmed enrollment
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasTOTPSecret reports whether enrollment has started.
func (u User) HasTOTPSecret() bool {
	return u.TOTPSecret != nil && *u.TOTPSecret != ""
}

// TwoFactorState derives the lifecycle state from the stored fields.
func (u User) TwoFactorState() TwoFactorState {
	switch {
	case u.TwoFAEnabled:
		return TwoFactorEnabled
	case u.HasTOTPSecret():
		return TwoFactorPending
	default:
		return TwoFactorNone
	}
}

// View returns the public projection of the user.
func (u User) View() UserView {
	return UserView{
		ID:           u.ID,
		Username:     u.Username,
		TwoFAEnabled: u.TwoFAEnabled,
	}
}

// UserView is the client-facing user record. It never carries the password
// hash or the TOTP secret.
type UserView struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	TwoFAEnabled bool   `json:"is_2fa_enabled"`
}
