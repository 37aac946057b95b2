package domain

import "time"

// LoginResult is returned by a password login. Exactly one of Token or
// RequiresTwoFactor is set.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time

	// RequiresTwoFactor asks the client to complete the TOTP step using
	// TempUserID as the correlation handle. It is not a credential.
	RequiresTwoFactor bool
	TempUserID        int64
}

// TwoFactorEnrollment is returned when enrollment begins.
type TwoFactorEnrollment struct {
	Secret string // base32 TOTP secret
	URI    string // otpauth:// provisioning URI
	QRCode string // data:image/png;base64 QR rendering of URI
	UserID int64
}

// TwoFactorConfirmation is returned once 2FA is enabled.
type TwoFactorConfirmation struct {
	Message string
}
