package authsdk

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail" example:"Incorrect username or password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"correct horse battery staple"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID           int64  `json:"id" example:"1"`
	Username     string `json:"username" example:"alice"`
	TwoFAEnabled bool   `json:"is_2fa_enabled" example:"false"`
}

// TokenResponse is returned by POST /auth/token and POST /auth/token/2fa.
// Either AccessToken is set, or RequiresTwoFactor and TempUserID are.
type TokenResponse struct {
	AccessToken       string `json:"access_token,omitempty" example:"eyJhbGciOiJIUzI1NiIs..."`
	TokenType         string `json:"token_type,omitempty" example:"bearer"`
	ExpiresIn         int64  `json:"expires_in,omitempty" example:"1800"`
	RequiresTwoFactor bool   `json:"requires_2fa,omitempty" example:"false"`
	TempUserID        int64  `json:"temp_user_id,omitempty" example:"0"`
}

// SecondFactorRequest is the body of POST /auth/token/2fa.
type SecondFactorRequest struct {
	UserID int64  `json:"user_id" example:"1"`
	Code   string `json:"code" example:"123456"`
}

// EnableTwoFactorResponse is returned by POST /auth/2fa/enable.
type EnableTwoFactorResponse struct {
	Secret     string `json:"secret" example:"JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"`
	QRCode     string `json:"qr_code" example:"data:image/png;base64,iVBORw0KGgo..."`
	URI        string `json:"uri" example:"otpauth://totp/MyAuthApp:alice?secret=...&issuer=MyAuthApp"`
	TempUserID int64  `json:"temp_user_id" example:"1"`
}

// ConfirmTwoFactorRequest is the body of POST /auth/2fa/confirm. UserID may
// be omitted; when present it must match the token's user.
type ConfirmTwoFactorRequest struct {
	UserID int64  `json:"user_id,omitempty" example:"1"`
	Code   string `json:"code" example:"123456"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"2FA enabled successfully"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"v0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
	Schema   string `json:"schema" example:"ok"`
	Signer   string `json:"signer" example:"ok"`
}
