package authsdk

import (
	"context"
	"net/http"
	"time"
)

// Session holds an access token and calls the authenticated endpoints.
type Session struct {
	client    *SDKClient
	token     string
	expiresAt time.Time
}

// NewSession wraps an already issued token.
func (c *SDKClient) NewSession(tok TokenResponse) *Session {
	s := &Session{client: c, token: tok.AccessToken}
	if tok.ExpiresIn > 0 {
		s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return s
}

// AccessToken returns the bearer token.
func (s *Session) AccessToken() string { return s.token }

// Expired reports whether the token's lifetime has passed. Sessions built
// from a response without expires_in never report expiry.
func (s *Session) Expired() bool {
	return !s.expiresAt.IsZero() && time.Now().After(s.expiresAt)
}

// Me returns the authenticated user.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := s.client.doJSON(ctx, http.MethodGet, "/auth/me", s.token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnableTwoFactor starts enrollment. It can be repeated until confirmed; each
// call replaces the pending secret.
func (s *Session) EnableTwoFactor(ctx context.Context) (*EnableTwoFactorResponse, error) {
	var out EnableTwoFactorResponse
	if err := s.client.doJSON(ctx, http.MethodPost, "/auth/2fa/enable", s.token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmTwoFactor switches 2FA on with a code for the pending secret.
func (s *Session) ConfirmTwoFactor(ctx context.Context, code string) (*MessageResponse, error) {
	var out MessageResponse
	err := s.client.doJSON(ctx, http.MethodPost, "/auth/2fa/confirm", s.token, ConfirmTwoFactorRequest{Code: code}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
