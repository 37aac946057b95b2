package jwtx

import (
	"time"
)

// TokenTypeBearer is the token_type reported alongside issued tokens.
const TokenTypeBearer = "bearer"

// AccessToken is a signed token and its lifetime.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}

// Issuer mints access tokens. Tokens are self-contained; nothing is stored
// server side.
type Issuer struct {
	Signer Signer
	Issuer string        // iss claim
	TTL    time.Duration // DefaultAccessTokenTTL when zero
}

// Issue signs an access token for subject expiring at now+TTL.
func (i *Issuer) Issue(subject string, userID int64, amr []string, now time.Time) (AccessToken, error) {
	ttl := i.TTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	claims := NewAccessClaims(subject, userID, amr, ttl, i.Issuer, now)
	signed, err := i.Signer.Sign(claims)
	if err != nil {
		return AccessToken{}, err
	}

	return AccessToken{
		Token:     signed,
		TokenType: TokenTypeBearer,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
