package jwtx

import (
	"strconv"
	"time"

	"github.com/aussiebroadwan/gatekeep/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime applied when an Issuer has no TTL set.
const DefaultAccessTokenTTL = 30 * time.Minute

// Authentication Methods Reference values (RFC 8176).
const (
	AMRPassword = "pwd" // password-based authentication
	AMROTP      = "otp" // one-time password (TOTP)
	AMRMFA      = "mfa" // more than one factor was used
)

// Claims are access-token claims. The subject is the username, UID carries
// the numeric user id for callers that want to avoid a lookup.
type Claims struct {
	jwt.RegisteredClaims

	// Numeric user id, as a string so clients in any language can read it.
	UID string `json:"uid,omitempty"`

	// Authentication Methods Reference ["pwd"] or ["pwd","otp","mfa"]
	AMR []string `json:"amr,omitempty"`
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(
	subject string,
	userID int64,
	amr []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		UID: strconv.FormatInt(userID, 10),
		AMR: amr,
	}
}

// NewJTI returns a ULID for the "jti" claim.
func NewJTI() string {
	return idx.New().String()
}

// UserID parses the uid claim. It returns 0 when absent or malformed.
func (c *Claims) UserID() int64 {
	id, err := strconv.ParseInt(c.UID, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn’t expired (exp) and isn’t before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
