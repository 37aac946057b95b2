// Package otpx wraps RFC 6238 TOTP generation and verification with the
// fixed parameters authenticator apps expect: SHA1, 6 digits, 30s steps.
package otpx

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultPeriod     = 30 // seconds per time step
	DefaultSkew       = 1  // steps of drift accepted either side of now
	DefaultSecretSize = 20 // RFC 4226 recommends 160-bit shared secrets
	DefaultQRSize     = 256
)

var (
	ErrInvalidSecret = errors.New("otpx: invalid secret")
	ErrMissingLabel  = errors.New("otpx: missing account label or issuer")
)

// b32 is the unpadded RFC 4648 alphabet used by authenticator apps.
var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Options configures an Engine. Zero values fall back to the defaults above.
type Options struct {
	Issuer     string
	Period     uint
	Skew       uint
	SecretSize uint
	QRSize     int
}

// Engine generates secrets, provisioning URIs and QR codes, and verifies
// submitted codes.
type Engine struct {
	issuer     string
	period     uint
	skew       uint
	secretSize uint
	qrSize     int
}

// NewEngine builds an Engine from opts.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		issuer:     opts.Issuer,
		period:     opts.Period,
		skew:       opts.Skew,
		secretSize: opts.SecretSize,
		qrSize:     opts.QRSize,
	}
	if e.period == 0 {
		e.period = DefaultPeriod
	}
	if e.skew == 0 {
		e.skew = DefaultSkew
	}
	if e.secretSize == 0 {
		e.secretSize = DefaultSecretSize
	}
	if e.qrSize <= 0 {
		e.qrSize = DefaultQRSize
	}
	return e
}

// Issuer returns the issuer name embedded in provisioning URIs.
func (e *Engine) Issuer() string { return e.issuer }

// GenerateSecret returns a cryptographically random base32 secret of fixed
// length (32 characters for the default 20-byte size).
func (e *Engine) GenerateSecret() (string, error) {
	raw := make([]byte, e.secretSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("otpx: failed to generate secret: %w", err)
	}
	return b32.EncodeToString(raw), nil
}

// ProvisioningURI builds the otpauth:// key URI for accountLabel and secret.
// It has no side effects; the same inputs always give the same URI.
func (e *Engine) ProvisioningURI(accountLabel, secret string) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	if accountLabel == "" || e.issuer == "" {
		return "", ErrMissingLabel
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: accountLabel,
		Period:      e.period,
		Secret:      raw,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otpx: failed to build key: %w", err)
	}
	return key.URL(), nil
}

// RenderQR encodes uri as a PNG QR code.
func (e *Engine) RenderQR(uri string) ([]byte, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("otpx: parse uri: %w", err)
	}

	img, err := key.Image(e.qrSize, e.qrSize)
	if err != nil {
		return nil, fmt.Errorf("otpx: render qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("otpx: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// QRDataURI renders uri and returns it as a data:image/png;base64 URI
// suitable for an <img src>.
func (e *Engine) QRDataURI(uri string) (string, error) {
	img, err := e.RenderQR(uri)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img), nil
}

// Verify reports whether code is valid for secret at the current time.
func (e *Engine) Verify(secret, code string) bool {
	return e.VerifyAt(secret, code, time.Now())
}

// VerifyAt reports whether code is valid for secret at t, accepting the
// configured skew in steps either side. Malformed codes and secrets are
// rejected without error.
func (e *Engine) VerifyAt(secret, code string, t time.Time) bool {
	if !wellFormedCode(code) {
		return false
	}
	if _, err := decodeSecret(secret); err != nil {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, t.UTC(), e.validateOpts())
	return ok && err == nil
}

// GenerateCode returns the code for secret at t.
func (e *Engine) GenerateCode(secret string, t time.Time) (string, error) {
	if _, err := decodeSecret(secret); err != nil {
		return "", err
	}
	return totp.GenerateCodeCustom(secret, t.UTC(), e.validateOpts())
}

func (e *Engine) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    e.period,
		Skew:      e.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	raw, err := b32.DecodeString(strings.TrimRight(secret, "="))
	if err != nil || len(raw) == 0 {
		return nil, ErrInvalidSecret
	}
	return raw, nil
}

func wellFormedCode(code string) bool {
	if len(code) != otp.DigitsSix.Length() {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
