package otpx_test

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeep/pkg/otpx"
	"github.com/stretchr/testify/require"
)

func newEngine() *otpx.Engine {
	return otpx.NewEngine(otpx.Options{Issuer: "MyAuthApp"})
}

func TestGenerateSecret(t *testing.T) {
	e := newEngine()

	seen := make(map[string]bool)
	for range 20 {
		secret, err := e.GenerateSecret()
		require.NoError(t, err)
		require.Len(t, secret, 32, "20 random bytes encode to 32 base32 chars")
		require.Equal(t, strings.ToUpper(secret), secret)
		require.NotContains(t, secret, "=")
		require.False(t, seen[secret], "duplicate secret generated")
		seen[secret] = true
	}
}

func TestProvisioningURI(t *testing.T) {
	e := newEngine()
	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	uri, err := e.ProvisioningURI("alice", secret)
	require.NoError(t, err)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	require.Equal(t, "otpauth", u.Scheme)
	require.Equal(t, "totp", u.Host)
	require.Contains(t, u.Path, "alice")

	q := u.Query()
	require.Equal(t, secret, q.Get("secret"))
	require.Equal(t, "MyAuthApp", q.Get("issuer"))
	require.Equal(t, "30", q.Get("period"))
	require.Equal(t, "6", q.Get("digits"))

	// Pure: same inputs, same URI
	again, err := e.ProvisioningURI("alice", secret)
	require.NoError(t, err)
	require.Equal(t, uri, again)
}

func TestProvisioningURI_Invalid(t *testing.T) {
	e := newEngine()

	_, err := e.ProvisioningURI("alice", "not base32 !!")
	require.ErrorIs(t, err, otpx.ErrInvalidSecret)

	_, err = e.ProvisioningURI("", "JBSWY3DPEHPK3PXP")
	require.ErrorIs(t, err, otpx.ErrMissingLabel)

	noIssuer := otpx.NewEngine(otpx.Options{})
	_, err = noIssuer.ProvisioningURI("alice", "JBSWY3DPEHPK3PXP")
	require.ErrorIs(t, err, otpx.ErrMissingLabel)
}

func TestRenderQR(t *testing.T) {
	e := newEngine()
	uri, err := e.ProvisioningURI("alice", "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	img, err := e.RenderQR(uri)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(img, []byte("\x89PNG\r\n\x1a\n")), "expected PNG signature")

	dataURI, err := e.QRDataURI(uri)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURI, "data:image/png;base64,"))

	_, err = e.RenderQR("otpauth://totp/%zz")
	require.Error(t, err)
}

func TestVerifyAt(t *testing.T) {
	e := newEngine()
	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 15, 0, time.UTC)
	code, err := e.GenerateCode(secret, now)
	require.NoError(t, err)
	require.Len(t, code, 6)

	t.Run("current step", func(t *testing.T) {
		require.True(t, e.VerifyAt(secret, code, now))
	})

	t.Run("one step of drift either side", func(t *testing.T) {
		require.True(t, e.VerifyAt(secret, code, now.Add(30*time.Second)))
		require.True(t, e.VerifyAt(secret, code, now.Add(-30*time.Second)))
	})

	t.Run("two steps away is rejected", func(t *testing.T) {
		require.False(t, e.VerifyAt(secret, code, now.Add(90*time.Second)))
		require.False(t, e.VerifyAt(secret, code, now.Add(-90*time.Second)))
	})

	t.Run("code from another secret", func(t *testing.T) {
		other, err := e.GenerateSecret()
		require.NoError(t, err)
		otherCode, err := e.GenerateCode(other, now)
		require.NoError(t, err)
		if otherCode == code {
			t.Skip("codes collided by chance")
		}
		require.False(t, e.VerifyAt(secret, otherCode, now))
	})
}

func TestVerify_Malformed(t *testing.T) {
	e := newEngine()
	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	for _, code := range []string{"", "12345", "1234567", "12a456", " 12345", "abcdef", "１２３４５６"} {
		require.False(t, e.Verify(secret, code), "code %q should be rejected", code)
	}

	code, err := e.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.False(t, e.Verify("", code))
	require.False(t, e.Verify("!!!!", code))
}

func TestVerify_Now(t *testing.T) {
	e := newEngine()
	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	code, err := e.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.True(t, e.Verify(secret, code))
}
