package cryptox

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomSecret(t *testing.T) {
	for _, size := range []int{PepperSize, SigningSecretSize, 1} {
		s, err := RandomSecret(size)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(s)
		require.NoError(t, err)
		require.Len(t, raw, size)
	}

	a, err := RandomSecret(SigningSecretSize)
	require.NoError(t, err)
	b, err := RandomSecret(SigningSecretSize)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	_, err = RandomSecret(0)
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("signing-secret")
	require.True(t, strings.HasPrefix(fp, "sha256:"))
	require.Len(t, fp, len("sha256:")+16)
	require.Equal(t, fp, Fingerprint("signing-secret"))
	require.NotEqual(t, fp, Fingerprint("signing-secret2"))
	require.NotContains(t, fp, "signing-secret")
}
