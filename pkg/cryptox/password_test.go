package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()

	pepper, err := LoadOrGeneratePepper(filepath.Join(t.TempDir(), "pepper"))
	require.NoError(t, err)
	return NewHasher(pepper)
}

func TestHashPassword(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.HashPassword(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "", parts[0])
			require.Equal(t, "argon2id", parts[1])
			require.Equal(t, "v=19", parts[2])
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h := newTestHasher(t)
	password := "samepassword"

	hash1, err := h.HashPassword(password)
	require.NoError(t, err)
	hash2, err := h.HashPassword(password)
	require.NoError(t, err)

	// Same input, different salt, same length
	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.Len(t, hash2, len(hash1))

	require.True(t, h.CheckPassword(password, hash1))
	require.True(t, h.CheckPassword(password, hash2))
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	h := newTestHasher(t)
	hash, err := h.HashPassword("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		"correct-passwor",
		strings.Repeat("x", 10000),
	} {
		err := h.VerifyPassword(wrong, hash)
		require.ErrorIs(t, err, ErrPasswordMismatch)
		require.False(t, h.CheckPassword(wrong, hash))
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"plaintext", "password"},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"zero parameters", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing version", "$argon2id$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"oversized memory", "$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNoaGFzaA"},
		{"oversized iterations", "$argon2id$v=19$m=19456,t=4294967295,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNoaGFzaA"},
		{"oversized parallelism", "$argon2id$v=19$m=19456,t=2,p=255$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNoaGFzaA"},
		{"oversized hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0$" + strings.Repeat("A", 128)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.VerifyPassword("test-password", tt.invalidHash), ErrInvalidHash)
			require.NotPanics(t, func() {
				require.False(t, h.CheckPassword("test-password", tt.invalidHash))
			})
		})
	}
}

func TestHasher_PepperIsApplied(t *testing.T) {
	a := NewHasher("pepper-a")
	b := NewHasher("pepper-b")

	hash, err := a.HashPassword("test-password")
	require.NoError(t, err)

	require.True(t, a.CheckPassword("test-password", hash))
	require.False(t, b.CheckPassword("test-password", hash), "a different pepper must not verify")
}

func TestLoadOrGeneratePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Second load must read the persisted value back
	second, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	empty, err := LoadOrGeneratePepper("")
	require.NoError(t, err)
	require.Empty(t, empty)
}
