//go:build e2e

package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/gatekeep/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials checks that an unknown user and a wrong password
// are reported the same way.
func TestInvalidCredentials(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	registerAndLogin(t, client, "victim")

	_, errWrongPassword := client.Login(ctx, "victim", "not-the-password")
	assertStatus(t, errWrongPassword, http.StatusUnauthorized, "wrong password")

	_, errUnknownUser := client.Login(ctx, "nobody", "not-the-password")
	assertStatus(t, errUnknownUser, http.StatusUnauthorized, "unknown user")

	var a, b *authsdk.APIError
	require.True(t, errors.As(errWrongPassword, &a))
	require.True(t, errors.As(errUnknownUser, &b))
	require.Equal(t, a.Detail, b.Detail)
	require.Equal(t, "Incorrect username or password", a.Detail)

	// Usernames are case sensitive.
	_, err := client.Login(ctx, "VICTIM", testPassword)
	assertStatus(t, err, http.StatusUnauthorized, "case mismatch")
}

func TestInvalidAccessToken(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	_, session := registerAndLogin(t, client, "tokenuser")

	cases := map[string]string{
		"garbage":  "not-a-jwt",
		"tampered": session.AccessToken() + "x",
		"empty":    "",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			bad := client.NewSession(authsdk.TokenResponse{AccessToken: token})
			_, err := bad.Me(ctx)
			assertStatus(t, err, http.StatusUnauthorized, name)
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	_, err := client.Register(ctx, "", testPassword)
	assertStatus(t, err, http.StatusBadRequest, "empty username")

	_, err = client.Register(ctx, "has space", testPassword)
	assertStatus(t, err, http.StatusBadRequest, "whitespace username")

	_, err = client.Register(ctx, "dupe", testPassword)
	require.NoError(t, err)
	_, err = client.Register(ctx, "dupe", "different")
	assertStatus(t, err, http.StatusBadRequest, "duplicate username")
}
