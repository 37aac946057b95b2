package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeep/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
	"github.com/aussiebroadwan/gatekeep/pkg/otpx"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Issuer:              "gatekeep-test",
		TokenTTL:            30 * time.Minute,
		TOTPIssuer:          "MyAuthApp",
		DatabaseFile:        filepath.Join(dir, "auth.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		Env:                 "dev",
		LogLevel:            "error",
		LogFormat:           "text",
		Port:                8080,
		ShutdownGracePeriod: time.Second,
		RateLimits:          httpx.Limits{},
	}
}

func newTestApp(t *testing.T, cfg Config) (*Application, *authsdk.SDKClient) {
	t.Helper()

	application, err := New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.db.Close()
	})

	return application, authsdk.NewSDKClient(srv.URL)
}

func TestNewRequiresSecretOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "prod"

	_, err := New(cfg)
	require.ErrorIs(t, err, ErrMissingTokenSecret)
}

func TestApplicationEndToEnd(t *testing.T) {
	ctx := context.Background()
	_, client := newTestApp(t, testConfig(t))

	live, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, BuildVersion, live.Version)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	user, err := client.Register(ctx, "alice", "wonderland")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.False(t, user.TwoFAEnabled)

	_, err = client.Register(ctx, "alice", "again")
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.IsBadRequest())

	session, err := client.Login(ctx, "alice", "wonderland")
	require.NoError(t, err)
	require.False(t, session.Expired())

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, me.ID)

	enroll, err := session.EnableTwoFactor(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, enroll.TempUserID)
	require.Contains(t, enroll.QRCode, "data:image/png;base64,")

	engine := otpx.NewEngine(otpx.Options{Issuer: "MyAuthApp"})
	code, err := engine.GenerateCode(enroll.Secret, time.Now())
	require.NoError(t, err)

	msg, err := session.ConfirmTwoFactor(ctx, code)
	require.NoError(t, err)
	require.Equal(t, "2FA enabled successfully", msg.Message)

	_, err = client.Login(ctx, "alice", "wonderland")
	var tfa *authsdk.TwoFactorRequiredError
	require.True(t, errors.As(err, &tfa))
	require.Equal(t, user.ID, tfa.UserID)

	session, err = client.LoginWithCode(ctx, tfa.UserID, code)
	require.NoError(t, err)

	me, err = session.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.TwoFAEnabled)
}

func TestApplicationKeepsUsersAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.TokenSecret = "0123456789abcdef0123456789abcdef"

	first, client := newTestApp(t, cfg)
	_, err := client.Register(ctx, "bob", "builder")
	require.NoError(t, err)
	session, err := client.Login(ctx, "bob", "builder")
	require.NoError(t, err)
	require.NoError(t, first.db.Close())

	_, client = newTestApp(t, cfg)
	_, err = client.Login(ctx, "bob", "builder")
	require.NoError(t, err)

	// Same secret, so tokens issued before the restart stay valid.
	restored := client.NewSession(authsdk.TokenResponse{AccessToken: session.AccessToken()})
	me, err := restored.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "bob", me.Username)
}

func TestShutdownClosesDatabase(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)

	require.NoError(t, application.Shutdown())
	require.Error(t, application.db.Ping(context.Background()))
}
