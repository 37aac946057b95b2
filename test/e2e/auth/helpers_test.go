//go:build e2e

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeep/pkg/authsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and assertions shared by the auth service end-to-end tests.
 */

const (
	testImageName = "gatekeep-auth-test:latest"

	testIssuer      = "gatekeep-e2e"
	testTokenSecret = "e2e-signing-secret-0123456789abcdef"
	testPassword    = "Secret123!"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

func baseEnv() map[string]string {
	return map[string]string{
		"AUTH_ISSUER":       testIssuer,
		"AUTH_TOKEN_SECRET": testTokenSecret,
		"AUTH_TOTP_ISSUER":  "MyAuthApp",
		"ENV":               "test",
		"LOG_LEVEL":         "info",
		"LOG_FORMAT":        "json",
	}
}

// setupAuthContainer starts the service with relaxed rate limits, since most
// tests make many rapid requests from the same address.
func setupAuthContainer(t *testing.T) string {
	t.Helper()

	env := baseEnv()
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"

	return startContainer(t, env)
}

// setupAuthContainerWithDefaultRateLimits keeps the production profiles, for
// the tests that check rate limiting itself.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) string {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// registerAndLogin creates a user and returns its first session.
func registerAndLogin(t *testing.T, client *authsdk.SDKClient, username string) (*authsdk.UserResponse, *authsdk.Session) {
	t.Helper()
	ctx := t.Context()

	user, err := client.Register(ctx, username, testPassword)
	require.NoError(t, err, "register %s", username)
	require.Equal(t, username, user.Username)

	session, err := client.Login(ctx, username, testPassword)
	require.NoError(t, err, "login %s", username)
	require.NotEmpty(t, session.AccessToken())

	return user, session
}

// enrollTwoFactor runs enable and confirm and returns the TOTP secret.
func enrollTwoFactor(t *testing.T, session *authsdk.Session) string {
	t.Helper()
	ctx := t.Context()

	enroll, err := session.EnableTwoFactor(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, enroll.Secret)

	msg, err := session.ConfirmTwoFactor(ctx, currentCode(t, enroll.Secret))
	require.NoError(t, err)
	require.Equal(t, "2FA enabled successfully", msg.Message)

	return enroll.Secret
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func assertStatus(t *testing.T, err error, status int, context string) {
	t.Helper()
	require.Error(t, err, context)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "%s: expected APIError, got %T", context, err)
	require.Equal(t, status, apiErr.StatusCode, "%s: %s", context, apiErr.Detail)
}

func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
	require.NotEmpty(t, health.Version)
}
