package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/auth/store"
	"github.com/aussiebroadwan/gatekeep/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
	"github.com/aussiebroadwan/gatekeep/pkg/jwtx"
)

// schemaVersioner is implemented by stores that track migrations.
type schemaVersioner interface {
	SchemaVersion() (uint, bool, error)
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database connection, the migration state and that tokens can be signed and verified.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	tokens *jwtx.Issuer,
	verifier jwtx.Verifier,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Schema:   "ok",
			Signer:   "ok",
		}
		status := "ok"
		code := http.StatusOK
		degrade := func(field *string, msg string) {
			*field = "error: " + msg
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if err := st.Ping(r.Context()); err != nil {
			degrade(&checks.Database, err.Error())
		}

		if sv, ok := st.(schemaVersioner); ok {
			if v, dirty, err := sv.SchemaVersion(); err != nil {
				degrade(&checks.Schema, err.Error())
			} else if dirty || v == 0 {
				degrade(&checks.Schema, "migrations not applied")
			}
		}

		// Round trip a probe token through the configured key.
		probe, err := tokens.Issue("readyz", 0, nil, time.Now())
		if err == nil {
			_, err = verifier.Verify(probe.Token)
		}
		if err != nil {
			degrade(&checks.Signer, err.Error())
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
