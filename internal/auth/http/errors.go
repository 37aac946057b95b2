package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeep/internal/auth/service"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
	"github.com/aussiebroadwan/gatekeep/pkg/slogx"
)

const (
	detailBadCredentials = "Incorrect username or password"
	detailBadCode        = "Invalid 2FA code"
	detailInternal       = "Internal server error"
)

// writeServiceError maps orchestrator errors to responses. authDetail is the
// message used for ErrAuth, which differs between password and code checks.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, authDetail string) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		httpx.WriteDetail(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrConflict):
		httpx.WriteDetail(w, http.StatusBadRequest, publicDetail(err, service.ErrConflict))
	case errors.Is(err, service.ErrBadRequest):
		httpx.WriteDetail(w, http.StatusBadRequest, publicDetail(err, service.ErrBadRequest))
	case errors.Is(err, service.ErrAuth):
		httpx.WriteBearerError(w, "", authDetail)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, detailInternal)
	}
}

// publicDetail strips the sentinel prefix that fmt.Errorf("%w: ...") adds.
func publicDetail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func writeDecodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, httpx.ErrUnsupportedMediaType):
		httpx.WriteDetail(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, httpx.ErrBodyTooLarge):
		httpx.WriteDetail(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		httpx.WriteDetail(w, http.StatusBadRequest, err.Error())
	}
}
