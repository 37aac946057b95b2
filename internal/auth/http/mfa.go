package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeep/internal/auth/service"
	"github.com/aussiebroadwan/gatekeep/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
)

// TwoFactorHandler serves the TOTP enrollment endpoints.
type TwoFactorHandler struct {
	AuthService *service.AuthService
}

// HandleEnable handles POST /auth/2fa/enable
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret for the authenticated user and returns it with a QR code.
//	@Description	2FA stays off until /auth/2fa/confirm succeeds. Calling again replaces the pending secret.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.EnableTwoFactorResponse	"Secret, QR code and provisioning URI"
//	@Failure		400	{object}	authsdk.ErrorResponse			"2FA already enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/auth/2fa/enable [post].
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.AuthService)
	if !ok {
		return
	}

	enr, err := h.AuthService.BeginTwoFactorEnrollment(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err, "Could not validate credentials")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.EnableTwoFactorResponse{
		Secret:     enr.Secret,
		QRCode:     enr.QRCode,
		URI:        enr.URI,
		TempUserID: enr.UserID,
	})
}

// HandleConfirm handles POST /auth/2fa/confirm
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Verifies a code for the pending secret and enables 2FA.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ConfirmTwoFactorRequest	true	"TOTP code"
//	@Success		200		{object}	authsdk.MessageResponse			"2FA enabled"
//	@Failure		400		{object}	authsdk.ErrorResponse			"No pending setup or already enabled"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid 2FA code or access token"
//	@Router			/auth/2fa/confirm [post].
func (h *TwoFactorHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.AuthService)
	if !ok {
		return
	}

	var body authsdk.ConfirmTwoFactorRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	res, err := h.AuthService.ConfirmTwoFactorEnrollment(r.Context(), user, service.ConfirmRequest{
		UserID: body.UserID,
		Code:   body.Code,
	})
	if err != nil {
		writeServiceError(w, r, err, detailBadCode)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: res.Message})
}
