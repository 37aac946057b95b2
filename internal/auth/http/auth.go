package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeep/internal/auth/service"
	"github.com/aussiebroadwan/gatekeep/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
)

// AuthHandler serves registration, login and the current user.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister handles POST /auth/register
//
//	@Summary		Register a user
//	@Description	Creates an account with two factor authentication disabled.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Username and password"
//	@Success		200		{object}	authsdk.UserResponse	"Created user"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Username taken or invalid input"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var body authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	view, err := h.AuthService.Register(r.Context(), service.RegisterRequest{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		writeServiceError(w, r, err, detailBadCredentials)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(view))
}

// HandleToken handles POST /auth/token
//
//	@Summary		Password login
//	@Description	Exchanges a username and password for an access token. Accounts with 2FA enabled get
//	@Description	requires_2fa and temp_user_id instead and must call /auth/token/2fa.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string					true	"Username"
//	@Param			password	formData	string					true	"Password"
//	@Success		200			{object}	authsdk.TokenResponse	"Access token or second factor challenge"
//	@Failure		400			{object}	authsdk.ErrorResponse	"Missing fields"
//	@Failure		401			{object}	authsdk.ErrorResponse	"Incorrect username or password"
//	@Failure		429			{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/auth/token [post].
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		writeServiceError(w, r, err, detailBadCredentials)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(res, time.Now()))
}

// HandleTokenTwoFactor handles POST /auth/token/2fa
//
//	@Summary		Second factor login
//	@Description	Completes a login for an account with 2FA enabled using a TOTP code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SecondFactorRequest	true	"temp_user_id from /auth/token and a TOTP code"
//	@Success		200		{object}	authsdk.TokenResponse		"Access token"
//	@Failure		400		{object}	authsdk.ErrorResponse		"2FA not enabled for this user"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Invalid 2FA code"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Rate limit exceeded"
//	@Router			/auth/token/2fa [post].
func (h *AuthHandler) HandleTokenTwoFactor(w http.ResponseWriter, r *http.Request) {
	var body authsdk.SecondFactorRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	res, err := h.AuthService.LoginWithSecondFactor(r.Context(), service.SecondFactorRequest{
		UserID: body.UserID,
		Code:   body.Code,
	})
	if err != nil {
		writeServiceError(w, r, err, detailBadCode)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(res, time.Now()))
}

// HandleMe handles GET /auth/me
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"Authenticated user"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.AuthService)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user.View()))
}

// currentUser loads the user named by the verified token. It writes the error
// response itself and reports false when the request cannot continue.
func currentUser(w http.ResponseWriter, r *http.Request, svc *service.AuthService) (domain.User, bool) {
	user, err := svc.CurrentUser(r.Context(), httpx.SubjectFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Could not validate credentials")
		return domain.User{}, false
	}
	return user, true
}

func userResponse(v domain.UserView) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:           v.ID,
		Username:     v.Username,
		TwoFAEnabled: v.TwoFAEnabled,
	}
}

func tokenResponse(res domain.LoginResult, now time.Time) authsdk.TokenResponse {
	if res.RequiresTwoFactor {
		return authsdk.TokenResponse{RequiresTwoFactor: true, TempUserID: res.TempUserID}
	}
	return authsdk.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   max(int64(res.ExpiresAt.Sub(now).Seconds()), 0),
	}
}
