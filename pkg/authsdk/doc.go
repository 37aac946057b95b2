/*
Package authsdk is a Go client for the gatekeep authentication service.

# Overview

SDKClient talks to the public endpoints: registration, password login, the
second factor step and the health probes. A successful login returns a
Session which carries the bearer token for the authenticated endpoints.

	client := authsdk.NewSDKClient("http://localhost:8080")

	user, err := client.Register(ctx, "alice", "pw1")

	session, err := client.Login(ctx, "alice", "pw1")
	var tfa *authsdk.TwoFactorRequiredError
	if errors.As(err, &tfa) {
		session, err = client.LoginWithCode(ctx, tfa.UserID, code)
	}

	me, err := session.Me(ctx)

# Two factor enrollment

Enrollment is two calls on a Session. The first returns the secret, the
otpauth:// URI and a QR code data URI. 2FA is only switched on once a code
from the authenticator is confirmed:

	enrollment, err := session.EnableTwoFactor(ctx)
	msg, err := session.ConfirmTwoFactor(ctx, code)

Tokens are not refreshed. When a Session's token expires the caller logs in
again.

# Errors

Non-2xx responses come back as *APIError carrying the status code and the
server's detail message. Password logins for accounts with 2FA enabled return
*TwoFactorRequiredError instead of a Session.
*/
package authsdk
