package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Detail     string
	RetryAfter time.Duration // set on 429 responses
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gatekeep: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
}

// IsUnauthorized reports a 401, returned for bad credentials, bad codes and
// bad tokens alike.
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// IsBadRequest reports a 400: duplicate usernames, invalid input, or an
// operation not allowed in the account's current 2FA state.
func (e *APIError) IsBadRequest() bool { return e.StatusCode == http.StatusBadRequest }

// IsRateLimited reports a 429.
func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// TwoFactorRequiredError is returned by Login when the account has 2FA
// enabled. Pass UserID and a TOTP code to LoginWithCode.
type TwoFactorRequiredError struct {
	UserID int64
}

func (e *TwoFactorRequiredError) Error() string {
	return fmt.Sprintf("gatekeep: second factor required for user %d", e.UserID)
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != "" {
		apiErr.Detail = er.Detail
	} else {
		apiErr.Detail = http.StatusText(resp.StatusCode)
	}

	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return apiErr
}
