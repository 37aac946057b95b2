package service

import (
	"errors"
	"sync"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/auth/store"
	"github.com/aussiebroadwan/gatekeep/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeep/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeep/pkg/otpx"
	"github.com/aussiebroadwan/gatekeep/pkg/validatex"
)

var (
	// ErrConflict is returned when the resource already exists or the
	// requested transition has already happened.
	ErrConflict = errors.New("conflict")

	// ErrAuth covers bad credentials and bad one-time codes. Callers cannot
	// tell which check failed.
	ErrAuth = errors.New("authentication failed")

	// ErrBadRequest is returned when the operation is not valid for the
	// user's current state.
	ErrBadRequest = errors.New("bad request")

	// ErrValidation matches any *ValidationError, so callers can test for
	// rejected input with errors.Is without unwrapping the field messages.
	ErrValidation = &ValidationError{}
)

// ValidationError carries per-field messages for a rejected request. It
// matches both ErrValidation and ErrBadRequest.
type ValidationError struct {
	Fields validatex.FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request"
	}
	return "invalid request: " + e.Fields.Detail()
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok || target == ErrBadRequest
}

// AuthService drives the registration, login and two factor enrollment flows.
type AuthService struct {
	Store     store.Store
	Hasher    *cryptox.Hasher
	OTP       *otpx.Engine
	Tokens    *jwtx.Issuer
	Validator *validatex.Validator

	// Now defaults to time.Now.
	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) validate(req any) error {
	if s.Validator == nil {
		return nil
	}
	err := s.Validator.Validate(req)
	if err == nil {
		return nil
	}

	var fe validatex.FieldErrors
	if errors.As(err, &fe) {
		return &ValidationError{Fields: fe}
	}
	return err
}

// burnHash runs a password verification against a throwaway hash so a login
// for an unknown user costs the same as one for a known user.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.HashPassword("gatekeep-dummy-password")
	})
	if s.dummyHash != "" {
		_ = s.Hasher.CheckPassword(password, s.dummyHash)
	}
}
