package service

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64,username"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginRequest carries the form fields of POST /auth/token.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// SecondFactorRequest is the body of POST /auth/token/2fa. Code carries no
// validation tags; a malformed code fails verification like a wrong one.
type SecondFactorRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Code   string `json:"code"`
}

// ConfirmRequest is the body of POST /auth/2fa/confirm. UserID is optional;
// when set it must name the authenticated user.
type ConfirmRequest struct {
	UserID int64  `json:"user_id" validate:"gte=0"`
	Code   string `json:"code"`
}
