package auth

import "errors"

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrTokenExpired  = errors.New("token has expired")
	ErrMissingEmCode = errors.New("token has no em_code claim")
	ErrInvalidEmCode = errors.New("invalid employee code")
)
