package service

import "errors"

var (
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenNotFound       = errors.New("refresh token not found")
	ErrAlreadyRevoked      = errors.New("refresh token already revoked")
	ErrUserNotFound        = errors.New("user not found")
	ErrHasDependents       = errors.New("account still has bookings or reviews")
	ErrStorage             = errors.New("storage unavailable")
)
