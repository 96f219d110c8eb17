package auth

import "errors"

var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrSessionNotFound       = errors.New("session not found or expired")
	ErrRefreshTokenRevoked   = errors.New("refresh token has been revoked")
	ErrOAuthDisabled         = errors.New("oauth sign-in is not configured")
	ErrOAuthEmailNotVerified = errors.New("oauth email is not verified")
)
