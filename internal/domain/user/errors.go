package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrUnauthenticated         = errors.New("authentication required")
	ErrAccountPending          = errors.New("account is pending approval")
	ErrAccountRejected         = errors.New("account has been rejected")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
