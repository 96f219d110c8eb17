package network

import "errors"

var (
	ErrEntryNotFound        = errors.New("whitelist entry not found")
	ErrEntryExists          = errors.New("address is already whitelisted")
	ErrUnauthorizedLocation = errors.New("You must be on the office network to check in/out")
)
