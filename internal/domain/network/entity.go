package network

import "time"

// WhitelistEntry admits an address or CIDR range to attendance actions.
type WhitelistEntry struct {
	ID          string    `json:"id"`
	IPAddress   string    `json:"ipAddress"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (w WhitelistEntry) RecordID() string { return w.ID }
