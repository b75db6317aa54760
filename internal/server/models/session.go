package models

import "time"

// Session is a server-side login binding. The cookie only carries a signed
// reference to it; deleting the row logs the caller out.
type Session struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}
