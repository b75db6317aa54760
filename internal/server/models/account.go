// Package models defines the server-side records persisted by the journal.
package models

import "time"

// Account is a registered journal owner. PinHash holds the bcrypt hash of
// the PIN; the raw PIN is never stored.
type Account struct {
	ID        string
	UserName  string
	PinHash   []byte
	CreatedAt time.Time
}

// Identity is what the session gate binds to a request: who the caller acts
// as and the name shown to them.
type Identity struct {
	AccountID string
	UserName  string
	SessionID string
}
