// Package common contains shared constants, sentinel errors and small helpers
// used across moodjournal components.
package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "mj_session"

// Mood rating bounds.
const (
	MinMood = 1
	MaxMood = 5
)
