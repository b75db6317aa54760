package models

import "time"

// Entry is a single diary record. Entries are immutable once written.
type Entry struct {
	ID        string    `json:"id"`
	AccountID string    `json:"-"`
	Content   string    `json:"content"`
	Mood      int       `json:"mood"`
	CreatedAt time.Time `json:"created_at"`
}

// SortOrder selects the timestamp ordering of entry listings.
type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

// MoodPoint is one chart sample: a short date label and the mood value.
type MoodPoint struct {
	Label string `json:"label"`
	Mood  int    `json:"mood"`
}

// MoodCount is the number of entries rated with Mood.
type MoodCount struct {
	Mood  int `json:"mood"`
	Count int `json:"count"`
}
