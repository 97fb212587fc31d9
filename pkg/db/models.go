package db

import "time"

// Session is one learn session.
type Session struct {
	ID           int64
	Requested    int
	Shown        int
	Acknowledged int
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Review records one word shown during a session.
type Review struct {
	ID           int64
	SessionID    int64
	Word         string
	Acknowledged bool
	// TimesShown is the word's counter after the review.
	TimesShown int
	ReviewedAt time.Time
}

// WordSkips counts how often a word was skipped.
type WordSkips struct {
	Word  string
	Skips int
}

// Stats aggregates the whole journal.
type Stats struct {
	Sessions     int
	Reviews      int
	Acknowledged int
	MostSkipped  []WordSkips
}
