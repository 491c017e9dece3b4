package domain

import "time"

// Day is a single tracked calendar day for a user. At most one record
// exists per (user, date); re-registering a date overwrites it.
type Day struct {
	ID        string
	UserID    string
	Date      string // calendar date, YYYY-MM-DD
	Level     int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaderboardRow is one user's aggregate for a year. TrackedDays counts
// days registered with level >= 1; TotalDays counts every registered day.
type LeaderboardRow struct {
	UserID      string
	DisplayName string
	TrackedDays int64
	TotalDays   int64
}
