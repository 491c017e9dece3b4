package repository

import (
	"context"

	"daylog/internal/domain"
)

// DayRepository defines persistence operations for tracked days.
type DayRepository interface {
	Init(ctx context.Context) error
	// Upsert inserts the day or, if (user, date) already exists,
	// overwrites its level and comment.
	Upsert(ctx context.Context, day *domain.Day) error
	ListByUserYear(ctx context.Context, userID string, year int) ([]domain.Day, error)
	Leaderboard(ctx context.Context, year int) ([]domain.LeaderboardRow, error)
}
