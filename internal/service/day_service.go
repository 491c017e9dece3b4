package service

import (
	"context"
	"time"

	"daylog/internal/domain"
	"daylog/internal/repository"
)

// DayService describes day tracking and reporting operations.
type DayService interface {
	RegisterDay(ctx context.Context, userID, date string, level int, comment string) error
	UserDays(ctx context.Context, userID string, year int) ([]domain.Day, error)
	Leaderboard(ctx context.Context, year int) ([]domain.LeaderboardRow, error)
}

type dayService struct {
	days repository.DayRepository
}

func NewDayService(days repository.DayRepository) DayService {
	return &dayService{days: days}
}

func (s *dayService) RegisterDay(ctx context.Context, userID, date string, level int, comment string) error {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ErrInvalidInput
	}
	if parsed.Year() > time.Now().Year() {
		return ErrInvalidInput
	}
	if level < 0 {
		return ErrInvalidInput
	}

	day := &domain.Day{
		UserID:  userID,
		Date:    parsed.Format("2006-01-02"),
		Level:   level,
		Comment: comment,
	}
	return s.days.Upsert(ctx, day)
}

func (s *dayService) UserDays(ctx context.Context, userID string, year int) ([]domain.Day, error) {
	return s.days.ListByUserYear(ctx, userID, year)
}

func (s *dayService) Leaderboard(ctx context.Context, year int) ([]domain.LeaderboardRow, error) {
	return s.days.Leaderboard(ctx, year)
}
