package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"daylog/internal/domain"
	"daylog/internal/repository"
)

const createDaysTable = `
CREATE TABLE IF NOT EXISTS registered_days (
	day_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(user_id),
	date TEXT NOT NULL,
	level INTEGER NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (user_id, date)
);
`

type DayRepository struct {
	db *sql.DB
}

func NewDayRepository(db *sql.DB) repository.DayRepository {
	return &DayRepository{db: db}
}

func (r *DayRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createDaysTable); err != nil {
		return fmt.Errorf("create registered_days table: %w", err)
	}
	return nil
}

func (r *DayRepository) Upsert(ctx context.Context, day *domain.Day) error {
	now := time.Now().UTC()
	if day.ID == "" {
		day.ID = uuid.NewString()
	}
	day.CreatedAt = now
	day.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO registered_days (day_id, user_id, date, level, comment, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, date) DO UPDATE SET
	level = excluded.level,
	comment = excluded.comment,
	updated_at = excluded.updated_at`,
		day.ID,
		day.UserID,
		day.Date,
		day.Level,
		day.Comment,
		day.CreatedAt,
		day.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert registered day: %w", err)
	}
	return nil
}

func (r *DayRepository) ListByUserYear(ctx context.Context, userID string, year int) ([]domain.Day, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT day_id, user_id, date, level, comment, created_at, updated_at
FROM registered_days
WHERE user_id = ? AND CAST(strftime('%Y', date) AS INTEGER) = ?
ORDER BY date`,
		userID,
		year,
	)
	if err != nil {
		return nil, fmt.Errorf("list registered days: %w", err)
	}
	defer rows.Close()

	var days []domain.Day
	for rows.Next() {
		var day domain.Day
		if err := rows.Scan(
			&day.ID,
			&day.UserID,
			&day.Date,
			&day.Level,
			&day.Comment,
			&day.CreatedAt,
			&day.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan registered day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registered days: %w", err)
	}
	return days, nil
}

func (r *DayRepository) Leaderboard(ctx context.Context, year int) ([]domain.LeaderboardRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT
	users.user_id,
	users.display_name,
	SUM(CASE WHEN registered_days.level >= 1 THEN 1 ELSE 0 END) AS tracked_days,
	COUNT(registered_days.day_id) AS total_days
FROM registered_days
INNER JOIN users ON users.user_id = registered_days.user_id
WHERE CAST(strftime('%Y', registered_days.date) AS INTEGER) = ?
GROUP BY users.user_id, users.display_name
ORDER BY tracked_days DESC, users.display_name ASC`,
		year,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var board []domain.LeaderboardRow
	for rows.Next() {
		var row domain.LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.DisplayName, &row.TrackedDays, &row.TotalDays); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		board = append(board, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return board, nil
}
