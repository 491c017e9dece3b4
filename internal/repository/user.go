package repository

import (
	"context"

	"daylog/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Username lookups and the uniqueness constraint are case-insensitive.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
