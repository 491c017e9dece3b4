package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"daylog/internal/auth"
	"daylog/internal/domain"
	"daylog/internal/repository"
)

var (
	// ErrInvalidInput indicates a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid data")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// Unknown-username and wrong-password cases both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserService describes account lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password, displayName string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
	codec *auth.Codec
}

func NewUserService(users repository.UserRepository, codec *auth.Codec) UserService {
	return &userService{
		users: users,
		codec: codec,
	}
}

func (s *userService) Register(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)
	password = strings.TrimSpace(password)

	if username == "" || password == "" || displayName == "" {
		return nil, ErrInvalidInput
	}

	// Pre-check keeps the common duplicate case cheap; the store's
	// case-insensitive uniqueness constraint decides races.
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
