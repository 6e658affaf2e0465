package repository

import (
	"context"

	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	// CreateUser inserts a user and fills in the assigned ID and CreatedAt.
	// Returns ErrDuplicateEmail when the email is already registered.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
