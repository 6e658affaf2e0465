package auth

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/domain"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/internal/repository"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/pkg/config"
	"github.com/vikramkumaredugaon-oss/seva-sathi-apis/pkg/crypto"
	jwtpkg "github.com/vikramkumaredugaon-oss/seva-sathi-apis/pkg/jwt"
)

// ErrEmailTaken is returned when registration hits the unique email constraint.
var ErrEmailTaken = errors.New("auth: email already exists")

// ErrInvalidCredentials covers both unknown email and wrong password so the
// two cases are indistinguishable to callers.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Service handles registration and login.
type Service struct {
	users  repository.UserRepository
	hasher *crypto.Hasher
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, hasher *crypto.Hasher, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, hasher: hasher, logger: logger, cfg: cfg}
}

// RegisterInput carries the validated registration fields. Image is the
// stored upload filename, empty when no file was uploaded.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Contact  string
	Image    string
}

// Register hashes the password and inserts a new inactive user. Duplicate
// emails are detected solely through the store's unique constraint.
func (s Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Contact:      in.Contact,
		Image:        in.Image,
		Active:       false,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates a user and issues a fresh session token.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrMismatch) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("compare password: %w", err)
	}
	token, err := jwtpkg.GenerateToken(user.ID, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}
