// Package user handles registration, login and profile lookup for the
// identities that own ledger accounts.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/security"
)

const bcryptCost = 10

// Store is the persistence boundary for users.
type Store interface {
	// CreateUser inserts a user row. Returns domain.ErrUserExists when the
	// email is already taken.
	CreateUser(ctx context.Context, user *domain.User) error
	// UserByEmail returns domain.ErrUserNotFound when no row matches.
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	// UserByID returns domain.ErrUserNotFound when no row matches.
	UserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// DeleteUser removes a user row. Returns domain.ErrUserNotFound when
	// no row matches.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store     Store
	jwtSecret []byte
	jwtTTL    time.Duration
	log       *zap.Logger
}

func NewService(store Store, jwtSecret []byte, jwtTTL time.Duration, log *zap.Logger) *Service {
	return &Service{store: store, jwtSecret: jwtSecret, jwtTTL: jwtTTL, log: log}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies credentials and returns a signed bearer token. Bad email
// and bad password both come back as domain.ErrInvalidCredentials so the
// response does not reveal which one was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := security.GenerateToken(user, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return token, nil
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.store.UserByID(ctx, userID)
}

// Delete removes a user. Admin-only; the role check happens in the
// middleware layer.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}
