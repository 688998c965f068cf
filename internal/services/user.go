package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pandamarket/apiserver/internal/auth"
	"github.com/pandamarket/apiserver/internal/store"
	"github.com/pandamarket/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates registration and credential verification.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Email    string
	Nickname string
	Password string
	Image    *string
}

// Register creates a new account. Email uniqueness is checked before the
// password is hashed, so a duplicate registration fails uniformly and
// without wasting bcrypt work; the store's unique constraint backstops
// the race between check and insert.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Nickname = strings.TrimSpace(input.Nickname)
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return types.User{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if input.Nickname == "" {
		return types.User{}, fmt.Errorf("%w: nickname is required", ErrValidation)
	}
	if input.Password == "" {
		return types.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return types.User{}, fmt.Errorf("%w: user already exists", ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	digest, err := auth.HashPassword(input.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        input.Email,
		Nickname:     input.Nickname,
		Image:        input.Image,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return types.User{}, err
	}
	return user, nil
}

// Authenticate verifies the email/password pair. A missing user and a
// wrong password both yield ErrInvalidCredentials; the caller cannot tell
// which occurred.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}
