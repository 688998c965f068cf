package services_test

import (
	"context"
	"testing"

	"github.com/pandamarket/apiserver/internal/auth"
	"github.com/pandamarket/apiserver/internal/services"
	"github.com/pandamarket/apiserver/internal/store"
	"github.com/pandamarket/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	repo := &mockUserRepo{}
	svc := services.NewUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "panda@example.com").Return(types.User{}, store.ErrNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(u types.User) bool {
		return u.Email == "panda@example.com" &&
			u.Nickname == "panda" &&
			u.PasswordHash != "" &&
			u.PasswordHash != "hunter22"
	})).Return(types.User{ID: 1, Email: "panda@example.com", Nickname: "panda"}, nil)

	user, err := svc.Register(ctx, services.RegisterInput{
		Email:    "panda@example.com",
		Nickname: "panda",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	repo.AssertExpectations(t)
}

func TestRegister_TrimsWhitespace(t *testing.T) {
	repo := &mockUserRepo{}
	svc := services.NewUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "panda@example.com").Return(types.User{}, store.ErrNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(u types.User) bool {
		return u.Email == "panda@example.com" && u.Nickname == "panda"
	})).Return(types.User{ID: 1}, nil)

	_, err := svc.Register(ctx, services.RegisterInput{
		Email:    "  panda@example.com  ",
		Nickname: " panda ",
		Password: "hunter22",
	})
	require.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	svc := services.NewUserService(&mockUserRepo{})
	ctx := context.Background()

	cases := []struct {
		name  string
		input services.RegisterInput
	}{
		{"missing email", services.RegisterInput{Nickname: "panda", Password: "x"}},
		{"malformed email", services.RegisterInput{Email: "not-an-email", Nickname: "panda", Password: "x"}},
		{"missing nickname", services.RegisterInput{Email: "a@b.c", Password: "x"}},
		{"missing password", services.RegisterInput{Email: "a@b.c", Nickname: "panda"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{}
	svc := services.NewUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "panda@example.com").
		Return(types.User{ID: 1, Email: "panda@example.com"}, nil)

	_, err := svc.Register(ctx, services.RegisterInput{
		Email:    "panda@example.com",
		Nickname: "panda",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, services.ErrConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateRaceBackstop(t *testing.T) {
	repo := &mockUserRepo{}
	svc := services.NewUserService(repo)
	ctx := context.Background()

	// The pre-check passes but a concurrent insert wins the race; the
	// store's unique constraint surfaces as the same conflict.
	repo.On("GetByEmail", ctx, "panda@example.com").Return(types.User{}, store.ErrNotFound)
	repo.On("Create", ctx, mock.Anything).Return(types.User{}, store.ErrDuplicate)

	_, err := svc.Register(ctx, services.RegisterInput{
		Email:    "panda@example.com",
		Nickname: "panda",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestAuthenticate_Success(t *testing.T) {
	repo := &mockUserRepo{}
	svc := services.NewUserService(repo)
	ctx := context.Background()

	digest, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	repo.On("GetByEmail", ctx, "panda@example.com").
		Return(types.User{ID: 1, Email: "panda@example.com", PasswordHash: digest}, nil)

	user, err := svc.Authenticate(ctx, "panda@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestAuthenticate_Failures(t *testing.T) {
	repo := &mockUserRepo{}
	svc := services.NewUserService(repo)
	ctx := context.Background()

	digest, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	repo.On("GetByEmail", ctx, "panda@example.com").
		Return(types.User{ID: 1, PasswordHash: digest}, nil)
	repo.On("GetByEmail", ctx, "ghost@example.com").
		Return(types.User{}, store.ErrNotFound)

	// A wrong password and an unknown email are indistinguishable.
	_, err = svc.Authenticate(ctx, "panda@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "ghost@example.com", "hunter22")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
