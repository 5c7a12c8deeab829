package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/internal/repository"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func dispatcherUser(t *testing.T) *model.User {
	return &model.User{
		ID:           1,
		Email:        "dispatcher@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		FullName:     "Dana Dispatcher",
		Role:         model.RoleDispatcher,
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues token and touches login", func(t *testing.T) {
		users := new(MockUserRepository)
		provider := new(MockAuthProvider)
		svc := NewAuthService(users, provider)

		user := dispatcherUser(t)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		users.On("TouchLogin", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil)
		provider.On("Issue", ctx, user).Return("signed-token", nil)

		principal, token, err := svc.Authenticate(ctx, user.Email, "correct-horse", model.RoleDispatcher)
		require.NoError(t, err)
		assert.Equal(t, "signed-token", token)
		assert.Equal(t, user.ID, principal.ID)
		assert.Equal(t, model.RoleDispatcher, principal.Role)

		users.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		users := new(MockUserRepository)
		provider := new(MockAuthProvider)
		svc := NewAuthService(users, provider)

		user := dispatcherUser(t)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

		_, _, wrongPassword := svc.Authenticate(ctx, user.Email, "wrong", model.RoleDispatcher)
		_, _, unknownEmail := svc.Authenticate(ctx, "nobody@example.com", "wrong", model.RoleDispatcher)

		assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

		// no token issued, no login touched on either path
		provider.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "TouchLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("role mismatch is surfaced after credential check", func(t *testing.T) {
		users := new(MockUserRepository)
		provider := new(MockAuthProvider)
		svc := NewAuthService(users, provider)

		user := dispatcherUser(t)
		user.Role = model.RoleCustomer
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)

		_, _, err := svc.Authenticate(ctx, user.Email, "correct-horse", model.RoleDispatcher)
		assert.ErrorIs(t, err, ErrRoleMismatch)
		provider.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("failed touch login aborts before token issue", func(t *testing.T) {
		users := new(MockUserRepository)
		provider := new(MockAuthProvider)
		svc := NewAuthService(users, provider)

		user := dispatcherUser(t)
		users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		users.On("TouchLogin", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(assert.AnError)

		_, _, err := svc.Authenticate(ctx, user.Email, "correct-horse", model.RoleDispatcher)
		assert.Error(t, err)
		provider.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token with matching role", func(t *testing.T) {
		users := new(MockUserRepository)
		provider := new(MockAuthProvider)
		svc := NewAuthService(users, provider)

		provider.On("Resolve", ctx, "token").Return(&model.Principal{ID: 1, Role: model.RoleDispatcher}, nil)

		principal, err := svc.Authorize(ctx, "token", model.RoleDispatcher)
		require.NoError(t, err)
		assert.Equal(t, int64(1), principal.ID)
	})

	t.Run("unresolvable token yields invalid credentials", func(t *testing.T) {
		users := new(MockUserRepository)
		provider := new(MockAuthProvider)
		svc := NewAuthService(users, provider)

		provider.On("Resolve", ctx, "bad").Return(nil, assert.AnError)

		_, err := svc.Authorize(ctx, "bad", model.RoleDispatcher)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("valid token with wrong role yields forbidden", func(t *testing.T) {
		users := new(MockUserRepository)
		provider := new(MockAuthProvider)
		svc := NewAuthService(users, provider)

		provider.On("Resolve", ctx, "token").Return(&model.Principal{ID: 2, Role: model.RoleDriver}, nil)

		_, err := svc.Authorize(ctx, "token", model.RoleDispatcher)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	users := new(MockUserRepository)
	provider := new(MockAuthProvider)
	svc := NewAuthService(users, provider)

	provider.On("Revoke", ctx, "token").Return(nil)

	assert.NoError(t, svc.Logout(ctx, "token"))
	provider.AssertExpectations(t)
}
