package service_test

import (
	"context"
	"testing"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(users *MockUserRepo) service.AuthService {
	tokens := security.NewTokenManager("test-secret", 60, 60*24)
	return service.NewAuthService(users, tokens)
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrNotFound)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "jane@example.com" &&
				u.Role == domain.UserRoleCustomer &&
				u.PasswordHash != "" &&
				u.PasswordHash != "hunter2secret"
		})).Return(nil)

		user, err := newAuthService(users).Register(context.Background(), "Jane Doe", "Jane@Example.com", "+1555", "hunter2secret")
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2secret")))
	})

	t.Run("EmailTaken", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(&domain.User{ID: 1}, nil)

		_, err := newAuthService(users).Register(context.Background(), "Jane", "jane@example.com", "", "hunter2secret")
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		users := new(MockUserRepo)
		_, err := newAuthService(users).Register(context.Background(), "Jane", "jane@example.com", "", "short")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: 42, Email: "jane@example.com", PasswordHash: string(hash), Role: domain.UserRoleCustomer}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(stored, nil)

		result, err := newAuthService(users).Login(context.Background(), "JANE@example.com", "hunter2secret")
		require.NoError(t, err)
		assert.Equal(t, int64(42), result.User.ID)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.NotEqual(t, result.AccessToken, result.RefreshToken)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(stored, nil)

		_, err := newAuthService(users).Login(context.Background(), "jane@example.com", "not-the-password")
		assert.ErrorIs(t, err, domain.ErrWrongCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

		// Unknown email and wrong password are indistinguishable to the caller.
		_, err := newAuthService(users).Login(context.Background(), "ghost@example.com", "whatever123")
		assert.ErrorIs(t, err, domain.ErrWrongCredentials)
	})
}
