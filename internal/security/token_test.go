package security_test

import (
	"testing"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := security.NewTokenManager("test-secret", 60, 60*24)

	token, err := manager.GenerateAccessToken(42, "jane@example.com", domain.UserRoleCustomer)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, domain.UserRoleCustomer, claims.Role)
	assert.Equal(t, security.TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshTokenType(t *testing.T) {
	manager := security.NewTokenManager("test-secret", 60, 60*24)

	token, err := manager.GenerateRefreshToken(42, "jane@example.com")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, security.TokenTypeRefresh, claims.Type)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := security.NewTokenManager("secret-a", 60, 60).GenerateAccessToken(42, "jane@example.com", domain.UserRoleCustomer)
	require.NoError(t, err)

	_, err = security.NewTokenManager("secret-b", 60, 60).ValidateToken(token)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	manager := security.NewTokenManager("test-secret", 60, 60)
	_, err := manager.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}
