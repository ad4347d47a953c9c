package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret", time.Hour)

	token, err := svc.Register("anna@example.com", "anna", "Anna", "Karenina", "longpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "anna", claims.Username)

	loginToken, err := svc.Login("anna@example.com", "longpassword")
	require.NoError(t, err)

	loginClaims, err := svc.ValidateToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, loginClaims.UserID)
}

func TestRegisterDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret", time.Hour)

	_, err := svc.Register("anna@example.com", "anna", "", "", "longpassword")
	require.NoError(t, err)

	_, err = svc.Register("anna@example.com", "other", "", "", "longpassword")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register("other@example.com", "anna", "", "", "longpassword")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLoginBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret", time.Hour)

	_, err := svc.Register("anna@example.com", "anna", "", "", "longpassword")
	require.NoError(t, err)

	_, err = svc.Login("anna@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "longpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret", time.Hour)

	token, err := svc.Register("anna@example.com", "anna", "", "", "longpassword")
	require.NoError(t, err)

	other := NewAuthService(db, "other-secret", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
