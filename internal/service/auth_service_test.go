package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhub/internal/config"
	"studyhub/internal/model"
)

func TestAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(&config.Config{})
	var missing *config.MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"JWT_SECRET"}, missing.Keys)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewAuthService(&config.Config{JWTSecret: "test-secret"})
	require.NoError(t, err)

	token, err := svc.IssueToken("tut-1", model.RoleTutor, time.Hour)
	require.NoError(t, err)

	p, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tut-1", p.UserID)
	assert.True(t, p.IsTutor())
}

func TestValidateTokenRejects(t *testing.T) {
	svc, err := NewAuthService(&config.Config{JWTSecret: "test-secret"})
	require.NoError(t, err)
	other, err := NewAuthService(&config.Config{JWTSecret: "other-secret"})
	require.NoError(t, err)

	forged, err := other.IssueToken("stu-1", model.RoleStudent, 0)
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	expiring, err := svc.IssueToken("stu-1", model.RoleStudent, time.Minute)
	require.NoError(t, err)
	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(expiring)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
