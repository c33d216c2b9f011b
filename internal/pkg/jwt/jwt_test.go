package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/auth"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken("E1001")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), expiresAt, 5)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "E1001", claims[ClaimEmCode])
	assert.Equal(t, TypeAccess, claims[ClaimType])
}

func TestGenerateAccessTokenRejectsBadInput(t *testing.T) {
	_, _, err := NewJWTService("test-secret", "1h").GenerateAccessToken("bad code")
	assert.ErrorIs(t, err, auth.ErrInvalidEmCode)

	_, _, err = NewJWTService("test-secret", "soon").GenerateAccessToken("E1001")
	assert.Error(t, err)
}

func TestEmCodeFromContext(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")
	tokenString, _, err := svc.GenerateAccessToken("E2002")
	require.NoError(t, err)

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	emCode, err := EmCodeFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "E2002", emCode)

	_, err = EmCodeFromContext(context.Background())
	assert.ErrorIs(t, err, auth.ErrMissingEmCode)
}
