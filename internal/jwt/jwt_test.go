package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndGetClaims(t *testing.T) {
	ctx := context.Background()
	j := New("secret", time.Minute)
	userID := uuid.New()

	token, err := j.Generate(ctx, userID, true)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.GetClaims(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestGetClaims_WrongSecret(t *testing.T) {
	ctx := context.Background()
	j := New("secret", time.Minute)

	token, err := j.Generate(ctx, uuid.New(), false)
	assert.NoError(t, err)

	other := New("other-secret", time.Minute)
	_, err = other.GetClaims(ctx, token)
	assert.Error(t, err)
}

func TestGetClaims_Expired(t *testing.T) {
	ctx := context.Background()
	j := New("secret", -time.Minute)

	token, err := j.Generate(ctx, uuid.New(), false)
	assert.NoError(t, err)

	err = j.Validate(ctx, token)
	assert.Error(t, err)
}

func TestGetTokenFromRequest(t *testing.T) {
	ctx := context.Background()
	j := New("secret", time.Minute)

	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	_, err := j.GetTokenFromRequest(ctx, r)
	assert.Error(t, err, "missing header")

	r.Header.Set("Authorization", "Basic abc")
	_, err = j.GetTokenFromRequest(ctx, r)
	assert.Error(t, err, "wrong scheme")

	r.Header.Set("Authorization", "Bearer some-token")
	token, err := j.GetTokenFromRequest(ctx, r)
	assert.NoError(t, err)
	assert.Equal(t, "some-token", token)
}
