package util

import (
	"testing"
	"time"

	"mdla_service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "prof@example.com", Role: model.Teacher}
	user.ID = 42

	token, err := GenerateJWT(user, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
	assert.Equal(t, "prof@example.com", claims.Email)
	assert.Equal(t, "mdla-service", claims.Issuer)
}

func TestParseJWTRejectsBadTokens(t *testing.T) {
	user := &model.User{Role: model.Client}
	user.ID = 7

	expired, err := GenerateJWT(user, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, testSecret)
	assert.Error(t, err)

	valid, err := GenerateJWT(user, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(valid, "some-other-secret-some-other-secret")
	assert.Error(t, err)

	_, err = ParseJWT("not.a.token", testSecret)
	assert.Error(t, err)
}
