package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken("s3cret", "ops", time.Hour)
	require.NoError(t, err)

	subject, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "ops", subject)

	// ttl 为 0 时令牌不过期
	forever, err := GenerateToken("s3cret", "ops", 0)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", forever)
	assert.NoError(t, err)
}

func TestParseRejects(t *testing.T) {
	valid, err := GenerateToken("s3cret", "ops", time.Hour)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  "someone-else",
		Subject: "ops",
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", valid},
		{"expired", "s3cret", expired},
		{"foreign issuer", "s3cret", foreign},
		{"garbage", "s3cret", "not-a-token"},
		{"empty", "s3cret", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGenerateRequiresSecret(t *testing.T) {
	_, err := GenerateToken("", "ops", time.Hour)
	assert.Error(t, err)
}
