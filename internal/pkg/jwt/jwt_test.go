package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(123, testSecret, 24)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestParseToken(t *testing.T) {
	token, err := GenerateToken(456, testSecret, 24)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(456), claims.UserID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(123, testSecret, 24)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(123, testSecret, -1)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongSigningMethod(t *testing.T) {
	// tokens signed with "none" must be rejected
	claims := Claims{
		UserID: 123,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims)
	signed, err := token.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(signed, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
