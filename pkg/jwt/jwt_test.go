package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret")

	token, err := m.GenerateAccessToken("a5b3a7a4-4a45-4d7b-9d0f-4d1f3c1b2a10", time.Minute)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a5b3a7a4-4a45-4d7b-9d0f-4d1f3c1b2a10", claims.UserID)
	assert.Equal(t, "access", claims.Type)
}

func TestManager_Rejects(t *testing.T) {
	m := NewManager("secret")

	expired, err := m.GenerateAccessToken("u", -time.Minute)
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.Error(t, err)

	foreign, err := NewManager("other").GenerateAccessToken("u", time.Minute)
	require.NoError(t, err)
	_, err = m.ValidateToken(foreign)
	assert.Error(t, err)

	exp := jwt.NewNumericDate(time.Now().Add(time.Minute))
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           "u",
		Type:             "refresh",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.ValidateToken(refresh)
	assert.ErrorIs(t, err, ErrRefreshToken)

	// thiếu exp bị từ chối
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.ValidateToken(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// HS512 không nằm trong danh sách cho phép
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           "u",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.ValidateToken(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("not-a-token")
	assert.Error(t, err)
}
