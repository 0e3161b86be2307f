// Package jwt xác thực access token do auth service phát hành.
// Dashboard chỉ cần biết owner, không có login/refresh ở đây.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrRefreshToken  = errors.New("refresh token not accepted")
	ErrMissingUserID = errors.New("token has no user_id")
)

type Claims struct {
	UserID string `json:"user_id"`
	Type   string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Manager giữ HMAC secret dùng chung với auth service
type Manager struct {
	secret []byte
	parser *jwt.Parser
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// GenerateAccessToken ký token HS256 có hạn ttl.
// Chỉ dùng cho test và tool dev.
func (m *Manager) GenerateAccessToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Type:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateToken kiểm chữ ký, hạn và loại token
func (m *Manager) ValidateToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	switch {
	case claims.Type == tokenTypeRefresh:
		return nil, ErrRefreshToken
	case claims.UserID == "":
		return nil, ErrMissingUserID
	}
	return claims, nil
}
