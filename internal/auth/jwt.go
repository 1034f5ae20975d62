package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Nurkic4/www/internal/entity"
)

// Claims represents JWT claims for authenticated requests.
//
// UserID 为 0 时表示旧版 token，只携带用户名（Subject），
// 调用方需按用户名兜底查找用户。
type Claims struct {
	UserID uint `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the subject the token was issued for.
func (c *Claims) Username() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// IsLegacy reports whether the token carries only a username.
func (c *Claims) IsLegacy() bool {
	return c != nil && c.UserID == 0 && strings.TrimSpace(c.Subject) != ""
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewManager creates a new JWT manager.
func NewManager(secret, issuer string, expiry time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if expiry <= 0 {
		expiry = time.Hour * 24
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "www"
	}
	return &Manager{
		secret: []byte(trimmed),
		issuer: issuer,
		expiry: expiry,
	}, nil
}

// GenerateToken issues a signed JWT embedding the user's id and username.
func (m *Manager) GenerateToken(user *entity.DbUser) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if user == nil || user.ID == 0 {
		return "", time.Time{}, errors.New("invalid user for token generation")
	}
	now := time.Now().UTC()
	expiry := now.Add(m.expiry)

	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// GenerateLegacyToken issues a username-only token in the old format.
// 仅用于兼容性测试，新 token 一律带用户 ID。
func (m *Manager) GenerateLegacyToken(username string) (string, error) {
	if m == nil {
		return "", errors.New("jwt manager is nil")
	}
	if strings.TrimSpace(username) == "" {
		return "", errors.New("username must not be empty")
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken validates the token and returns claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == 0 && strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("token carries neither user id nor username")
	}
	return claims, nil
}
