package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is how long issued tokens stay valid.
const DefaultTokenLifetime = 24 * time.Hour

// Claims are the JWT claims issued and accepted by this API.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService provides JWT token generation and validation.
type JWTService struct {
	secret   []byte
	lifetime time.Duration
}

// NewJWTService creates a JWT service signing with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret), lifetime: DefaultTokenLifetime}
}

// GenerateToken issues a signed token for the given subject.
func (s *JWTService) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a token string and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) error {
	if tokenString == "" {
		return fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return fmt.Errorf("malformed token: %w", err)
		default:
			return fmt.Errorf("failed to parse token: %w", err)
		}
	}
	if !token.Valid {
		return fmt.Errorf("token is not valid")
	}
	return nil
}
