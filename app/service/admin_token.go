package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/crumble-bakery/signup-service/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidAdminToken = errors.New("invalid or expired token")

type AdminClaims struct {
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// AdminTokenService mints and validates the bearer tokens protecting the
// admin endpoints.
type AdminTokenService struct {
	secret string
	ttl    time.Duration
}

func NewAdminTokenService(cfg config.AdminConfig) *AdminTokenService {
	return &AdminTokenService{
		secret: cfg.JWTSecret,
		ttl:    cfg.TokenTTL,
	}
}

func (s *AdminTokenService) GenerateToken() (string, error) {
	now := time.Now()
	claims := &AdminClaims{
		TokenID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   "admin",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *AdminTokenService) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, ErrInvalidAdminToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAdminToken
	}

	return claims, nil
}
