package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studyhub/internal/config"
	"studyhub/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates user tokens
type AuthService struct {
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService creates a new auth service. It fails when JWT_SECRET is unset.
func NewAuthService(cfg *config.Config) (*AuthService, error) {
	if err := cfg.RequireAuth(); err != nil {
		return nil, err
	}
	return &AuthService{
		jwtSecret: []byte(cfg.JWTSecret),
		now:       time.Now,
	}, nil
}

// IssueToken signs a token for a user. A zero ttl issues a token without expiry.
func (s *AuthService) IssueToken(userID string, role model.Role, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &model.UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken checks a user JWT and returns the principal it names
func (s *AuthService) ValidateToken(tokenString string) (*model.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &model.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}
