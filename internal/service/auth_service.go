package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/config"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

// AuthService validates access tokens issued by the external identity
// provider. The core never issues tokens; it only derives the verified
// (actorID, role) pair every operation requires.
type AuthService struct {
	secret []byte
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{secret: []byte(cfg.Secret)}
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(token string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing identity claims")
	}
	return claims, nil
}
