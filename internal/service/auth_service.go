package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ideagauge/internal/model"
)

// ErrInvalidToken is returned for unparseable or expired session tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates anonymous client session tokens. There
// are no accounts; a session token just scopes conversations to one client.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{jwtSecret: []byte(jwtSecret)}
}

// CreateSession mints a fresh client ID and its signed token.
func (s *AuthService) CreateSession() (*model.SessionResponse, error) {
	clientID := "client_" + uuid.New().String()[:8]

	claims := &model.SessionClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.SessionResponse{ClientID: clientID, Token: signed}, nil
}

// ValidateSession parses a session token and returns its claims.
func (s *AuthService) ValidateSession(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || claims.ClientID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
