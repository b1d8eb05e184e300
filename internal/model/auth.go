package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT payload for an anonymous client session.
type SessionClaims struct {
	ClientID string `json:"clientId"`
	jwt.RegisteredClaims
}

// SessionResponse is returned from POST /v1/sessions.
type SessionResponse struct {
	ClientID string `json:"clientId"`
	Token    string `json:"token"`
}
