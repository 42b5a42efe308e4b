package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the JWT claims stored in the wizard session cookie
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
