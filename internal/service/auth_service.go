package service

import (
	"errors"
	"time"

	"rtiassist/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionTokenService signs and validates the cookie that binds a browser to its wizard session
type SessionTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionTokenService creates a new token service
func NewSessionTokenService(secret string, ttl time.Duration) *SessionTokenService {
	return &SessionTokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL is the lifetime of issued tokens
func (s *SessionTokenService) TTL() time.Duration {
	return s.ttl
}

// NewSessionID returns a fresh opaque session id
func (s *SessionTokenService) NewSessionID() string {
	return uuid.New().String()
}

// IssueToken creates a signed token for a session id
func (s *SessionTokenService) IssueToken(sessionID string) (string, error) {
	now := time.Now()
	claims := &model.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates a token and returns the session id it carries
func (s *SessionTokenService) ParseToken(tokenString string) (string, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.SessionID, nil
}

// NeedsRefresh reports whether a token has used up half of its lifetime
func (s *SessionTokenService) NeedsRefresh(claims *model.SessionClaims, now time.Time) bool {
	if claims.IssuedAt == nil {
		return true
	}
	return now.Sub(claims.IssuedAt.Time) > s.ttl/2
}

// ParseClaims validates a token and returns its claims
func (s *SessionTokenService) ParseClaims(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
