package middleware

import (
	"context"
	"net/http"
	"time"

	"rtiassist/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const SessionIDKey contextKey = "sessionId"

// SessionCookie carries the signed session token
const SessionCookie = "rti_session"

// SessionMiddleware binds every request to a wizard session id
type SessionMiddleware struct {
	tokens *service.SessionTokenService
	secure bool
	logger *zap.Logger
}

// NewSessionMiddleware creates a new session middleware. secure marks the cookie Secure.
func NewSessionMiddleware(tokens *service.SessionTokenService, secure bool, logger *zap.Logger) *SessionMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionMiddleware{tokens: tokens, secure: secure, logger: logger}
}

// Attach reads the session cookie, or starts a new session when it is missing or invalid.
// A token past half its lifetime is reissued for the same session id.
func (m *SessionMiddleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		issue := true
		if c, err := r.Cookie(SessionCookie); err == nil {
			if claims, err := m.tokens.ParseClaims(c.Value); err == nil {
				sessionID = claims.SessionID
				issue = m.tokens.NeedsRefresh(claims, time.Now())
			}
		}
		if sessionID == "" {
			sessionID = m.tokens.NewSessionID()
		}

		if issue {
			token, err := m.tokens.IssueToken(sessionID)
			if err != nil {
				m.logger.Error("issue session token", zap.Error(err))
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(m.tokens.TTL().Seconds()),
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts session ID from context
func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(SessionIDKey); v != nil {
		return v.(string)
	}
	return ""
}
