// apps/go-server/internal/httpserver/session.go
//
// Session identity: HS256 JWTs carrying the session ID ("sid").
// Tokens travel in an HttpOnly cookie or an Authorization: Bearer header.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errInvalidToken = errors.New("invalid session token")
	errNoSecret     = errors.New("session secret not configured")
)

// ctxSessionKey is the context key type for the session ID.
type ctxSessionKey struct{}

// signSession creates a token for session id expiring after the configured TTL.
func (s *Server) signSession(id string) (string, time.Time, error) {
	if s.opts.Secret == "" {
		return "", time.Time{}, errNoSecret
	}
	now := time.Now()
	exp := now.Add(s.opts.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.Secret))
	return ss, exp, err
}

// parseSession verifies a token and returns its session ID and expiry.
func (s *Server) parseSession(tok string) (string, time.Time, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", time.Time{}, errInvalidToken
	}
	id, _ := claims["sid"].(string)
	if id == "" {
		return "", time.Time{}, errInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, errInvalidToken
	}
	return id, exp.Time, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header or session cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireSession enforces a valid token and injects the session ID into
// the request context. Tokens past half their lifetime are re-issued as a
// fresh cookie, so the lifetime slides with activity like the store's idle
// expiry does.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := s.bearerOrCookie(r)
			if tok == "" {
				http.Error(w, `{"error":"no_session"}`, http.StatusUnauthorized)
				return
			}
			id, exp, err := s.parseSession(tok)
			if err != nil {
				http.Error(w, `{"error":"invalid_session"}`, http.StatusUnauthorized)
				return
			}
			if time.Until(exp) < s.opts.SessionTTL/2 {
				if fresh, newExp, err := s.signSession(id); err == nil {
					s.setSessionCookie(w, fresh, newExp)
				}
			}
			ctx := context.WithValue(r.Context(), ctxSessionKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionID returns the ID placed in context by requireSession.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxSessionKey{}).(string)
	return id
}
