package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"outreach/internal"
	"outreach/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeySession contextKey = "session"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// WithSession resolves the session cookie into a *types.Session on the request
// context. It never blocks a request: a missing, expired, or tampered cookie
// just leaves the session nil and lets the route guard decide.
func (s *Service) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(internal.COOKIE_ID_TOKEN_NAME)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var idToken string
		err = s.cookie.Decode(internal.COOKIE_ID_TOKEN_NAME, cookie.Value, &idToken)
		if err != nil {
			s.logger.WithError(err).Debug("failed to decode session cookie")
			next.ServeHTTP(w, r)
			return
		}

		session, err := s.verifier.VerifySession(r.Context(), idToken)
		if err != nil {
			s.logger.WithError(err).Debug("session token rejected")
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) *types.Session {
	session, _ := ctx.Value(contextKeySession).(*types.Session)
	return session
}
