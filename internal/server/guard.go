package server

import (
	"net/http"
	"time"

	"outreach/internal"
	"outreach/internal/policy"
)

// RouteGuard applies the navigation policy to every request. Decisions are
// allow-or-redirect only; handlers behind the guard can assume the session has
// already cleared it.
func (s *Service) RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		decision := policy.Evaluate(r.Context(), session, r.URL.Path, s.assignees)

		switch decision.Kind {
		case policy.Allow:
			next.ServeHTTP(w, r)

		case policy.RedirectSignIn:
			s.setRedirectCookie(w, r.URL.Path, time.Minute*5)
			http.Redirect(w, r, "/signin", http.StatusSeeOther)

		case policy.RedirectHome:
			http.Redirect(w, r, "/", http.StatusSeeOther)

		case policy.RedirectUnauthorized:
			http.Redirect(w, r, "/unauthorized", http.StatusSeeOther)
		}
	})
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
