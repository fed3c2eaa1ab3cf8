package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"outreach/internal"
	"outreach/pkg/types"

	"github.com/sirupsen/logrus"
)

type stubAssigneeLookup struct {
	assignedTo map[string]string
}

func (s *stubAssigneeLookup) AssigneeOf(_ context.Context, requestID string) (*string, error) {
	id, ok := s.assignedTo[requestID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func guardService(lookup *stubAssigneeLookup) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Service{
		logger:    logger,
		assignees: lookup,
	}
}

func guardedRequest(t *testing.T, s *Service, path string, session *types.Session) *httptest.ResponseRecorder {
	t.Helper()

	handler := s.RouteGuard(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		r = r.WithContext(context.WithValue(r.Context(), contextKeySession, session))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestRouteGuardDecisions(t *testing.T) {
	lookup := &stubAssigneeLookup{assignedTo: map[string]string{"req-1": "vol-1"}}
	service := guardService(lookup)

	adminSession := &types.Session{AccountID: "adm-1", Role: types.RoleAdmin, IsActive: true}
	pendingAdmin := &types.Session{AccountID: "adm-2", Role: types.RoleAdmin, IsActive: false}
	volunteerSession := &types.Session{AccountID: "vol-1", Role: types.RoleVolunteer, IsActive: true}
	donorSession := &types.Session{AccountID: "don-1", Role: types.RoleDonor, IsActive: true}

	tests := []struct {
		name       string
		path       string
		session    *types.Session
		wantStatus int
		wantTarget string
	}{
		{"public path anonymous", "/", nil, http.StatusOK, ""},
		{"signin anonymous", "/signin", nil, http.StatusOK, ""},
		{"signin while signed in", "/signin", volunteerSession, http.StatusSeeOther, "/"},
		{"volunteer signup as donor", "/volunteer-signup", donorSession, http.StatusSeeOther, "/unauthorized"},
		{"request list anonymous", "/request", nil, http.StatusSeeOther, "/signin"},
		{"request list as admin", "/request", adminSession, http.StatusOK, ""},
		{"request list as volunteer", "/request", volunteerSession, http.StatusSeeOther, "/unauthorized"},
		{"request list as pending admin", "/request", pendingAdmin, http.StatusSeeOther, "/signin"},
		{"detail as assignee", "/requests/req-1", volunteerSession, http.StatusOK, ""},
		{"detail as stranger", "/requests/req-2", volunteerSession, http.StatusSeeOther, "/unauthorized"},
		{"detail as admin", "/requests/req-2", adminSession, http.StatusOK, ""},
		{"dashboard as volunteer", "/volunteer/dashboard", volunteerSession, http.StatusOK, ""},
		{"dashboard as donor", "/volunteer/dashboard", donorSession, http.StatusSeeOther, "/unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := guardedRequest(t, service, tt.path, tt.session)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantTarget != "" && w.Header().Get("Location") != tt.wantTarget {
				t.Fatalf("location = %q, want %q", w.Header().Get("Location"), tt.wantTarget)
			}
		})
	}
}

func TestRouteGuardSetsRedirectCookieOnSignInBounce(t *testing.T) {
	service := guardService(&stubAssigneeLookup{})

	w := guardedRequest(t, service, "/volunteer/dashboard", nil)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}

	var found bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == internal.COOKIE_REDIRECT_NAME {
			found = true
			if cookie.Value != "/volunteer/dashboard" {
				t.Fatalf("redirect cookie value = %q, want the bounced path", cookie.Value)
			}
		}
	}
	if !found {
		t.Fatal("redirect cookie not set on auth bounce")
	}
}
