package policy

import (
	"context"
	"errors"
	"testing"

	"outreach/pkg/types"
)

type fakeAssigneeLookup struct {
	assignees map[string]*string
	err       error
	calls     int
}

func (f *fakeAssigneeLookup) AssigneeOf(_ context.Context, requestID string) (*string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	assignee, ok := f.assignees[requestID]
	if !ok {
		return nil, types.ErrRequestNotFound
	}
	return assignee, nil
}

func lookupWith(requestID, assigneeID string) *fakeAssigneeLookup {
	return &fakeAssigneeLookup{assignees: map[string]*string{requestID: &assigneeID}}
}

func session(role types.Role, id string) *types.Session {
	return &types.Session{AccountID: id, Role: role, IsActive: true}
}

func TestEvaluate_DecisionTable(t *testing.T) {
	admin := session(types.RoleAdmin, "admin-1")
	pendingAdmin := &types.Session{AccountID: "admin-2", Role: types.RoleAdmin, IsActive: false}
	volunteer := session(types.RoleVolunteer, "vol-1")
	donor := session(types.RoleDonor, "donor-1")
	user := session(types.RoleUser, "user-1")

	lookup := lookupWith("req-1", "vol-1")

	tests := []struct {
		name    string
		session *types.Session
		path    string
		want    DecisionKind
	}{
		// rule 1: no session on protected resources
		{"anonymous request list", nil, "/request", RedirectSignIn},
		{"anonymous request detail", nil, "/requests/req-1", RedirectSignIn},
		{"anonymous volunteer dashboard", nil, "/volunteer/dashboard", RedirectSignIn},

		// rule 2: auth-only pages
		{"anonymous signin", nil, "/signin", Allow},
		{"signed-in signin", user, "/signin", RedirectHome},
		{"signed-in admin signup", admin, "/admin-signup", RedirectHome},
		{"donor volunteer-signup", donor, "/volunteer-signup", RedirectUnauthorized},
		{"volunteer volunteer-signup", volunteer, "/volunteer-signup", RedirectHome},

		// rule 3: request list is admin only
		{"admin request list", admin, "/request", Allow},
		{"volunteer request list", volunteer, "/request", RedirectUnauthorized},
		{"donor request list", donor, "/request", RedirectUnauthorized},

		// rule 4: volunteer dashboard
		{"volunteer dashboard", volunteer, "/volunteer/dashboard", Allow},
		{"admin on volunteer dashboard", admin, "/volunteer/dashboard", RedirectUnauthorized},

		// rule 5: request detail
		{"admin request detail", admin, "/requests/req-1", Allow},
		{"assignee request detail", volunteer, "/requests/req-1", Allow},
		{"other volunteer request detail", session(types.RoleVolunteer, "vol-2"), "/requests/req-1", RedirectUnauthorized},
		{"plain user request detail", user, "/requests/req-1", RedirectUnauthorized},

		// rule 6: unguarded paths
		{"anonymous home", nil, "/", Allow},
		{"donor support offer", donor, "/support-offer", Allow},
		{"pending admin unguarded page", pendingAdmin, "/pending-approval", Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(context.Background(), tt.session, tt.path, lookup)
			if got.Kind != tt.want {
				t.Fatalf("Evaluate(%q) = %v, want %v", tt.path, got.Kind, tt.want)
			}
		})
	}
}

// A pending admin must get exactly the decisions an unauthenticated visitor
// gets, for every guarded path.
func TestEvaluate_PendingAdminEqualsAnonymous(t *testing.T) {
	pending := &types.Session{AccountID: "admin-2", Role: types.RoleAdmin, IsActive: false}
	lookup := lookupWith("req-1", "vol-1")

	paths := []string{
		"/request",
		"/requests/req-1",
		"/volunteer/dashboard",
		"/signin",
		"/admin-signup",
		"/",
	}

	for _, path := range paths {
		anonymous := Evaluate(context.Background(), nil, path, lookup)
		got := Evaluate(context.Background(), pending, path, lookup)
		if got.Kind != anonymous.Kind {
			t.Errorf("path %q: pending admin got %v, anonymous got %v", path, got.Kind, anonymous.Kind)
		}
	}
}

func TestEvaluate_DetailLookupFailures(t *testing.T) {
	volunteer := session(types.RoleVolunteer, "vol-1")

	t.Run("request absent", func(t *testing.T) {
		lookup := &fakeAssigneeLookup{assignees: map[string]*string{}}
		got := Evaluate(context.Background(), volunteer, "/requests/missing", lookup)
		if got.Kind != RedirectUnauthorized {
			t.Fatalf("expected unauthorized for missing request, got %v", got.Kind)
		}
	})

	t.Run("store error", func(t *testing.T) {
		lookup := &fakeAssigneeLookup{err: errors.New("connection refused")}
		got := Evaluate(context.Background(), volunteer, "/requests/req-1", lookup)
		if got.Kind != RedirectUnauthorized {
			t.Fatalf("expected unauthorized on lookup error, got %v", got.Kind)
		}
	})

	t.Run("unassigned request", func(t *testing.T) {
		lookup := &fakeAssigneeLookup{assignees: map[string]*string{"req-1": nil}}
		got := Evaluate(context.Background(), volunteer, "/requests/req-1", lookup)
		if got.Kind != RedirectUnauthorized {
			t.Fatalf("expected unauthorized for unassigned request, got %v", got.Kind)
		}
	})
}

// Admins never hit the store for detail checks.
func TestEvaluate_AdminSkipsLookup(t *testing.T) {
	lookup := &fakeAssigneeLookup{err: errors.New("should not be called")}
	got := Evaluate(context.Background(), session(types.RoleAdmin, "admin-1"), "/requests/req-1", lookup)
	if got.Kind != Allow {
		t.Fatalf("expected allow, got %v", got.Kind)
	}
	if lookup.calls != 0 {
		t.Fatalf("expected no lookup calls, got %d", lookup.calls)
	}
}
