// Package policy decides, for every guarded navigation, whether the current
// session may see the resource. It never fails: every evaluation resolves to
// an allow or a redirect.
package policy

import (
	"context"
	"strings"

	"outreach/pkg/types"
)

type DecisionKind int

const (
	Allow DecisionKind = iota
	RedirectSignIn
	RedirectHome
	RedirectUnauthorized
)

type Decision struct {
	Kind DecisionKind
}

func (d Decision) Allowed() bool {
	return d.Kind == Allow
}

// AssigneeLookup resolves a request's assigned_to for detail-page checks.
// Implemented by the request repository.
type AssigneeLookup interface {
	AssigneeOf(ctx context.Context, requestID string) (*string, error)
}

const (
	pathSignIn          = "/signin"
	pathAdminSignUp     = "/admin-signup"
	pathUserSignUp      = "/user-signup"
	pathVolunteerSignUp = "/volunteer-signup"
	pathRequestList     = "/request"
	pathRequestDetail   = "/requests/"
	pathVolunteerDash   = "/volunteer/dashboard"
)

var authOnlyPaths = []string{
	pathSignIn,
	pathAdminSignUp,
	pathUserSignUp,
	pathVolunteerSignUp,
}

func isAuthOnly(path string) bool {
	for _, p := range authOnlyPaths {
		if path == p {
			return true
		}
	}
	return false
}

func isProtected(path string) bool {
	switch {
	case path == pathRequestList, strings.HasPrefix(path, pathRequestList+"/"):
		return true
	case path == "/requests", strings.HasPrefix(path, pathRequestDetail):
		return true
	case path == pathVolunteerDash:
		return true
	}
	return false
}

// Evaluate walks the decision table in order; the first match wins.
//
// A pending admin (role admin, is_active=false) is stripped to an
// unauthenticated session up front, so every capability decision matches the
// unauthenticated one.
func Evaluate(ctx context.Context, session *types.Session, path string, requests AssigneeLookup) Decision {
	if session != nil && session.Role == types.RoleAdmin && !session.IsActive {
		session = nil
	}

	if isAuthOnly(path) {
		if session == nil {
			return Decision{Kind: Allow}
		}
		if path == pathVolunteerSignUp && session.Role == types.RoleDonor {
			return Decision{Kind: RedirectUnauthorized}
		}
		return Decision{Kind: RedirectHome}
	}

	if !isProtected(path) {
		return Decision{Kind: Allow}
	}

	if session == nil {
		return Decision{Kind: RedirectSignIn}
	}

	switch {
	case path == pathVolunteerDash:
		if session.Role != types.RoleVolunteer {
			return Decision{Kind: RedirectUnauthorized}
		}
		return Decision{Kind: Allow}

	case path == pathRequestList:
		if !session.Role.Can(types.CapabilityViewAllRequests) {
			return Decision{Kind: RedirectUnauthorized}
		}
		return Decision{Kind: Allow}

	case strings.HasPrefix(path, pathRequestDetail):
		if session.Role.Can(types.CapabilityMutateAnyRequest) {
			return Decision{Kind: Allow}
		}

		requestID := strings.TrimPrefix(path, pathRequestDetail)
		if requestID == "" || strings.Contains(requestID, "/") {
			return Decision{Kind: RedirectUnauthorized}
		}

		assignedTo, err := requests.AssigneeOf(ctx, requestID)
		if err != nil || assignedTo == nil || *assignedTo != session.AccountID {
			return Decision{Kind: RedirectUnauthorized}
		}
		return Decision{Kind: Allow}
	}

	return Decision{Kind: RedirectUnauthorized}
}
