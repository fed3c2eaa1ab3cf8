// Package assign matches requests to volunteers: bounded volunteer search and
// the assigned_to overwrite. Admin gating happens at the route guard; the
// engine itself is stateless and synchronous per call.
package assign

import (
	"context"
	"fmt"
	"strings"

	"outreach/pkg/types"
)

const searchLimit = 25

// VolunteerSearcher is implemented by the user repository.
type VolunteerSearcher interface {
	SearchVolunteers(ctx context.Context, term string, limit uint64) ([]*types.User, error)
}

// AssigneeWriter is implemented by the request repository.
type AssigneeWriter interface {
	SetAssignee(ctx context.Context, requestID, volunteerID string) error
}

type Engine struct {
	users    VolunteerSearcher
	requests AssigneeWriter
}

func NewEngine(users VolunteerSearcher, requests AssigneeWriter) *Engine {
	return &Engine{users: users, requests: requests}
}

// Search returns a bounded candidate list matching the term across volunteer
// name, email and phone. A blank term returns the first page of volunteers.
func (e *Engine) Search(ctx context.Context, term string) ([]*types.User, error) {
	term = strings.TrimSpace(term)

	volunteers, err := e.users.SearchVolunteers(ctx, term, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search volunteers: %w", err)
	}

	return volunteers, nil
}

// Assign overwrites assigned_to on the request. Last write wins: two admins
// assigning concurrently race with no version check.
func (e *Engine) Assign(ctx context.Context, requestID, volunteerID string) error {
	if requestID == "" || volunteerID == "" {
		return fmt.Errorf("assign: request and volunteer ids are required")
	}

	if err := e.requests.SetAssignee(ctx, requestID, volunteerID); err != nil {
		return fmt.Errorf("assign request %s: %w", requestID, err)
	}

	return nil
}
