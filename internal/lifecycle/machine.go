// Package lifecycle holds the request state machine: which statuses exist and
// who may move a request between them.
package lifecycle

import (
	"errors"

	"outreach/pkg/types"
)

var (
	ErrInvalidStatus      = errors.New("proposed status is not a defined value")
	ErrNotAssignedToActor = errors.New("request is not assigned to the caller")
	ErrVolunteerStatus    = errors.New("volunteers may only set picked_up, en_route or delivered")
	ErrDeliveredLocked    = errors.New("delivered requests may only be changed by an admin")
	ErrProofRequired      = errors.New("delivery requires at least one proof photo")
	ErrRoleCannotUpdate   = errors.New("role may not update requests")
)

// Statuses lists every status in display order.
func Statuses() []types.RequestStatus {
	return []types.RequestStatus{
		types.StatusRequested,
		types.StatusAssigned,
		types.StatusPickedUp,
		types.StatusEnRoute,
		types.StatusDelivered,
		types.StatusCancelled,
	}
}

// volunteer-settable statuses on their own assignment
var volunteerStatuses = map[types.RequestStatus]struct{}{
	types.StatusPickedUp:  {},
	types.StatusEnRoute:   {},
	types.StatusDelivered: {},
}

// Transition describes one proposed change, with everything the rules need to
// decide it.
type Transition struct {
	Caller     *types.Session
	Current    types.RequestStatus
	Proposed   types.RequestStatus
	AssignedTo *string
	ProofCount int // stored plus newly supplied
}

// Validate applies the transition rules. It returns nil when the change may be
// persisted.
//
//   - admin may set any status at any time, including cancelled
//   - a volunteer may act only on a request assigned to them, only into the
//     volunteer-settable statuses, and delivered demands proof
//   - once delivered, only admin may change the request further
//   - every other role is rejected outright
func Validate(t Transition) error {
	if !t.Proposed.Valid() {
		return ErrInvalidStatus
	}

	if t.Caller.HasAdminCapability() {
		return nil
	}

	if t.Caller == nil || t.Caller.Role != types.RoleVolunteer {
		return ErrRoleCannotUpdate
	}

	if t.AssignedTo == nil || *t.AssignedTo != t.Caller.AccountID {
		return ErrNotAssignedToActor
	}

	if t.Current.Terminal() {
		return ErrDeliveredLocked
	}

	// keeping the current status (a notes-only update) is not a transition
	if t.Proposed == t.Current {
		return nil
	}

	if _, ok := volunteerStatuses[t.Proposed]; !ok {
		return ErrVolunteerStatus
	}

	if t.Proposed == types.StatusDelivered && t.ProofCount == 0 {
		return ErrProofRequired
	}

	return nil
}
