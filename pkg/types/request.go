package types

import "time"

type RequestStatus string

const (
	StatusRequested RequestStatus = "requested"
	StatusAssigned  RequestStatus = "assigned"
	StatusPickedUp  RequestStatus = "picked_up"
	StatusEnRoute   RequestStatus = "en_route"
	StatusDelivered RequestStatus = "delivered"
	StatusCancelled RequestStatus = "cancelled"
)

var allStatuses = map[RequestStatus]struct{}{
	StatusRequested: {},
	StatusAssigned:  {},
	StatusPickedUp:  {},
	StatusEnRoute:   {},
	StatusDelivered: {},
	StatusCancelled: {},
}

func (s RequestStatus) Valid() bool {
	_, ok := allStatuses[s]
	return ok
}

// Terminal reports whether the status admits no further volunteer transitions.
func (s RequestStatus) Terminal() bool {
	return s == StatusDelivered
}

type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
)

// Request is one help request tracked from intake to delivery.
type Request struct {
	ID            string        `db:"id"`
	RequestNumber string        `db:"request_number"`
	RequestTitle  *string       `db:"request_title"`
	Status        RequestStatus `db:"status"`
	Priority      *string       `db:"priority"`
	NeedType      string        `db:"need_type"`
	Zone          string        `db:"zone"`
	Source        string        `db:"source"`

	ContactName        *string `db:"contact_name"`
	ContactEmail       *string `db:"contact_email"`
	ContactPhone       *string `db:"contact_phone"`
	ContactLocation    *string `db:"contact_location"`
	ContactDescription *string `db:"contact_description"`

	Notes         *string  `db:"notes"`
	InternalNotes *string  `db:"internal_notes"`
	ProofURLs     []string `db:"proof_urls"` // append-only, order preserved

	AssignedTo  *string `db:"assigned_to"`
	SubmittedBy *string `db:"submitted_by"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// AssignedUser is the joined public profile of the assignee, never written
	// back through this struct.
	AssignedUser *User `db:"-"`
}

// Clone returns a deep copy safe to mutate independently, used by the
// optimistic cache to take exact snapshots.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	if r.ProofURLs != nil {
		out.ProofURLs = make([]string, len(r.ProofURLs))
		copy(out.ProofURLs, r.ProofURLs)
	}
	if r.AssignedUser != nil {
		user := *r.AssignedUser
		out.AssignedUser = &user
	}
	return &out
}

// RequestEvent is one audit row recording a status or assignment change.
type RequestEvent struct {
	ID        string    `db:"id"`
	RequestID string    `db:"request_id"`
	ActorID   *string   `db:"actor_id"`
	EventType string    `db:"event_type"`
	Detail    *string   `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}
