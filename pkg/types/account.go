package types

import "time"

// AccountMetadata is the typed extension record stored with the auth provider.
// The key set is closed per role: volunteers carry skills/availability/vehicle,
// donors carry the donation-interest flags, admins carry is_active.
type AccountMetadata struct {
	FullName     string `json:"full_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Zone         string `json:"zone,omitempty"`
	Role         Role   `json:"role,omitempty"`
	IsActive     bool   `json:"is_active"`
	Skills       string `json:"skills,omitempty"`
	Availability string `json:"availability,omitempty"`
	Vehicle      string `json:"vehicle,omitempty"`
	ForEvents    bool   `json:"for_events,omitempty"`
	ForOutreachs bool   `json:"for_outreachs,omitempty"`
}

// Account is a person known to the auth provider.
type Account struct {
	ID        string
	Email     string
	Phone     string
	Metadata  AccountMetadata
	CreatedAt time.Time
}

// User is the public profile projection of an account persisted in the
// relational store (the users table), joined for assignee display.
type User struct {
	ID       string `db:"id"`
	FullName string `db:"full_name"`
	Email    string `db:"email"`
	Phone    string `db:"phone"`
	Role     Role   `db:"role"`
	Zone     string `db:"zone"`
	IsActive bool   `db:"is_active"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Session is the per-request view of the authenticated account, re-derived
// from the verified token on every navigation. It is never cached across
// requests.
type Session struct {
	AccountID string
	Email     string
	FullName  string
	Role      Role
	IsActive  bool
}

// HasAdminCapability reports whether this session carries live admin rights.
// A pending admin (is_active=false) has none.
func (s *Session) HasAdminCapability() bool {
	return s != nil && s.Role == RoleAdmin && s.IsActive
}
