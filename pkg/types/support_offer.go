package types

import "time"

// SupportOffer is a donor's pledge of help. Read-mostly; it never enters the
// request lifecycle.
type SupportOffer struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        *string   `db:"email"`
	Phone        *string   `db:"phone"`
	DonationType string    `db:"donation_type"`
	Availability *string   `db:"availability"`
	ForEvents    bool      `db:"for_events"`
	ForOutreachs bool      `db:"for_outreachs"`
	AccountID    *string   `db:"account_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
