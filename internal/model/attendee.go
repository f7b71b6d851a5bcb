package model

import "time"

// Attendee is one registration for an event. TicketCode is the opaque string
// encoded into the attendee's QR ticket and used for check-in lookup.
type Attendee struct {
	ID          int        `db:"id" json:"id"`
	EventID     int        `db:"event_id" json:"event_id"`
	Name        string     `db:"name" json:"name"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	TicketCode  string     `db:"ticket_code" json:"ticket_code"`
	CheckedInAt *time.Time `db:"checked_in_at" json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// HasPhone reports whether the attendee can receive SMS.
func (a *Attendee) HasPhone() bool {
	return a.Phone != nil && *a.Phone != ""
}
