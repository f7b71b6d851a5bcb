package model

import "time"

// Campaign kinds.
const (
	KindEvent        = "event"
	KindAnnouncement = "announcement"
)

// Campaign statuses. A campaign moves draft -> (scheduled ->) sending -> sent.
// "sending" is the transient state held while a dispatch claim is active;
// "sent" is terminal and the campaign is immutable from then on.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusSent      = "sent"
)

// MaxMessageLength is the longest message body a campaign may carry
// (the concatenated-SMS limit most gateways enforce).
const MaxMessageLength = 1600

type Campaign struct {
	ID           int        `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Kind         string     `db:"kind" json:"kind"`
	Message      string     `db:"message" json:"message"`
	EventID      *int       `db:"event_id" json:"event_id,omitempty"`
	Status       string     `db:"status" json:"status"`
	ScheduledFor *time.Time `db:"scheduled_for" json:"scheduled_for,omitempty"`
	SentAt       *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Sendable reports whether the campaign can still be claimed for dispatch.
func (c *Campaign) Sendable() bool {
	return c.Status == StatusDraft || c.Status == StatusScheduled
}
