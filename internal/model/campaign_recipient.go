package model

import "time"

// Recipient statuses. "pending" is the only pre-dispatch state; after a
// dispatch completes every recipient is either "sent" or "failed".
const (
	RecipientPending = "pending"
	RecipientSent    = "sent"
	RecipientFailed  = "failed"
)

type CampaignRecipient struct {
	ID         int        `db:"id" json:"id"`
	CampaignID int        `db:"campaign_id" json:"campaign_id"`
	Phone      string     `db:"phone" json:"phone"`
	Name       string     `db:"name" json:"name"`
	AttendeeID *int       `db:"attendee_id" json:"attendee_id,omitempty"`
	Status     string     `db:"status" json:"status"`
	SentAt     *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	LastError  string     `db:"last_error" json:"last_error,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
