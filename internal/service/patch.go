package service

import (
	"encoding/json"
	"time"
)

// Field is a tri-state patch value: absent from the request body (leave the
// current value alone), explicit JSON null (clear it), or a concrete value.
// Plain pointers cannot express the first two states separately.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// CampaignPatch is a partial update for a not-yet-sent campaign. A present
// AttendeeIDs field fully replaces the recipient set.
type CampaignPatch struct {
	Name         Field[string]    `json:"name"`
	Message      Field[string]    `json:"message"`
	ScheduledFor Field[time.Time] `json:"scheduled_for"`
	AttendeeIDs  Field[[]int]     `json:"attendee_ids"`
}
