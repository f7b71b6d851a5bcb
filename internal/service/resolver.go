package service

import (
	"github.com/harborlight/outreach-backend/internal/model"
	"github.com/harborlight/outreach-backend/internal/repository"
)

// ResolvedRecipient is one phone-bearing target produced by the resolver.
type ResolvedRecipient struct {
	AttendeeID int
	Name       string
	Phone      string
}

// RecipientResolver determines a campaign's target set. It is a pure read:
// empty results are valid, nothing is mutated.
type RecipientResolver struct {
	Attendees repository.AttendeeRepositoryInterface
}

// Resolve picks recipients from an explicit attendee-id list when one is
// given (input order preserved), otherwise from the linked event for event
// campaigns. Attendees without a phone number are dropped. An announcement
// with no explicit list resolves to zero recipients.
func (r *RecipientResolver) Resolve(kind string, attendeeIDs []int, eventID *int) ([]ResolvedRecipient, error) {
	var attendees []model.Attendee
	var err error

	switch {
	case len(attendeeIDs) > 0:
		attendees, err = r.Attendees.GetByIDs(attendeeIDs)
	case kind == model.KindEvent && eventID != nil:
		attendees, err = r.Attendees.ListByEvent(*eventID)
	default:
		return []ResolvedRecipient{}, nil
	}
	if err != nil {
		return nil, err
	}

	recipients := make([]ResolvedRecipient, 0, len(attendees))
	for i := range attendees {
		a := &attendees[i]
		if !a.HasPhone() {
			continue
		}
		recipients = append(recipients, ResolvedRecipient{
			AttendeeID: a.ID,
			Name:       a.Name,
			Phone:      *a.Phone,
		})
	}
	return recipients, nil
}
