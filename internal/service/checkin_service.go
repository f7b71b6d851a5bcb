package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harborlight/outreach-backend/internal/apperrors"
	"github.com/harborlight/outreach-backend/internal/model"
	"github.com/harborlight/outreach-backend/internal/repository"
)

type CheckinService struct {
	Attendees repository.AttendeeRepositoryInterface
	Log       *zap.Logger
}

// Checkin marks the attendee behind a scanned QR ticket code as present.
// A second scan of the same ticket is rejected.
func (s *CheckinService) Checkin(code string) (*model.Attendee, error) {
	if code == "" {
		return nil, apperrors.NewValidation("ticket_code", "cannot be empty")
	}

	attendee, err := s.Attendees.GetByTicketCode(code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := s.Attendees.MarkCheckedIn(attendee.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewInvalidState(
			fmt.Sprintf("attendee %d is already checked in", attendee.ID))
	}

	attendee.CheckedInAt = &now
	s.Log.Info("attendee checked in",
		zap.Int("attendee_id", attendee.ID),
		zap.Int("event_id", attendee.EventID))
	return attendee, nil
}
