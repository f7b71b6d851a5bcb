package service

import (
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/harborlight/outreach-backend/internal/apperrors"
	"github.com/harborlight/outreach-backend/internal/model"
	"github.com/harborlight/outreach-backend/internal/repository"
)

type CampaignService struct {
	Campaigns repository.CampaignRepositoryInterface
	Events    repository.EventRepositoryInterface
	Resolver  *RecipientResolver
	Log       *zap.Logger
}

// CreateCampaignInput carries the create request. AttendeeIDs, when
// non-empty, is an explicit target list that wins over the linked event.
type CreateCampaignInput struct {
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Message      string     `json:"message"`
	EventID      *int       `json:"event_id"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	AttendeeIDs  []int      `json:"attendee_ids"`
}

// CampaignDetails is a campaign with its recipient rows and status counts.
type CampaignDetails struct {
	model.Campaign
	Recipients []model.CampaignRecipient `json:"recipients"`
	Stats      map[string]int            `json:"stats"`
}

func (s *CampaignService) Create(in CreateCampaignInput) (*model.Campaign, error) {
	if err := validateCampaignFields(in.Name, in.Kind, in.Message); err != nil {
		return nil, err
	}
	if in.Kind == model.KindEvent {
		if in.EventID == nil {
			return nil, apperrors.NewValidation("event_id", "required for event campaigns")
		}
		if _, err := s.Events.GetByID(*in.EventID); err != nil {
			return nil, err
		}
	}

	resolved, err := s.Resolver.Resolve(in.Kind, in.AttendeeIDs, in.EventID)
	if err != nil {
		return nil, err
	}

	status := model.StatusDraft
	if in.ScheduledFor != nil {
		status = model.StatusScheduled
	}

	c := &model.Campaign{
		Name:         in.Name,
		Kind:         in.Kind,
		Message:      in.Message,
		EventID:      in.EventID,
		Status:       status,
		ScheduledFor: in.ScheduledFor,
	}

	if err := s.Campaigns.CreateWithRecipients(c, toRecipients(resolved)); err != nil {
		return nil, err
	}

	s.Log.Info("campaign created",
		zap.Int("campaign_id", c.ID),
		zap.String("kind", c.Kind),
		zap.String("status", c.Status),
		zap.Int("recipients", len(resolved)))
	return c, nil
}

// Update applies a partial edit to a not-yet-sent campaign. A present
// attendee_ids field re-resolves and fully replaces the recipient set.
func (s *CampaignService) Update(id int, patch CampaignPatch) (*model.Campaign, error) {
	c, err := s.Campaigns.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !c.Sendable() {
		return nil, apperrors.NewAlreadySent(id)
	}

	if patch.Name.Set {
		if patch.Name.Null || patch.Name.Value == "" {
			return nil, apperrors.NewValidation("name", "cannot be empty")
		}
		c.Name = patch.Name.Value
	}
	if patch.Message.Set {
		if patch.Message.Null || patch.Message.Value == "" {
			return nil, apperrors.NewValidation("message", "cannot be empty")
		}
		if utf8.RuneCountInString(patch.Message.Value) > model.MaxMessageLength {
			return nil, apperrors.NewValidation("message", "exceeds maximum length")
		}
		c.Message = patch.Message.Value
	}
	if patch.ScheduledFor.Set {
		if patch.ScheduledFor.Null {
			c.ScheduledFor = nil
			if c.Status == model.StatusScheduled {
				c.Status = model.StatusDraft
			}
		} else {
			t := patch.ScheduledFor.Value
			c.ScheduledFor = &t
			c.Status = model.StatusScheduled
		}
	}

	// The field update and a recipient replace land in one transaction, so a
	// failed edit never leaves a new recipient set paired with old fields.
	if patch.AttendeeIDs.Set && !patch.AttendeeIDs.Null {
		resolved, err := s.Resolver.Resolve(c.Kind, patch.AttendeeIDs.Value, c.EventID)
		if err != nil {
			return nil, err
		}
		if err := s.Campaigns.UpdateWithRecipients(c, toRecipients(resolved)); err != nil {
			return nil, err
		}
	} else if err := s.Campaigns.Update(c); err != nil {
		return nil, err
	}

	s.Log.Info("campaign updated", zap.Int("campaign_id", id))
	return c, nil
}

func (s *CampaignService) Delete(id int) error {
	c, err := s.Campaigns.GetByID(id)
	if err != nil {
		return err
	}
	if !c.Sendable() {
		return apperrors.NewAlreadySent(id)
	}

	if err := s.Campaigns.Delete(id); err != nil {
		return err
	}

	s.Log.Info("campaign deleted", zap.Int("campaign_id", id))
	return nil
}

func (s *CampaignService) GetDetails(id int) (*CampaignDetails, error) {
	c, err := s.Campaigns.GetByID(id)
	if err != nil {
		return nil, err
	}

	recipients, err := s.Campaigns.ListRecipients(id)
	if err != nil {
		return nil, err
	}

	stats, err := s.Campaigns.GetCampaignStats(id)
	if err != nil {
		return nil, err
	}

	return &CampaignDetails{Campaign: *c, Recipients: recipients, Stats: stats}, nil
}

func (s *CampaignService) List(page, pageSize int, kind, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.Campaigns.ListCampaigns(offset, pageSize, kind, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func validateCampaignFields(name, kind, message string) error {
	if name == "" {
		return apperrors.NewValidation("name", "cannot be empty")
	}
	if message == "" {
		return apperrors.NewValidation("message", "cannot be empty")
	}
	if utf8.RuneCountInString(message) > model.MaxMessageLength {
		return apperrors.NewValidation("message", "exceeds maximum length")
	}
	if kind != model.KindEvent && kind != model.KindAnnouncement {
		return apperrors.NewValidation("kind", "must be event or announcement")
	}
	return nil
}

func toRecipients(resolved []ResolvedRecipient) []model.CampaignRecipient {
	recipients := make([]model.CampaignRecipient, len(resolved))
	for i, rr := range resolved {
		attendeeID := rr.AttendeeID
		recipients[i] = model.CampaignRecipient{
			Phone:      rr.Phone,
			Name:       rr.Name,
			AttendeeID: &attendeeID,
			Status:     model.RecipientPending,
		}
	}
	return recipients
}
