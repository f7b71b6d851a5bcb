package service_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborlight/outreach-backend/internal/apperrors"
	"github.com/harborlight/outreach-backend/internal/model"
	"github.com/harborlight/outreach-backend/internal/repository"
	"github.com/harborlight/outreach-backend/internal/sms"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// --- fake campaign repository ---

type fakeCampaignRepo struct {
	campaigns  map[int]*model.Campaign
	recipients map[int][]model.CampaignRecipient
	nextID     int
	nextRecID  int

	updateCalls int
	released    []int
	deleted     []int
	replaced    map[int][]model.CampaignRecipient

	updateWithRecipientsErr error
	markSentErr             error
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{
		campaigns:  map[int]*model.Campaign{},
		recipients: map[int][]model.CampaignRecipient{},
		nextID:     1,
		nextRecID:  1,
		replaced:   map[int][]model.CampaignRecipient{},
	}
}

func (f *fakeCampaignRepo) addCampaign(c model.Campaign, phones ...string) *model.Campaign {
	c.ID = f.nextID
	f.nextID++
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	c.CreatedAt = time.Now()
	f.campaigns[c.ID] = &c

	recs := []model.CampaignRecipient{}
	for _, phone := range phones {
		recs = append(recs, model.CampaignRecipient{
			ID:         f.nextRecID,
			CampaignID: c.ID,
			Phone:      phone,
			Status:     model.RecipientPending,
		})
		f.nextRecID++
	}
	f.recipients[c.ID] = recs
	return &c
}

func (f *fakeCampaignRepo) CreateWithRecipients(c *model.Campaign, recipients []model.CampaignRecipient) error {
	c.ID = f.nextID
	f.nextID++
	c.CreatedAt = time.Now()
	cp := *c
	f.campaigns[c.ID] = &cp

	for i := range recipients {
		recipients[i].ID = f.nextRecID
		f.nextRecID++
		recipients[i].CampaignID = c.ID
		recipients[i].Status = model.RecipientPending
	}
	f.recipients[c.ID] = recipients
	return nil
}

func (f *fakeCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, apperrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaignRepo) ListCampaigns(offset, limit int, kind, status string) ([]*model.Campaign, int, error) {
	out := []*model.Campaign{}
	for _, c := range f.campaigns {
		if kind != "" && c.Kind != kind {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeCampaignRepo) Update(c *model.Campaign) error {
	f.updateCalls++
	stored, ok := f.campaigns[c.ID]
	if !ok {
		return apperrors.NewCampaignNotFound(c.ID)
	}
	stored.Name = c.Name
	stored.Message = c.Message
	stored.Status = c.Status
	stored.ScheduledFor = c.ScheduledFor
	return nil
}

func (f *fakeCampaignRepo) UpdateWithRecipients(c *model.Campaign, recipients []model.CampaignRecipient) error {
	if f.updateWithRecipientsErr != nil {
		return f.updateWithRecipientsErr
	}
	if err := f.Update(c); err != nil {
		return err
	}
	for i := range recipients {
		recipients[i].ID = f.nextRecID
		f.nextRecID++
		recipients[i].CampaignID = c.ID
	}
	f.recipients[c.ID] = recipients
	f.replaced[c.ID] = recipients
	return nil
}

func (f *fakeCampaignRepo) Delete(id int) error {
	if _, ok := f.campaigns[id]; !ok {
		return apperrors.NewCampaignNotFound(id)
	}
	delete(f.campaigns, id)
	delete(f.recipients, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCampaignRepo) ListRecipients(campaignID int) ([]model.CampaignRecipient, error) {
	recs := f.recipients[campaignID]
	out := make([]model.CampaignRecipient, len(recs))
	copy(out, recs)
	return out, nil
}

func (f *fakeCampaignRepo) ClaimForDispatch(id int) (bool, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return false, nil
	}
	if !c.Sendable() {
		return false, nil
	}
	c.Status = model.StatusSending
	return true, nil
}

func (f *fakeCampaignRepo) ReleaseClaim(id int) error {
	c, ok := f.campaigns[id]
	if !ok || c.Status != model.StatusSending {
		return nil
	}
	if c.ScheduledFor != nil {
		c.Status = model.StatusScheduled
	} else {
		c.Status = model.StatusDraft
	}
	f.released = append(f.released, id)
	return nil
}

func (f *fakeCampaignRepo) MarkSent(id int, at time.Time) error {
	if f.markSentErr != nil {
		return f.markSentErr
	}
	c, ok := f.campaigns[id]
	if !ok {
		return apperrors.NewCampaignNotFound(id)
	}
	c.Status = model.StatusSent
	c.SentAt = &at
	return nil
}

func (f *fakeCampaignRepo) findRecipient(id int) *model.CampaignRecipient {
	for cid := range f.recipients {
		recs := f.recipients[cid]
		for i := range recs {
			if recs[i].ID == id {
				return &recs[i]
			}
		}
	}
	return nil
}

func (f *fakeCampaignRepo) MarkRecipientSent(id int, at time.Time) error {
	rec := f.findRecipient(id)
	if rec == nil {
		return errors.New("recipient not found")
	}
	rec.Status = model.RecipientSent
	rec.SentAt = &at
	rec.LastError = ""
	return nil
}

func (f *fakeCampaignRepo) MarkRecipientFailed(id int, reason string) error {
	rec := f.findRecipient(id)
	if rec == nil {
		return errors.New("recipient not found")
	}
	rec.Status = model.RecipientFailed
	rec.LastError = reason
	return nil
}

func (f *fakeCampaignRepo) GetCampaignStats(campaignID int) (map[string]int, error) {
	stats := map[string]int{
		model.RecipientPending: 0,
		model.RecipientSent:    0,
		model.RecipientFailed:  0,
	}
	for _, rec := range f.recipients[campaignID] {
		stats[rec.Status]++
	}
	return stats, nil
}

func (f *fakeCampaignRepo) FindDueScheduled(now time.Time, limit int) ([]int, error) {
	ids := []int{}
	for id, c := range f.campaigns {
		if c.Status == model.StatusScheduled && c.ScheduledFor != nil && !c.ScheduledFor.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var _ repository.CampaignRepositoryInterface = (*fakeCampaignRepo)(nil)

// --- fake attendee repository ---

type fakeAttendeeRepo struct {
	attendees map[int]model.Attendee
	order     []int
}

func newFakeAttendeeRepo(attendees ...model.Attendee) *fakeAttendeeRepo {
	f := &fakeAttendeeRepo{attendees: map[int]model.Attendee{}}
	for _, a := range attendees {
		f.attendees[a.ID] = a
		f.order = append(f.order, a.ID)
	}
	return f
}

func (f *fakeAttendeeRepo) GetByIDs(ids []int) ([]model.Attendee, error) {
	out := []model.Attendee{}
	for _, id := range ids {
		if a, ok := f.attendees[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttendeeRepo) ListByEvent(eventID int) ([]model.Attendee, error) {
	out := []model.Attendee{}
	for _, id := range f.order {
		if a := f.attendees[id]; a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttendeeRepo) GetByTicketCode(code string) (*model.Attendee, error) {
	for _, id := range f.order {
		if a := f.attendees[id]; a.TicketCode == code {
			cp := a
			return &cp, nil
		}
	}
	return nil, apperrors.NewTicketNotFound(code)
}

func (f *fakeAttendeeRepo) MarkCheckedIn(id int, at time.Time) (bool, error) {
	a, ok := f.attendees[id]
	if !ok {
		return false, nil
	}
	if a.CheckedInAt != nil {
		return false, nil
	}
	a.CheckedInAt = &at
	f.attendees[id] = a
	return true, nil
}

var _ repository.AttendeeRepositoryInterface = (*fakeAttendeeRepo)(nil)

// --- fake event repository ---

type fakeEventRepo struct {
	events map[int]model.Event
}

func newFakeEventRepo(events ...model.Event) *fakeEventRepo {
	f := &fakeEventRepo{events: map[int]model.Event{}}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) GetByID(id int) (*model.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperrors.NewEventNotFound(id)
	}
	return &e, nil
}

func (f *fakeEventRepo) ListAll() ([]model.Event, error) {
	out := []model.Event{}
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

var _ repository.EventRepositoryInterface = (*fakeEventRepo)(nil)

// --- fake transport ---

type fakeTransport struct {
	calls      []string
	failAll    bool
	failPhones map[string]bool
}

func (t *fakeTransport) Send(ctx context.Context, phone, body string) (*sms.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.calls = append(t.calls, phone)
	if t.failAll || t.failPhones[phone] {
		return nil, errors.New("provider rejected message")
	}
	return &sms.Result{MessageID: fmt.Sprintf("msg-%d", len(t.calls))}, nil
}
