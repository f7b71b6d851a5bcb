package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harborlight/outreach-backend/internal/apperrors"
	"github.com/harborlight/outreach-backend/internal/repository"
	"github.com/harborlight/outreach-backend/internal/sms"
)

// Dispatcher runs a campaign send start-to-finish: one claim, one strictly
// serial pass over the recipients in persisted order, one terminal mark-sent.
type Dispatcher struct {
	Campaigns repository.CampaignRepositoryInterface
	Transport sms.Transport

	// Pacing is the flat pause after every attempt, success or failure.
	// It is provider throttling, not backoff; failed sends are not retried.
	Pacing time.Duration

	Log *zap.Logger
}

type DispatchResult struct {
	CampaignID int `json:"campaign_id"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// Send dispatches the campaign's message to every recipient. Per-recipient
// failures are recorded on the row and never abort the loop; once the loop
// starts, the campaign always ends "sent" (attempted-once, not delivery
// confirmation). Preconditions reject before any recipient is touched:
// unknown campaign, already sent or mid-send, empty recipient set.
func (d *Dispatcher) Send(ctx context.Context, campaignID int) (*DispatchResult, error) {
	// Once started, the loop runs to completion. A caller going away (an HTTP
	// client disconnect cancels the request context) must not fail the
	// remaining provider calls mid-dispatch.
	ctx = context.WithoutCancel(ctx)

	campaign, err := d.Campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	claimed, err := d.Campaigns.ClaimForDispatch(campaignID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.NewAlreadySent(campaignID)
	}

	recipients, err := d.Campaigns.ListRecipients(campaignID)
	if err != nil {
		d.release(campaignID)
		return nil, err
	}
	if len(recipients) == 0 {
		d.release(campaignID)
		return nil, apperrors.NewNoRecipients(campaignID)
	}

	result := &DispatchResult{CampaignID: campaignID, Total: len(recipients)}

	for i := range recipients {
		rec := &recipients[i]

		res, sendErr := d.Transport.Send(ctx, rec.Phone, campaign.Message)
		if sendErr != nil {
			result.Failed++
			if err := d.Campaigns.MarkRecipientFailed(rec.ID, sendErr.Error()); err != nil {
				d.Log.Error("failed to record recipient failure",
					zap.Int("recipient_id", rec.ID), zap.Error(err))
			}
			d.Log.Warn("send failed",
				zap.Int("campaign_id", campaignID),
				zap.Int("recipient_id", rec.ID),
				zap.Error(sendErr))
		} else {
			result.Sent++
			if err := d.Campaigns.MarkRecipientSent(rec.ID, time.Now()); err != nil {
				d.Log.Error("failed to record recipient success",
					zap.Int("recipient_id", rec.ID), zap.Error(err))
			}
			d.Log.Debug("send ok",
				zap.Int("campaign_id", campaignID),
				zap.Int("recipient_id", rec.ID),
				zap.String("message_id", res.MessageID))
		}

		if d.Pacing > 0 {
			time.Sleep(d.Pacing)
		}
	}

	if err := d.Campaigns.MarkSent(campaignID, time.Now()); err != nil {
		// Recipient outcomes are already durable; the campaign stays in
		// "sending" until it is marked sent by hand. Releasing the claim here
		// would let a second dispatch re-send to already-attempted recipients.
		d.Log.Error("failed to finalize campaign, stuck in sending until marked sent manually",
			zap.Int("campaign_id", campaignID),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
			zap.Error(err))
		return nil, err
	}

	d.Log.Info("campaign dispatched",
		zap.Int("campaign_id", campaignID),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("total", result.Total))
	return result, nil
}

func (d *Dispatcher) release(campaignID int) {
	if err := d.Campaigns.ReleaseClaim(campaignID); err != nil {
		d.Log.Error("failed to release dispatch claim",
			zap.Int("campaign_id", campaignID), zap.Error(err))
	}
}
