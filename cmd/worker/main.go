package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harborlight/outreach-backend/internal/config"
	"github.com/harborlight/outreach-backend/internal/db"
	"github.com/harborlight/outreach-backend/internal/queue"
	"github.com/harborlight/outreach-backend/internal/repository"
	"github.com/harborlight/outreach-backend/internal/service"
	"github.com/harborlight/outreach-backend/internal/sms"
)

// The worker delivers scheduled campaigns: a poll loop finds campaigns whose
// send time has passed and enqueues them, and the consumer dispatches one
// campaign at a time. Duplicate pickups are rejected by the dispatch claim.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	conn, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	transport, err := sms.FromConfig(cfg)
	if err != nil {
		log.Fatal("failed to build SMS transport", zap.Error(err))
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	dispatcher := &service.Dispatcher{
		Campaigns: campaignRepo,
		Transport: transport,
		Pacing:    cfg.SendInterval,
		Log:       log,
	}

	publisher, err := queue.NewPublisher(cfg.AMQPURL)
	if err != nil {
		log.Fatal("failed to connect to queue", zap.Error(err))
	}
	defer publisher.Close()

	go pollScheduled(campaignRepo, publisher, cfg.SchedulerPollInterval, log)

	log.Info("worker running, waiting for campaigns")
	err = queue.Consume(cfg.AMQPURL, func(campaignID int) error {
		_, err := dispatcher.Send(ctx, campaignID)
		return err
	}, log)
	if err != nil {
		log.Fatal("consumer stopped", zap.Error(err))
	}
}

type dueFinder interface {
	FindDueScheduled(now time.Time, limit int) ([]int, error)
}

type campaignPublisher interface {
	PublishCampaign(campaignID int) error
}

func pollScheduled(finder dueFinder, publisher campaignPublisher, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		enqueueDue(finder, publisher, time.Now(), log)
	}
}

// enqueueDue publishes every scheduled campaign whose send time has passed,
// returning how many made it onto the queue. A publish failure skips that
// campaign; the next poll picks it up again since it is still "scheduled".
func enqueueDue(finder dueFinder, publisher campaignPublisher, now time.Time, log *zap.Logger) int {
	ids, err := finder.FindDueScheduled(now, 50)
	if err != nil {
		log.Error("failed to poll scheduled campaigns", zap.Error(err))
		return 0
	}

	enqueued := 0
	for _, id := range ids {
		if err := publisher.PublishCampaign(id); err != nil {
			log.Error("failed to enqueue campaign",
				zap.Int("campaign_id", id), zap.Error(err))
			continue
		}
		enqueued++
		log.Info("scheduled campaign enqueued", zap.Int("campaign_id", id))
	}
	return enqueued
}
