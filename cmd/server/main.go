package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harborlight/outreach-backend/internal/config"
	"github.com/harborlight/outreach-backend/internal/db"
	"github.com/harborlight/outreach-backend/internal/handler"
	"github.com/harborlight/outreach-backend/internal/middleware"
	"github.com/harborlight/outreach-backend/internal/repository"
	"github.com/harborlight/outreach-backend/internal/service"
	"github.com/harborlight/outreach-backend/internal/sms"
)

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

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis unavailable, stats cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	transport, err := sms.FromConfig(cfg)
	if err != nil {
		log.Fatal("failed to build SMS transport", zap.Error(err))
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	eventRepo := &repository.EventRepository{DB: conn}
	attendeeRepo := &repository.AttendeeRepository{DB: conn}

	resolver := &service.RecipientResolver{Attendees: attendeeRepo}
	campaignService := &service.CampaignService{
		Campaigns: campaignRepo,
		Events:    eventRepo,
		Resolver:  resolver,
		Log:       log,
	}
	dispatcher := &service.Dispatcher{
		Campaigns: campaignRepo,
		Transport: transport,
		Pacing:    cfg.SendInterval,
		Log:       log,
	}
	checkinService := &service.CheckinService{Attendees: attendeeRepo, Log: log}
	statsService := &service.StatsService{
		DB:       conn,
		Redis:    rdb,
		CacheTTL: cfg.StatsCacheTTL,
		Log:      log,
	}

	campaignHandler := &handler.CampaignHandler{
		Service:    campaignService,
		Dispatcher: dispatcher,
		Log:        log,
	}
	eventHandler := &handler.EventHandler{Events: eventRepo, Attendees: attendeeRepo, Log: log}
	checkinHandler := &handler.CheckinHandler{Service: checkinService, Log: log}
	statsHandler := &handler.StatsHandler{Service: statsService, Log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))

	r.Post("/campaigns", campaignHandler.Create)
	r.Get("/campaigns", campaignHandler.List)
	r.Get("/campaigns/{id}", campaignHandler.Get)
	r.Patch("/campaigns/{id}", campaignHandler.Update)
	r.Delete("/campaigns/{id}", campaignHandler.Delete)
	r.Post("/campaigns/{id}/send", campaignHandler.Send)

	r.Get("/events", eventHandler.List)
	r.Get("/events/{id}", eventHandler.Get)
	r.Post("/checkin", checkinHandler.Checkin)
	r.Get("/stats/overview", statsHandler.Overview)

	log.Info("server listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
