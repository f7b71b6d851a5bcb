package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const overviewCacheKey = "stats:overview"

// Overview is the admin dashboard aggregate.
type Overview struct {
	Events            int            `json:"events"`
	Attendees         int            `json:"attendees"`
	CheckedIn         int            `json:"checked_in"`
	CampaignsByStatus map[string]int `json:"campaigns_by_status"`
	MessagesSent      int            `json:"messages_sent"`
	MessagesFailed    int            `json:"messages_failed"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// StatsService computes dashboard aggregates, cached in Redis with a short
// TTL. The cache is fail-open: with no Redis client, or a Redis error, it
// reads straight from the database.
type StatsService struct {
	DB       *sql.DB
	Redis    *redis.Client
	CacheTTL time.Duration
	Log      *zap.Logger
}

func (s *StatsService) GetOverview(ctx context.Context) (*Overview, error) {
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, overviewCacheKey).Bytes(); err == nil {
			var cached Overview
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	o, err := s.computeOverview(ctx)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(o); err == nil {
			if err := s.Redis.Set(ctx, overviewCacheKey, raw, s.CacheTTL).Err(); err != nil {
				s.Log.Warn("failed to cache overview", zap.Error(err))
			}
		}
	}

	return o, nil
}

func (s *StatsService) computeOverview(ctx context.Context) (*Overview, error) {
	o := &Overview{
		CampaignsByStatus: map[string]int{},
		GeneratedAt:       time.Now(),
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM events`, &o.Events},
		{`SELECT COUNT(*) FROM attendees`, &o.Attendees},
		{`SELECT COUNT(*) FROM attendees WHERE checked_in_at IS NOT NULL`, &o.CheckedIn},
		{`SELECT COUNT(*) FROM campaign_recipients WHERE status='sent'`, &o.MessagesSent},
		{`SELECT COUNT(*) FROM campaign_recipients WHERE status='failed'`, &o.MessagesFailed},
	}
	for _, c := range counts {
		if err := s.DB.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM campaigns GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		o.CampaignsByStatus[status] = count
	}

	return o, rows.Err()
}
