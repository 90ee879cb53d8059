package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/safetydesk/safetydesk/internal/config"
)

const keyReportSubmit = "report:submit:%s:%s"

// ReportSubmitLimiter throttles report submission per user per event.
// When redis is not configured the limiter is disabled and every
// submission passes.
type ReportSubmitLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewReportSubmitLimiter(cfg config.Config) *ReportSubmitLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" || cfg.ReportSubmitRate <= 0 || cfg.ReportSubmitBurst <= 0 {
		return &ReportSubmitLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &ReportSubmitLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.ReportSubmitRate,
		burst:   cfg.ReportSubmitBurst,
	}
}

func (l *ReportSubmitLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *ReportSubmitLimiter) AllowSubmit(ctx context.Context, userID, eventID snowflake.ID) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	key := fmt.Sprintf(keyReportSubmit, userID.String(), eventID.String())
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
