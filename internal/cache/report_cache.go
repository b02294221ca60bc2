package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"garden-monitor/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned when no report is cached for a garden.
var ErrCacheMiss = errors.New("cache miss")

// ReportCache stores the latest health report per garden in Redis so the
// read API can serve it without re-running a check.
type ReportCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewReportCache creates a report cache. Keys look like
// <prefix><gardenID>:health.
func NewReportCache(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *ReportCache {
	return &ReportCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

func (c *ReportCache) key(gardenID int64) string {
	return fmt.Sprintf("%s%d:health", c.keyPrefix, gardenID)
}

// SetReport stores a report, replacing any previous one for the garden.
func (c *ReportCache) SetReport(ctx context.Context, report *models.HealthReport) error {
	if report == nil {
		return fmt.Errorf("report is required")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal health report: %w", err)
	}

	if err := c.client.Set(ctx, c.key(report.GardenID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache health report: %w", err)
	}

	return nil
}

// GetReport returns the cached report for a garden, or ErrCacheMiss.
func (c *ReportCache) GetReport(ctx context.Context, gardenID int64) (*models.HealthReport, error) {
	if gardenID <= 0 {
		return nil, fmt.Errorf("garden_id is required")
	}

	data, err := c.client.Get(ctx, c.key(gardenID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report models.HealthReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	return &report, nil
}

// InvalidateReport drops the cached report for a garden.
func (c *ReportCache) InvalidateReport(ctx context.Context, gardenID int64) error {
	if gardenID <= 0 {
		return fmt.Errorf("garden_id is required")
	}

	if err := c.client.Del(ctx, c.key(gardenID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached report: %w", err)
	}

	return nil
}
