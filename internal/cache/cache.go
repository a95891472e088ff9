package cache

import (
	"context"
	"time"

	"stock-app/internal/models"
)

// StatsCache holds dashboard aggregates for a short TTL so repeated
// dashboard polls do not hammer the database.
type StatsCache interface {
	Get(ctx context.Context, key string) (*models.DashboardStats, bool, error)
	Set(ctx context.Context, key string, value *models.DashboardStats, ttl time.Duration) error
}

type NoopStatsCache struct{}

func (NoopStatsCache) Get(_ context.Context, _ string) (*models.DashboardStats, bool, error) {
	return nil, false, nil
}

func (NoopStatsCache) Set(_ context.Context, _ string, _ *models.DashboardStats, _ time.Duration) error {
	return nil
}
