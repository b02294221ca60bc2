package cache

import (
	"context"
	"testing"
	"time"

	"garden-monitor/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewReportCache(client, "garden:", 2*time.Hour, zap.NewNop()), mr
}

func TestReportCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	report := &models.HealthReport{
		GardenID:        12,
		OverallHealth:   models.HealthWarning,
		Score:           62,
		Issues:          []models.HealthIssue{{Category: models.IssueCategorySensor, Severity: models.SeverityHigh, Message: "Cảm biến nhiệt độ đã ngừng gửi dữ liệu từ 3 giờ trước."}},
		Recommendations: []string{"⚠️ Vườn cần được chăm sóc thêm."},
	}

	require.NoError(t, c.SetReport(ctx, report))

	got, err := c.GetReport(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestReportCache_MissForUnknownGarden(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.GetReport(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestReportCache_KeyFormat(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetReport(ctx, &models.HealthReport{GardenID: 5, Score: 100}))

	assert.True(t, mr.Exists("garden:5:health"))
}

func TestReportCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetReport(ctx, &models.HealthReport{GardenID: 3, Score: 80}))

	mr.FastForward(3 * time.Hour)

	_, err := c.GetReport(ctx, 3)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestReportCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetReport(ctx, &models.HealthReport{GardenID: 8, Score: 90}))
	require.NoError(t, c.InvalidateReport(ctx, 8))

	_, err := c.GetReport(ctx, 8)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
