package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

type mockDashboardStats struct {
	calls int
}

func (m *mockDashboardStats) CountByStatus(ctx context.Context) (map[models.GrievanceStatus]int, error) {
	m.calls++
	return map[models.GrievanceStatus]int{
		models.StatusInProgress: 3,
		models.StatusClosed:     1,
	}, nil
}

func (m *mockDashboardStats) CountByCategory(ctx context.Context) (map[models.Category]int, error) {
	return map[models.Category]int{models.CategoryRoads: 4}, nil
}

func (m *mockDashboardStats) BreachStats(ctx context.Context) (int, int, error) {
	return 4, 1, nil
}

type mockDepartmentStats struct{}

func (m *mockDepartmentStats) HealthCounts(ctx context.Context) (map[models.DepartmentHealth]int, error) {
	return map[models.DepartmentHealth]int{models.DepartmentStable: 5}, nil
}

type memoryCache struct {
	data map[string][]byte
	sets int
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return appErrors.Clone(appErrors.ErrCacheMiss, "")
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = raw
	c.sets++
	return nil
}

func TestDashboardSummaryComputesAndCaches(t *testing.T) {
	stats := &mockDashboardStats{}
	cache := &memoryCache{}
	svc := NewDashboardService(stats, &mockDepartmentStats{}, cache, time.Minute, nil)
	svc.now = fixedNow

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalGrievances)
	assert.Equal(t, 1, summary.Breached)
	assert.Equal(t, 25, summary.BreachRatePercent)
	assert.Equal(t, 3, summary.ByStatus[models.StatusInProgress])
	assert.Equal(t, 4, summary.ByCategory[models.CategoryRoads])
	assert.Equal(t, 5, summary.DepartmentHealth[models.DepartmentStable])
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, stats.calls)

	// A warm cache serves the second call without re-aggregating.
	again, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.TotalGrievances, again.TotalGrievances)
	assert.Equal(t, 1, stats.calls)
}

func TestDashboardSummaryWithoutCache(t *testing.T) {
	stats := &mockDashboardStats{}
	svc := NewDashboardService(stats, &mockDepartmentStats{}, nil, 0, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalGrievances)

	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.calls)
}
