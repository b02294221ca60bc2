package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garden-monitor/internal/cache"
	"garden-monitor/internal/models"
	"garden-monitor/internal/repository"
	"garden-monitor/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGardenReader struct {
	gardens map[int64]*models.Garden
}

func (f *fakeGardenReader) GetGarden(_ context.Context, gardenID int64) (*models.Garden, error) {
	g, ok := f.gardens[gardenID]
	if !ok {
		return nil, fmt.Errorf("garden %d: %w", gardenID, repository.ErrNotFound)
	}
	return g, nil
}

type fakeHealthChecker struct {
	cached  map[int64]*models.HealthReport
	fresh   map[int64]*models.HealthReport
	checked []int64
}

func (f *fakeHealthChecker) CachedReport(_ context.Context, gardenID int64) (*models.HealthReport, error) {
	if r, ok := f.cached[gardenID]; ok {
		return r, nil
	}
	return nil, cache.ErrCacheMiss
}

func (f *fakeHealthChecker) CheckGardenHealth(_ context.Context, gardenID int64) (*models.HealthReport, error) {
	f.checked = append(f.checked, gardenID)
	if r, ok := f.fresh[gardenID]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("garden %d: %w", gardenID, repository.ErrNotFound)
}

type fakeAdviceProvider struct {
	advices map[int64][]models.AdviceAction
	err     error
}

func (f *fakeAdviceProvider) GetAdvice(_ context.Context, gardenID int64) ([]models.AdviceAction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.advices[gardenID], nil
}

type fakeBatchRunner struct {
	summary *service.RunSummary
	err     error
	runs    int
}

func (f *fakeBatchRunner) RunHealthChecksForAllGardens(context.Context) (*service.RunSummary, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeBatchRunner) Status() service.SchedulerStatus {
	return service.SchedulerStatus{
		Running:           false,
		FullCheckInterval: 2 * time.Hour,
		LastRun:           f.summary,
	}
}

func sampleReport(gardenID int64) *models.HealthReport {
	return &models.HealthReport{
		GardenID:      gardenID,
		OverallHealth: models.HealthGood,
		Score:         85,
		Issues: []models.HealthIssue{
			{Category: models.IssueCategoryPlant, Severity: models.SeverityMedium, Message: "Đất khô"},
		},
		Recommendations: []string{"Tưới nước"},
	}
}

func newTestServer(t *testing.T) (*Server, *fakeHealthChecker, *fakeBatchRunner) {
	t.Helper()

	gardens := &fakeGardenReader{gardens: map[int64]*models.Garden{
		1: {ID: 1, UserID: 10, Name: "Vườn rau", Status: models.GardenStatusActive},
	}}
	health := &fakeHealthChecker{
		cached: map[int64]*models.HealthReport{1: sampleReport(1)},
		fresh:  map[int64]*models.HealthReport{},
	}
	advice := &fakeAdviceProvider{advices: map[int64][]models.AdviceAction{
		1: {{Action: "💧 Tưới nước cho cây", Priority: models.PriorityHigh}},
	}}
	runner := &fakeBatchRunner{summary: &service.RunSummary{TotalGardens: 3, Successful: 3}}

	return NewServer(gardens, health, advice, runner, zap.NewNop()), health, runner
}

func TestServer_GetHealthFromCache(t *testing.T) {
	srv, health, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gardens/1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var report models.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, int64(1), report.GardenID)
	assert.Equal(t, 85, report.Score)
	assert.Empty(t, health.checked, "cached report should not trigger a fresh check")
}

func TestServer_GetHealthCacheMissRunsCheck(t *testing.T) {
	srv, health, _ := newTestServer(t)
	delete(health.cached, 1)
	health.fresh[1] = sampleReport(1)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gardens/1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1}, health.checked)
}

func TestServer_GetHealthUnknownGarden(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gardens/999/health", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_GetHealthBadID(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, path := range []string{"/gardens/abc/health", "/gardens/0/health", "/gardens/-1/health"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestServer_GetHealthTextReport(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gardens/1/health/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	body := rec.Body.String()
	assert.Contains(t, body, "🌱 BÁO CÁO SỨC KHỎE VƯỜN: Vườn rau")
	assert.Contains(t, body, "Điểm số: 85/100")
	assert.Contains(t, body, "Đất khô")
}

func TestServer_GetAdvice(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gardens/1/advice", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		GardenID int64                 `json:"garden_id"`
		Advices  []models.AdviceAction `json:"advices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.GardenID)
	require.Len(t, body.Advices, 1)
	assert.Equal(t, "💧 Tưới nước cho cây", body.Advices[0].Action)
}

func TestServer_GetAdviceEmptyListNotNull(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gardens/1/advice", nil)
	srv.advice = &fakeAdviceProvider{advices: map[int64][]models.AdviceAction{}}
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"advices":[]`)
}

func TestServer_SchedulerRun(t *testing.T) {
	srv, _, runner := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scheduler/run", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.runs)
	var summary service.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.TotalGardens)
}

func TestServer_SchedulerRunConflict(t *testing.T) {
	srv, _, runner := newTestServer(t)
	runner.err = service.ErrRunInProgress

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scheduler/run", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_SchedulerRunRejectsGet(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scheduler/run", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_SchedulerStatus(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scheduler/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status service.SchedulerStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Running)
	assert.NotNil(t, status.LastRun)
}

func TestServer_Healthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServer_UnknownGardenSubroute(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gardens/1/photos", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
