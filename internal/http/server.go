package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"garden-monitor/internal/cache"
	"garden-monitor/internal/models"
	"garden-monitor/internal/repository"
	"garden-monitor/internal/service"

	"go.uber.org/zap"
)

// HealthChecker runs and reads garden health reports.
type HealthChecker interface {
	CheckGardenHealth(ctx context.Context, gardenID int64) (*models.HealthReport, error)
	CachedReport(ctx context.Context, gardenID int64) (*models.HealthReport, error)
}

// AdviceProvider builds care advice for a garden.
type AdviceProvider interface {
	GetAdvice(ctx context.Context, gardenID int64) ([]models.AdviceAction, error)
}

// BatchRunner triggers and reports on scheduler batch runs.
type BatchRunner interface {
	RunHealthChecksForAllGardens(ctx context.Context) (*service.RunSummary, error)
	Status() service.SchedulerStatus
}

// GardenReader loads a single garden.
type GardenReader interface {
	GetGarden(ctx context.Context, gardenID int64) (*models.Garden, error)
}

// Server exposes health reports, advice and scheduler control over HTTP.
type Server struct {
	mux       *http.ServeMux
	gardens   GardenReader
	health    HealthChecker
	advice    AdviceProvider
	scheduler BatchRunner
	logger    *zap.Logger
}

// NewServer builds the HTTP API and registers all routes.
func NewServer(gardens GardenReader, health HealthChecker, advice AdviceProvider, scheduler BatchRunner, logger *zap.Logger) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		gardens:   gardens,
		health:    health,
		advice:    advice,
		scheduler: scheduler,
		logger:    logger,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/gardens/", s.handleGardens)
	s.mux.HandleFunc("/scheduler/run", s.handleSchedulerRun)
	s.mux.HandleFunc("/scheduler/status", s.handleSchedulerStatus)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// handleGardens dispatches /gardens/{id}/health, /gardens/{id}/health/report
// and /gardens/{id}/advice.
func (s *Server) handleGardens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/gardens/")
	parts := strings.Split(rest, "/")

	gardenID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || gardenID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid garden id")
		return
	}

	switch strings.Join(parts[1:], "/") {
	case "health":
		s.getHealth(w, r, gardenID)
	case "health/report":
		s.getHealthReport(w, r, gardenID)
	case "advice":
		s.getAdvice(w, r, gardenID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// getHealth returns the cached report when fresh, otherwise runs a full
// check on demand.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request, gardenID int64) {
	report, err := s.health.CachedReport(r.Context(), gardenID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("failed to read cached report",
				zap.Int64("garden_id", gardenID),
				zap.Error(err))
		}
		report, err = s.health.CheckGardenHealth(r.Context(), gardenID)
		if err != nil {
			s.writeServiceError(w, gardenID, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getHealthReport(w http.ResponseWriter, r *http.Request, gardenID int64) {
	garden, err := s.gardens.GetGarden(r.Context(), gardenID)
	if err != nil {
		s.writeServiceError(w, gardenID, err)
		return
	}

	report, err := s.health.CachedReport(r.Context(), gardenID)
	if err != nil {
		report, err = s.health.CheckGardenHealth(r.Context(), gardenID)
		if err != nil {
			s.writeServiceError(w, gardenID, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(service.RenderReport(garden, report)))
}

func (s *Server) getAdvice(w http.ResponseWriter, r *http.Request, gardenID int64) {
	advices, err := s.advice.GetAdvice(r.Context(), gardenID)
	if err != nil {
		s.writeServiceError(w, gardenID, err)
		return
	}
	if advices == nil {
		advices = []models.AdviceAction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"garden_id": gardenID,
		"advices":   advices,
	})
}

func (s *Server) handleSchedulerRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	summary, err := s.scheduler.RunHealthChecksForAllGardens(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("manual health check run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "health check run failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.scheduler.Status())
}

func (s *Server) writeServiceError(w http.ResponseWriter, gardenID int64, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("request failed",
		zap.Int64("garden_id", gardenID),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
