package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/segyhp/microloans/internal/cache"
	"github.com/segyhp/microloans/internal/service"
	"github.com/segyhp/microloans/pkg/response"

	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	service service.LoanService
	cache   cache.StatsCache
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewHealthHandler builds the probes. statsCache is nil when Redis is not
// configured.
func NewHealthHandler(service service.LoanService, statsCache cache.StatsCache, timeout time.Duration, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{
		service: service,
		cache:   statsCache,
		timeout: timeout,
		log:     log,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health reports whether the database answers
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.service.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Warn("health check failed")
		response.ServiceUnavailable(w, "database not reachable")
		return
	}

	response.Success(w, map[string]string{"status": "ok"})
}

// Ready performs readiness check including database and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.service.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Warn("readiness: database check failed")
		status.Status = "error"
		status.Checks["database"] = "failed"
	} else {
		status.Checks["database"] = "ok"
	}

	// Check Redis connectivity
	if h.cache == nil {
		status.Checks["redis"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("readiness: redis check failed")
		status.Status = "error"
		status.Checks["redis"] = "failed"
	} else {
		status.Checks["redis"] = "ok"
	}

	if status.Status == "error" {
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}

	response.Success(w, status)
}
