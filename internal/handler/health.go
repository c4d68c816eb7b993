package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/deppfellow/go-posts/internal/middleware"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	checkDatabase = "database"
	checkRedis    = "redis"

	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthHandler serves /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// HealthResponse is the body of GET /status.
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// CheckHealth reports the status of each configured dependency.
//
// A failing database makes the service unhealthy (503). Redis only backs the
// rate limiter, which fails open, so a failing Redis is reported but does not
// change the overall status.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config.Observability.HealthChecks

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      statusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]CheckResult),
	}

	if cfg.Enabled {
		if cfg.Has(checkDatabase) {
			result := h.runCheck(c.Request().Context(), checkDatabase, cfg.Timeout, h.pingDatabase)
			response.Checks[checkDatabase] = result
			if result.Status != statusHealthy {
				response.Status = statusUnhealthy
			}
		}

		if cfg.Has(checkRedis) && h.server.Redis != nil {
			response.Checks[checkRedis] = h.runCheck(c.Request().Context(), checkRedis, cfg.Timeout, h.pingRedis)
		}
	}

	for name, result := range response.Checks {
		if result.Status == statusHealthy {
			logger.Debug().Str("check", name).Str("response_time", result.ResponseTime).Msg("health check passed")
			continue
		}
		logger.Error().Str("check", name).Str("error", result.Error).Msg("health check failed")
	}

	if response.Status != statusHealthy {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service unhealthy")
		h.recordHealthCheckError("overall", map[string]interface{}{
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) runCheck(ctx context.Context, name string, timeout time.Duration, ping func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	checkStart := time.Now()
	err := ping(ctx)
	elapsed := time.Since(checkStart)

	if err != nil {
		h.recordHealthCheckError(name, map[string]interface{}{
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
		return CheckResult{Status: statusUnhealthy, ResponseTime: elapsed.String(), Error: err.Error()}
	}

	return CheckResult{Status: statusHealthy, ResponseTime: elapsed.String()}
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	if h.server.DB == nil || h.server.DB.Pool == nil {
		return errors.New("database not initialized")
	}
	return h.server.DB.Pool.Ping(ctx)
}

func (h *HealthHandler) pingRedis(ctx context.Context) error {
	return h.server.Redis.Ping(ctx).Err()
}

// recordHealthCheckError emits a HealthCheckError custom event when New Relic is enabled.
func (h *HealthHandler) recordHealthCheckError(checkType string, attrs map[string]interface{}) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}

	attrs["check_type"] = checkType
	attrs["operation"] = "health_check"
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
}
