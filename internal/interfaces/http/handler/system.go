package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/scheduler"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// PingContext calls f
func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// JobSource lists recently finished background jobs
type JobSource interface {
	History() []scheduler.Job
}

// SystemHandler serves health, build information and housekeeping history
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]Pinger
	jobs      JobSource
	policy    *identity.Policy
}

// NewSystemHandler creates a new SystemHandler. checks are probed by the
// health endpoint, keyed by component name.
func NewSystemHandler(name, version string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
		policy:    identity.DefaultPolicy(),
	}
}

// WithJobs exposes the housekeeping history of jobs. A nil source reports an
// empty history, which is the case when the scheduler is disabled.
func (h *SystemHandler) WithJobs(jobs JobSource, policy *identity.Policy) *SystemHandler {
	h.jobs = jobs
	if policy != nil {
		h.policy = policy
	}
	return h
}

// HealthResponse is the service health
// @name HandlerHealthResponse
type HealthResponse struct {
	Status     string            `json:"status" example:"ok"`
	Name       string            `json:"name" example:"backoffice"`
	Version    string            `json:"version" example:"1.0.0"`
	GoVersion  string            `json:"go_version" example:"go1.25.5"`
	Uptime     string            `json:"uptime" example:"1h30m45s"`
	Time       time.Time         `json:"time"`
	Components map[string]string `json:"components,omitempty"`
}

const healthCheckTimeout = 2 * time.Second

// Health godoc
// @ID           getHealth
// @Summary      Service health
// @Description  Liveness with a probe of each backing service; 503 when one is unreachable
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Time:      shared.Now(),
	}

	status := http.StatusOK
	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		resp.Components = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check.PingContext(ctx); err != nil {
				resp.Components[name] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Components[name] = "up"
		}
	}

	c.JSON(status, dto.NewSuccessResponse(resp, middleware.GetRequestID(c)))
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: shared.Now().Format(time.RFC3339),
	})
}

// JobResponse is one finished housekeeping job
// @name HandlerJobResponse
type JobResponse struct {
	ID          string     `json:"id"`
	Task        string     `json:"task" example:"supplier-ledger-audit"`
	Status      string     `json:"status" example:"SUCCESS"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Jobs godoc
// @ID           listHousekeepingJobs
// @Summary      Recent housekeeping jobs
// @Description  The most recently finished background jobs, oldest first. Boss only.
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[[]JobResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/jobs [get]
func (h *SystemHandler) Jobs(c *gin.Context) {
	if err := h.policy.Authorize(middleware.GetActor(c), identity.ActionSystemInspect); err != nil {
		h.HandleError(c, err)
		return
	}
	resp := []JobResponse{}
	if h.jobs != nil {
		for _, job := range h.jobs.History() {
			resp = append(resp, JobResponse{
				ID:          job.ID.String(),
				Task:        job.Task.Name(),
				Status:      string(job.Status),
				Error:       job.Error,
				RetryCount:  job.RetryCount,
				StartedAt:   job.StartedAt,
				CompletedAt: job.CompletedAt,
			})
		}
	}
	h.Success(c, resp)
}
