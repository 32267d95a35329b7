package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/scheduler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type envelope struct {
	APIVersion string          `json:"apiVersion"`
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      *struct {
		Code      string         `json:"code"`
		Retryable bool           `json:"retryable"`
		Details   map[string]any `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, method, path, route string, body string, h gin.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Handle(method, route, h)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

type sampleRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"min=1"`
}

func TestBaseHandler_BindJSON(t *testing.T) {
	var h BaseHandler
	handle := func(c *gin.Context) {
		var req sampleRequest
		if !h.BindJSON(c, &req) {
			return
		}
		h.Created(c, req)
	}

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"valid", `{"name":"rice","quantity":2}`, http.StatusCreated, ""},
		{"missing field", `{"quantity":2}`, http.StatusBadRequest, "ERR_VALIDATION"},
		{"malformed", `{"name":`, http.StatusBadRequest, "ERR_INVALID_JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := serve(t, http.MethodPost, "/items", "/items", tt.body, handle)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "v1", env.APIVersion)
			if tt.code == "" {
				assert.True(t, env.Success)
				return
			}
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}

	t.Run("validation details name the json field", func(t *testing.T) {
		_, env := serve(t, http.MethodPost, "/items", "/items", `{"name":"rice","quantity":0}`, handle)
		require.NotNil(t, env.Error)
		fields, ok := env.Error.Details["fields"].([]any)
		require.True(t, ok)
		require.Len(t, fields, 1)
		assert.Equal(t, "quantity", fields[0].(map[string]any)["field"])
	})
}

func TestBaseHandler_ParamIDAndQueryInt(t *testing.T) {
	var h BaseHandler
	handle := func(c *gin.Context) {
		if _, ok := h.ParamID(c, "id"); !ok {
			return
		}
		n, ok := h.QueryInt(c, "days", 30)
		if !ok {
			return
		}
		h.Success(c, n)
	}

	tests := []struct {
		name   string
		path   string
		status int
		code   string
		data   string
	}{
		{"defaults", "/lots/7d3c6e8e-3f43-4a44-9f3a-0d8f1c0f2b11", http.StatusOK, "", "30"},
		{"explicit", "/lots/7d3c6e8e-3f43-4a44-9f3a-0d8f1c0f2b11?days=7", http.StatusOK, "", "7"},
		{"bad id", "/lots/abc", http.StatusBadRequest, "ERR_INVALID_ID", ""},
		{"bad int", "/lots/7d3c6e8e-3f43-4a44-9f3a-0d8f1c0f2b11?days=soon", http.StatusBadRequest, "ERR_VALIDATION", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := serve(t, http.MethodGet, tt.path, "/lots/:id", "", handle)
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.code, env.Error.Code)
				return
			}
			assert.JSONEq(t, tt.data, string(env.Data))
		})
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	var h BaseHandler
	tests := []struct {
		name       string
		err        error
		status     int
		retryable  bool
		retryAfter string
	}{
		{"busy", shared.NewKindError(shared.KindBusy, "BUSY", "Record is locked"), http.StatusConflict, true, "1"},
		{"not found", shared.ErrNotFound, http.StatusNotFound, false, ""},
		{"over receipt", shared.NewKindError(shared.KindOverReceipt, "OVER_RECEIPT", "Too many"), http.StatusUnprocessableEntity, false, ""},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := serve(t, http.MethodGet, "/x", "/x", "", func(c *gin.Context) { h.HandleError(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.retryable, env.Error.Retryable)
			assert.Equal(t, tt.retryAfter, w.Header().Get("Retry-After"))
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}

func TestBaseHandler_Attachment(t *testing.T) {
	var h BaseHandler

	w, _ := serve(t, http.MethodGet, "/file", "/file", "", func(c *gin.Context) {
		h.Attachment(c, "report.xlsx", XLSXContentType, func(w io.Writer) error {
			_, err := io.WriteString(w, "PK-content")
			return err
		})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="report.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-content", w.Body.String())

	w, env := serve(t, http.MethodGet, "/file", "/file", "", func(c *gin.Context) {
		h.Attachment(c, "report.xlsx", XLSXContentType, func(w io.Writer) error {
			_, _ = io.WriteString(w, "partial")
			return errors.New("sheet overflow")
		})
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_EXPORT_FAILED", env.Error.Code)
	assert.NotContains(t, w.Body.String(), "sheet overflow")
}

func TestSystemHandler_Health(t *testing.T) {
	up := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		checks map[string]Pinger
		status int
		state  string
	}{
		{"no checks", nil, http.StatusOK, "ok"},
		{"all up", map[string]Pinger{"database": up, "redis": up}, http.StatusOK, "ok"},
		{"one down", map[string]Pinger{"database": up, "redis": down}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("backoffice", "1.2.3", tt.checks)
			w, env := serve(t, http.MethodGet, "/health", "/health", "", h.Health)
			assert.Equal(t, tt.status, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(env.Data, &resp))
			assert.Equal(t, tt.state, resp.Status)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.Len(t, resp.Components, len(tt.checks))
		})
	}
}

type jobList []scheduler.Job

func (l jobList) History() []scheduler.Job { return l }

func TestSystemHandler_Jobs(t *testing.T) {
	done := time.Date(2026, 10, 15, 2, 0, 5, 0, time.UTC)
	audit := scheduler.NewJob(scheduler.NewTask("supplier-ledger-audit", nil), 3)
	audit.Status = scheduler.JobStatusSuccess
	audit.CompletedAt = &done
	expired := scheduler.NewJob(scheduler.NewTask("expiring-lots", nil), 3)
	expired.Status = scheduler.JobStatusFailed
	expired.Error = "connection refused"
	expired.RetryCount = 3

	boss := identity.Actor{UserID: uuid.New(), Name: "Owner", Role: identity.RoleBoss}
	manager := identity.Actor{UserID: uuid.New(), Name: "Juma", Role: identity.RoleManager}

	tests := []struct {
		name   string
		source JobSource
		actor  identity.Actor
		status int
		tasks  []string
	}{
		{"boss sees history", jobList{*audit, *expired}, boss, http.StatusOK, []string{"supplier-ledger-audit", "expiring-lots"}},
		{"scheduler disabled", nil, boss, http.StatusOK, []string{}},
		{"manager refused", jobList{*audit}, manager, http.StatusForbidden, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("backoffice", "test", nil).WithJobs(tt.source, identity.DefaultPolicy())
			withActor := func(c *gin.Context) {
				c.Set(middleware.ActorKey, tt.actor)
				h.Jobs(c)
			}
			w, env := serve(t, http.MethodGet, "/system/jobs", "/system/jobs", "", withActor)
			require.Equal(t, tt.status, w.Code)
			if tt.tasks == nil {
				require.NotNil(t, env.Error)
				assert.Equal(t, "ERR_FORBIDDEN", env.Error.Code)
				return
			}

			var jobs []JobResponse
			require.NoError(t, json.Unmarshal(env.Data, &jobs))
			names := make([]string, len(jobs))
			for i, j := range jobs {
				names[i] = j.Task
			}
			assert.Equal(t, tt.tasks, names)
			if len(jobs) == 2 {
				assert.Equal(t, "FAILED", jobs[1].Status)
				assert.Equal(t, 3, jobs[1].RetryCount)
				assert.Equal(t, "connection refused", jobs[1].Error)
			}
		})
	}
}
