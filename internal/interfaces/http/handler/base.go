// Package handler contains the HTTP handlers of the back-office API. Every
// handler binds and validates the request, calls one application service
// and writes the versioned response envelope.
package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// XLSXContentType is the media type of spreadsheet downloads
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// actor returns the authenticated caller
func actor(c *gin.Context) identity.Actor {
	return middleware.GetActor(c)
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data, middleware.GetRequestID(c)))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data, middleware.GetRequestID(c)))
}

// SuccessPage sends one page of a list with pagination meta
func (h *BaseHandler) SuccessPage(c *gin.Context, items any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(items, dto.NewMeta(total, page, pageSize), middleware.GetRequestID(c)))
}

// HandleError maps err onto the envelope and status code. Busy failures
// carry Retry-After; internal failures are logged with their cause and
// answered with a generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, info := dto.FromError(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("Request failed",
			append(logger.Fields(c.Request.Context()), zap.Error(err))...)
	}
	middleware.Abort(c, status, info)
}

// BadRequest sends a 400 with a single message
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	middleware.Abort(c, http.StatusBadRequest, dto.NewHTTPError(shared.KindValidation, code, message))
}

// BindJSON decodes and validates the body into req. On failure it writes
// the 400 response and returns false.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	return h.bindResult(c, c.ShouldBindJSON(req), dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
}

// BindQuery decodes and validates the query string into req
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	return h.bindResult(c, c.ShouldBindQuery(req), dto.ErrCodeValidation, "Invalid query parameters")
}

func (h *BaseHandler) bindResult(c *gin.Context, err error, code, message string) bool {
	if err == nil {
		return true
	}
	if details := middleware.ValidationDetails(err); details != nil {
		info := dto.NewHTTPError(shared.KindValidation, dto.ErrCodeValidation, "Request validation failed")
		info.Details = map[string]any{"fields": details}
		middleware.Abort(c, http.StatusBadRequest, info)
		return false
	}
	info := dto.NewHTTPError(shared.KindValidation, code, message)
	info.Details = map[string]any{"reason": err.Error()}
	middleware.Abort(c, http.StatusBadRequest, info)
	return false
}

// ParamID parses a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "ERR_INVALID_ID", "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// QueryInt reads an optional integer query parameter
func (h *BaseHandler) QueryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.BadRequest(c, dto.ErrCodeValidation, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// Attachment renders a download in full before writing headers, so a
// failing writer still produces an enveloped error
func (h *BaseHandler) Attachment(c *gin.Context, filename, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		h.HandleError(c, shared.NewKindError(shared.KindInternal, "EXPORT_FAILED", err.Error()))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
