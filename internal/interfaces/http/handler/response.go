package handler

import "github.com/erp/backoffice/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Versioned response envelope with typed data field
type APIResponse[T any] struct {
	APIVersion string         `json:"apiVersion" example:"v1"`
	Success    bool           `json:"success" example:"true"`
	Data       T              `json:"data,omitempty"`
	Error      *dto.ErrorInfo `json:"error,omitempty"`
	Meta       *dto.Meta      `json:"meta,omitempty"`
	RequestID  string         `json:"requestId,omitempty" example:"6f1c0b9e-3a44-4b51-9d1e-2f7a0c8b1d23"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Versioned error envelope
type ErrorResponse struct {
	APIVersion string         `json:"apiVersion" example:"v1"`
	Success    bool           `json:"success" example:"false"`
	Error      *dto.ErrorInfo `json:"error"`
	RequestID  string         `json:"requestId,omitempty"`
}

// MessageData is a bare acknowledgement
// @Description Acknowledgement message
type MessageData struct {
	Message string `json:"message" example:"Logged out"`
}
