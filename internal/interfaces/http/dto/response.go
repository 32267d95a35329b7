package dto

// APIVersion is stamped on every response envelope
const APIVersion = "v1"

// Response is the single versioned envelope of every JSON response
type Response struct {
	APIVersion string     `json:"apiVersion" example:"v1"`
	Success    bool       `json:"success"`
	Data       any        `json:"data,omitempty"`
	Error      *ErrorInfo `json:"error,omitempty"`
	Meta       *Meta      `json:"meta,omitempty"`
	RequestID  string     `json:"requestId,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string         `json:"code" example:"ERR_OVER_PAYMENT"`
	Kind      string         `json:"kind" example:"OverPayment"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewMeta computes the page count of a result set
func NewMeta(total int64, page, pageSize int) *Meta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Meta{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any, requestID string) Response {
	return Response{
		APIVersion: APIVersion,
		Success:    true,
		Data:       data,
		RequestID:  requestID,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, meta *Meta, requestID string) Response {
	resp := NewSuccessResponse(data, requestID)
	resp.Meta = meta
	return resp
}

// NewErrorResponse creates an error response
func NewErrorResponse(info ErrorInfo, requestID string) Response {
	return Response{
		APIVersion: APIVersion,
		Success:    false,
		Error:      &info,
		RequestID:  requestID,
	}
}

// ValidationDetail names one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
