package api_models

import "time"

// ApiResponse is the standard success envelope for mutating endpoints.
type ApiResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorDetail carries the machine-readable part of an error response.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// NewSuccessResponse builds a success envelope.
func NewSuccessResponse(message string, data interface{}) ApiResponse {
	return ApiResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse builds an error envelope stamped with the current time.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Status: "error",
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}
