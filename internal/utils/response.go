// Package utils holds the small helpers shared by every API surface of
// the dashboard service.
package utils

import "time"

// APIResponse is the JSON envelope every dashboard endpoint replies
// with. Operator UI code branches on Success and shows Message as the
// notification text; Error carries the underlying cause for debugging.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SuccessResponse wraps a payload for a succeeded operation.
func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// ErrorResponse wraps a failed operation. Message is the single
// operator-facing notification; error is the technical cause.
func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}
