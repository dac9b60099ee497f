package dto

// APIResponse is the envelope every JSON endpoint returns
type APIResponse struct {
	Data  interface{}  `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// CreatedResponse acknowledges an insert with the allocated id
type CreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
