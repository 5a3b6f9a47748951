package models

// APIResponse is the envelope every API endpoint answers with
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CountResponse reports how many records a bulk operation touched
type CountResponse struct {
	Count int64 `json:"count"`
}

// CreatedResponse reports the outcome of a record insert
type CreatedResponse struct {
	Created bool `json:"created"`
}

// LogTicketRequest is the body of POST /api/v1/tickets
type LogTicketRequest struct {
	Category          string `json:"category" binding:"required"`
	Severity          string `json:"severity" binding:"required"`
	ResolutionMinutes *int   `json:"resolution_minutes" binding:"required"`
	Resolved          *bool  `json:"resolved,omitempty"`
}
