package clientsdk

import "time"

// Client is a stored client record as returned by the API.
type Client struct {
	ID        int64     `json:"id" example:"1"`
	Name      string    `json:"name" example:"Ada Lovelace"`
	Email     string    `json:"email" example:"ada@example.com"`
	Phone     *string   `json:"phone" example:"555-0100"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-01T00:00:00Z"`
}

// CreateClientRequest is the body of POST /clients.
type CreateClientRequest struct {
	Name  string  `json:"name" example:"Ada Lovelace"`
	Email string  `json:"email" example:"ada@example.com"`
	Phone *string `json:"phone,omitempty" example:"555-0100"`
}

// UpdateClientRequest is the body of PUT /clients/{id}. Nil fields are left
// unchanged; a Phone pointing at "" clears the phone.
type UpdateClientRequest struct {
	Name  *string `json:"name,omitempty" example:"Ada King"`
	Email *string `json:"email,omitempty" example:"ada@example.com"`
	Phone *string `json:"phone,omitempty" example:"555-0100"`
}

// FieldError describes one rejected field of a request body.
type FieldError struct {
	Field   string `json:"field" example:"email"`
	Message string `json:"message" example:"Please enter a valid email address"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Message string       `json:"message" example:"Validation failed"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes the Checks field).
type HealthResponse struct {
	// Status is "ok" or "degraded"
	Status string `json:"status" example:"ok"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty" example:"1h23m45s"`

	Version string `json:"version,omitempty" example:"0.1.0"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
}
