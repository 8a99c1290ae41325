package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeInvalidCredentials  = "invalid_credentials"
	ErrCodeEmailInUse          = "email_in_use"
	ErrCodeUsernameConflict    = "username_conflict"
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeForbidden           = "forbidden"
	ErrCodeNotFound            = "not_found"
	ErrCodeConflict            = "conflict"
	ErrCodeCancelled           = "cancelled"
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
	ErrCodeInternal            = "internal_error"
)
