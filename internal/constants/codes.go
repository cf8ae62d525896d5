package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "code" field.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRateLimited    = "RATE_LIMITED"

	// Shortener-specific codes
	CodeInvalidURL   = "INVALID_URL"
	CodeLinkNotFound = "LINK_NOT_FOUND"

	// Auth-specific codes
	CodeMissingFields      = "MISSING_FIELDS"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
)
