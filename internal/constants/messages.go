package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "error" field.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "Internal Server Error"
	MsgUnauthorized       = "Not authorized to access this route"
	MsgRateLimited        = "Too many requests"

	// Shortener-specific messages
	MsgInvalidURL   = "Invalid URL format provided"
	MsgLinkNotFound = "No URL found"

	// Auth-specific messages
	MsgMissingFields      = "Please provide name, email, and password"
	MsgEmailTaken         = "A user with this email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidToken       = "Token is not valid"
)
