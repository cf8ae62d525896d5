package httputils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shrinkr-io/shrinkr/internal/constants"
)

const CorrelationIDHeader = "X-Correlation-Id"

// ErrorResponse is the body of every failed API call: a success flag, a
// human-readable error string and a machine-readable code.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// DataResponse is the common success envelope for endpoints without extra
// top-level fields.
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// GetCorrelationID extracts the correlation ID from the request header.
// If not present, generates a new UUID v4.
func GetCorrelationID(r *http.Request) string {
	correlationID := r.Header.Get(CorrelationIDHeader)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return correlationID
}

// WriteAPIError writes a failure response using a predefined APIError.
func WriteAPIError(w http.ResponseWriter, r *http.Request, apiErr constants.APIError) {
	writeJSON(w, r, apiErr.Status, ErrorResponse{
		Success: false,
		Error:   apiErr.Message,
		Code:    apiErr.Code,
	})
}

// WriteData writes a success response wrapping the payload in the
// {success, data} envelope.
func WriteData(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, r, status, DataResponse{Success: true, Data: data})
}

// WriteSuccess writes the body as-is. Handlers with top-level fields beyond
// "data" (login token, list count) build their own response struct carrying
// the success flag.
func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, body any) {
	writeJSON(w, r, status, body)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set(CorrelationIDHeader, GetCorrelationID(r))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

// RespondJSON writes a bare JSON payload without the response envelope,
// for infrastructure endpoints like health checks.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}
