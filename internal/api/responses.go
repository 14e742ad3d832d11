package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "symptom-checker/backend/internal/errors"
	"symptom-checker/backend/internal/relay"
)

// Client facing messages. The upstream message of an *relay.UpstreamError is
// passed through as is.
const (
	msgInvalidCapability = "Invalid Type"
	msgMissingConfig     = "Missing Azure Configuration"
	msgInvalidBody       = "Invalid request body"
	msgNoImage           = "Upstream response did not include a generated image"
	msgUnexpected        = "Unexpected Server Error"
)

var errNoReply = fmt.Errorf("%w: relay returned neither a stream nor an image", app_errors.ErrInternal)

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the body of the health check.
type StatusResponse struct {
	Status string `json:"status"`
}

// respondWithError maps the relay's error taxonomy to an HTTP status and a
// flat {"error": "..."} body. Raw upstream payloads never reach the client.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string
	var upstreamErr *relay.UpstreamError

	switch {
	case errors.Is(err, app_errors.ErrInvalidCapability):
		statusCode = http.StatusBadRequest
		message = msgInvalidCapability
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		// Validation messages are already descriptive and user-friendly.
		message = err.Error()
	case errors.Is(err, app_errors.ErrConfiguration):
		statusCode = http.StatusInternalServerError
		message = msgMissingConfig
	case errors.As(err, &upstreamErr):
		statusCode = http.StatusInternalServerError
		message = upstreamErr.Message
	case errors.Is(err, app_errors.ErrDataShape):
		statusCode = http.StatusInternalServerError
		message = msgNoImage
	default:
		statusCode = http.StatusInternalServerError
		message = msgUnexpected
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON is a low-level helper for marshaling a payload to JSON
// and writing it to the http.ResponseWriter with a given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// writeToken writes one relayed token and flushes it to the client. A write
// error means the client went away.
func writeToken(w http.ResponseWriter, token string) error {
	if _, err := w.Write([]byte(token)); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
