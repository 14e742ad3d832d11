package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	app_errors "symptom-checker/backend/internal/errors"
)

// maxErrorBody caps how much of a failed upstream response is read.
const maxErrorBody = 64 * 1024

// UpstreamError is a non-2xx answer from the upstream API. Message is safe to
// show to the caller: it never contains raw JSON.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return app_errors.ErrUpstream
}

// CheckStatus returns nil for a 2xx response. Otherwise it consumes and
// closes the body and returns an *UpstreamError.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{
		StatusCode: resp.StatusCode,
		Message:    extractErrorMessage(resp, body),
	}
}

// extractErrorMessage picks, in order: error.message, error (when a string),
// the raw body when it is not JSON, and finally the status phrase.
func extractErrorMessage(resp *http.Response, body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			return text
		}
		return statusPhrase(resp)
	}

	if len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if err := json.Unmarshal(envelope.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}
	return statusPhrase(resp)
}

func statusPhrase(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
