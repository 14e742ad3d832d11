package relay

import (
	"encoding/json"
	"fmt"
	"strings"

	app_errors "symptom-checker/backend/internal/errors"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

type lineKind int

const (
	lineIgnored lineKind = iota
	lineDone
	lineData
)

// classifyLine recognises "data:" lines. A single space after the colon is
// part of the prefix, as in the SSE format.
func classifyLine(line string) (lineKind, string) {
	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return lineIgnored, ""
	}
	payload = strings.TrimPrefix(payload, " ")
	if payload == doneSentinel {
		return lineDone, ""
	}
	return lineData, payload
}

type completionChunk struct {
	Choices []struct {
		Delta *struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ParseDelta extracts choices[0].delta.content from one event payload. An
// empty string with a nil error means the event carried no text (role
// announcements, finish reasons, content filter results). A payload that is
// not valid JSON yields an error wrapping ErrMalformedEvent; callers decide
// whether to skip it.
func ParseDelta(payload string) (string, error) {
	var chunk completionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", fmt.Errorf("%w: %v", app_errors.ErrMalformedEvent, err)
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	delta := chunk.Choices[0].Delta
	if delta == nil || delta.Content == nil {
		return "", nil
	}
	return *delta.Content, nil
}
