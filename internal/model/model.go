package model

import (
	"fmt"
	"strings"

	app_errors "symptom-checker/backend/internal/errors"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single message of a conversation. A conversation is an
// ordered slice of turns, oldest first.
type ChatTurn struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// Capability selects what the upstream API is asked to do.
type Capability string

const (
	CapabilityChat  Capability = "chat"
	CapabilityImage Capability = "image"
)

// ParseCapability resolves a caller supplied capability. Anything other than
// "chat" or "image" is rejected with ErrInvalidCapability.
func ParseCapability(s string) (Capability, error) {
	switch c := Capability(strings.TrimSpace(s)); c {
	case CapabilityChat, CapabilityImage:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", app_errors.ErrInvalidCapability, s)
	}
}

// ImageResult is the reply returned for the image capability.
type ImageResult struct {
	Content string `json:"content"`
	Role    Role   `json:"role"`
}

// NewImageResult wraps a generated image URL as a Markdown image.
func NewImageResult(url string) *ImageResult {
	return &ImageResult{
		Content: fmt.Sprintf("![Generated Image](%s)", url),
		Role:    RoleAssistant,
	}
}
