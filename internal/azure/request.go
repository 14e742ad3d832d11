package azure

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"symptom-checker/backend/internal/config"
	"symptom-checker/backend/internal/model"
)

const (
	// ImageSize is the fixed resolution requested for generated images.
	ImageSize = "1024x1024"
	// ImageCount is the number of images requested per call.
	ImageCount = 1
)

// RequestSpec is a fully resolved upstream request. It is built per call and
// never stored.
type RequestSpec struct {
	Capability  model.Capability
	EndpointURL string
	Headers     map[string]string
	Body        json.RawMessage
}

// ChatCompletionRequest is the body sent to the chat completions endpoint.
type ChatCompletionRequest struct {
	Messages []model.ChatTurn `json:"messages"`
	Stream   bool             `json:"stream"`
}

// ImageGenerationRequest is the body sent to the image generations endpoint.
type ImageGenerationRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

// buildChat assembles [system, ...history without system turns, user].
func buildChat(cfg *config.UpstreamConfig, systemTurn model.ChatTurn, input string, history []model.ChatTurn) (*RequestSpec, error) {
	messages := make([]model.ChatTurn, 0, len(history)+2)
	messages = append(messages, systemTurn)
	for _, turn := range history {
		if turn.Role == model.RoleSystem {
			continue
		}
		messages = append(messages, turn)
	}
	messages = append(messages, model.ChatTurn{Role: model.RoleUser, Content: input})

	body, err := json.Marshal(ChatCompletionRequest{Messages: messages, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("could not marshal chat request: %w", err)
	}

	return &RequestSpec{
		Capability:  model.CapabilityChat,
		EndpointURL: endpoint(cfg, cfg.Chat, "chat/completions"),
		Headers:     headers(cfg),
		Body:        body,
	}, nil
}

func buildImage(cfg *config.UpstreamConfig, input string) (*RequestSpec, error) {
	body, err := json.Marshal(ImageGenerationRequest{Prompt: input, Size: ImageSize, N: ImageCount})
	if err != nil {
		return nil, fmt.Errorf("could not marshal image request: %w", err)
	}

	return &RequestSpec{
		Capability:  model.CapabilityImage,
		EndpointURL: endpoint(cfg, cfg.Image, "images/generations"),
		Headers:     headers(cfg),
		Body:        body,
	}, nil
}

func endpoint(cfg *config.UpstreamConfig, d config.Deployment, operation string) string {
	return fmt.Sprintf("%sopenai/deployments/%s/%s?api-version=%s",
		cfg.NormalizedBaseURL(),
		url.PathEscape(d.Name),
		operation,
		url.QueryEscape(d.APIVersion),
	)
}

func headers(cfg *config.UpstreamConfig) map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"api-key":      cfg.APIKey,
	}
}

// applyHeaders copies the spec headers onto an outgoing request.
func (s *RequestSpec) applyHeaders(req *http.Request) {
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
}
