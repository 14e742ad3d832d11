package service

import (
	"context"
	"fmt"
	"log/slog"

	"symptom-checker/backend/internal/azure"
	"symptom-checker/backend/internal/model"
	"symptom-checker/backend/internal/relay"
)

// RelayService runs one caller request through the dispatcher and the relay.
type RelayService struct {
	dispatcher azure.Dispatcher
	relay      *relay.Relay
}

// Reply is the outcome of Handle: Stream for chat, Image for image.
type Reply struct {
	Capability model.Capability
	Stream     *relay.TokenStream
	Image      *model.ImageResult
}

func NewRelayService(dispatcher azure.Dispatcher, r *relay.Relay) *RelayService {
	return &RelayService{dispatcher: dispatcher, relay: r}
}

// Handle builds the upstream request, sends it once and relays the answer.
// Configuration and capability errors are returned before any network call.
// For chat the caller must Close the returned stream.
func (s *RelayService) Handle(ctx context.Context, capability model.Capability, input string, history []model.ChatTurn) (*Reply, error) {
	spec, err := s.dispatcher.Build(capability, input, history)
	if err != nil {
		return nil, err
	}

	resp, err := s.dispatcher.Dispatch(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("could not reach upstream: %w", err)
	}

	res, err := s.relay.Forward(resp, spec.Capability)
	if err != nil {
		slog.Warn("Upstream request failed", "capability", spec.Capability, "error", err)
		return nil, err
	}

	reply := &Reply{Capability: spec.Capability, Stream: res.Stream, Image: res.Image}
	if reply.Stream != nil {
		slog.Debug("Relaying chat stream", "stream_id", reply.Stream.ID(), "history_len", len(history))
	}
	return reply, nil
}

// Chat is Handle for the chat capability.
func (s *RelayService) Chat(ctx context.Context, input string, history []model.ChatTurn) (*relay.TokenStream, error) {
	reply, err := s.Handle(ctx, model.CapabilityChat, input, history)
	if err != nil {
		return nil, err
	}
	return reply.Stream, nil
}

// Image is Handle for the image capability. History is not used.
func (s *RelayService) Image(ctx context.Context, input string) (*model.ImageResult, error) {
	reply, err := s.Handle(ctx, model.CapabilityImage, input, nil)
	if err != nil {
		return nil, err
	}
	return reply.Image, nil
}
