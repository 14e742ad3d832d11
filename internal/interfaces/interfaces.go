package interfaces

import (
	"context"

	"symptom-checker/backend/internal/model"
	"symptom-checker/backend/internal/service"
)

// This file defines the interfaces the API layer depends on, so handlers can
// be tested against mocks instead of a live upstream.

// RelayService defines the contract for proxying one caller request to the
// upstream API.
type RelayService interface {
	Handle(ctx context.Context, capability model.Capability, input string, history []model.ChatTurn) (*service.Reply, error)
}
