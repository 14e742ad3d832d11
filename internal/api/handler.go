package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"symptom-checker/backend/internal/interfaces"
	"symptom-checker/backend/internal/model"
)

// ChatRequest is the body of POST /api/chat. The browser client still sends
// `type` and `messages`; they are accepted as aliases of `capability` and
// `history`. `model` is accepted and ignored.
type ChatRequest struct {
	Input      string           `json:"input" validate:"required,nonblank" example:"What time is it?"`
	Capability string           `json:"capability,omitempty" example:"chat"`
	Type       string           `json:"type,omitempty" swaggerignore:"true"`
	History    []model.ChatTurn `json:"history,omitempty" validate:"omitempty,dive"`
	Messages   []model.ChatTurn `json:"messages,omitempty" validate:"omitempty,dive" swaggerignore:"true"`
	Model      string           `json:"model,omitempty" swaggerignore:"true"`
}

func (r *ChatRequest) capability() model.Capability {
	if r.Capability != "" {
		return model.Capability(r.Capability)
	}
	return model.Capability(r.Type)
}

func (r *ChatRequest) history() []model.ChatTurn {
	if r.History != nil {
		return r.History
	}
	return r.Messages
}

type ChatHandler struct {
	service interfaces.RelayService
}

func NewChatHandler(svc interfaces.RelayService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// HandleChat godoc
// @Summary      Send a chat turn or an image prompt
// @Description  For capability "chat" the reply is a plain-text stream of the assistant's tokens.
// @Description  For capability "image" the reply is a JSON message embedding the generated image as Markdown.
// @Tags         Chat
// @Accept       json
// @Produce      plain
// @Produce      json
// @Param        request  body      ChatRequest  true  "User turn"
// @Success      200      {string}  string             "Streamed assistant text (chat)"
// @Success      200      {object}  model.ImageResult  "Generated image (image)"
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Error decoding chat request body", "error", err)
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	reply, err := h.service.Handle(r.Context(), req.capability(), req.Input, req.history())
	if err != nil {
		respondWithError(w, err)
		return
	}

	if reply.Image != nil {
		respondWithJSON(w, http.StatusOK, reply.Image)
		return
	}
	if reply.Stream == nil {
		respondWithError(w, errNoReply)
		return
	}

	stream := reply.Stream
	defer func() {
		if err := stream.Close(); err != nil {
			slog.Warn("Failed to close upstream stream", "stream_id", stream.ID(), "error", err)
		}
	}()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	requestID := middleware.GetReqID(r.Context())
	for {
		if r.Context().Err() != nil {
			slog.Info("Client disconnected.", "request_id", requestID, "stream_id", stream.ID())
			return
		}
		token, ok := stream.Next()
		if !ok {
			break
		}
		if err := writeToken(w, token); err != nil {
			slog.Warn("Could not write to chat stream, client likely disconnected.", "request_id", requestID, "error", err)
			return
		}
	}

	if err := stream.Err(); err != nil {
		slog.Warn("Chat stream ended early", "request_id", requestID, "stream_id", stream.ID(), "error", err)
	}
	slog.Info("Finished streaming response.",
		"request_id", requestID,
		"stream_id", stream.ID(),
		"tokens", stream.Emitted(),
		"skipped_events", stream.Skipped(),
	)
}
