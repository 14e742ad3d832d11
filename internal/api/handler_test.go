// The `_test` suffix creates a "black box" test package that can only use the
// exported API of package api.
package api_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"symptom-checker/backend/internal/api"
	app_errors "symptom-checker/backend/internal/errors"
	"symptom-checker/backend/internal/interfaces/mocks"
	"symptom-checker/backend/internal/model"
	"symptom-checker/backend/internal/relay"
	"symptom-checker/backend/internal/service"
)

func setupChatHandler(t *testing.T) (*api.ChatHandler, *mocks.MockRelayService) {
	mockSvc := mocks.NewMockRelayService(t)
	return api.NewChatHandler(mockSvc), mockSvc
}

func postChat(handler *api.ChatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleChat(rr, req)
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp api.ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func streamOf(events ...string) *relay.TokenStream {
	var sb strings.Builder
	for _, e := range events {
		fmt.Fprintf(&sb, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", e)
	}
	sb.WriteString("data: [DONE]\n\n")
	return relay.NewTokenStream(io.NopCloser(strings.NewReader(sb.String())), relay.LineModeBuffered, 0)
}

func TestChatHandler_HandleChat_Stream(t *testing.T) {
	handler, mockSvc := setupChatHandler(t)
	history := []model.ChatTurn{{Role: model.RoleUser, Content: "hi"}}
	mockSvc.On("Handle", mock.Anything, model.CapabilityChat, "what time is it?", history).
		Return(&service.Reply{Capability: model.CapabilityChat, Stream: streamOf("It", "'s ", "noon")}, nil).Once()

	rr := postChat(handler, `{"input":"what time is it?","capability":"chat","history":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "It's noon", rr.Body.String())
	assert.True(t, rr.Flushed)
}

func TestChatHandler_HandleChat_LegacyFieldNames(t *testing.T) {
	handler, mockSvc := setupChatHandler(t)
	history := []model.ChatTurn{{Role: model.RoleAssistant, Content: "hello"}}
	mockSvc.On("Handle", mock.Anything, model.CapabilityChat, "again", history).
		Return(&service.Reply{Capability: model.CapabilityChat, Stream: streamOf("ok")}, nil).Once()

	rr := postChat(handler, `{"input":"again","type":"chat","model":"gpt-4.1","messages":[{"role":"assistant","content":"hello"}]}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestChatHandler_HandleChat_Image(t *testing.T) {
	handler, mockSvc := setupChatHandler(t)
	mockSvc.On("Handle", mock.Anything, model.CapabilityImage, "a fox", mock.Anything).
		Return(&service.Reply{Capability: model.CapabilityImage, Image: model.NewImageResult("http://x/y.png")}, nil).Once()

	rr := postChat(handler, `{"input":"a fox","capability":"image"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"content":"![Generated Image](http://x/y.png)","role":"assistant"}`, rr.Body.String())
}

func TestChatHandler_HandleChat_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"Invalid capability", fmt.Errorf("%w: %q", app_errors.ErrInvalidCapability, "video"), http.StatusBadRequest, "Invalid Type"},
		{"Missing configuration", fmt.Errorf("%w: AZURE_OPENAI_API_KEY not set", app_errors.ErrConfiguration), http.StatusInternalServerError, "Missing Azure Configuration"},
		{"Upstream error", &relay.UpstreamError{StatusCode: 429, Message: "rate limited"}, http.StatusInternalServerError, "rate limited"},
		{"Data shape", fmt.Errorf("%w: image response has no url", app_errors.ErrDataShape), http.StatusInternalServerError, "Upstream response did not include a generated image"},
		{"Anything else", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Unexpected Server Error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler, mockSvc := setupChatHandler(t)
			mockSvc.On("Handle", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			rr := postChat(handler, `{"input":"x","capability":"chat"}`)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.message, errorBody(t, rr))
		})
	}
}

func TestChatHandler_HandleChat_BadRequests(t *testing.T) {
	t.Run("Invalid JSON", func(t *testing.T) {
		handler, _ := setupChatHandler(t)
		rr := postChat(handler, `{"input":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request body", errorBody(t, rr))
	})

	t.Run("Missing input", func(t *testing.T) {
		handler, _ := setupChatHandler(t)
		rr := postChat(handler, `{"capability":"chat"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation failed: input is required", errorBody(t, rr))
	})

	t.Run("Blank input", func(t *testing.T) {
		handler, _ := setupChatHandler(t)
		rr := postChat(handler, `{"input":"   ","capability":"chat"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation failed: input must not be blank", errorBody(t, rr))
	})

	t.Run("Unknown history role", func(t *testing.T) {
		handler, _ := setupChatHandler(t)
		rr := postChat(handler, `{"input":"x","capability":"chat","history":[{"role":"tool","content":"{}"}]}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, errorBody(t, rr), "history[0].role must be one of: user assistant system")
	})
}

func TestChatHandler_HandleChat_EmptyReply(t *testing.T) {
	handler, mockSvc := setupChatHandler(t)
	mockSvc.On("Handle", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&service.Reply{}, nil).Once()

	rr := postChat(handler, `{"input":"x","capability":"chat"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Unexpected Server Error", errorBody(t, rr))
}
