package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilal-chat-backend/internal/config"
	"bilal-chat-backend/internal/llm"
	"bilal-chat-backend/internal/types"
)

type stubClient struct {
	result llm.Result
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) llm.Result {
	return s.result
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:              "0",
		AllowedOrigin:     "*",
		OpenRouterAPIKey:  "test-key",
		Model:             "test-model",
		MaxOutputTokens:   150,
		Temperature:       0.3,
		CompletionTimeout: 2 * time.Second,
		KnowledgeFile:     filepath.Join(t.TempDir(), "knowledge.txt"),
		KnowledgeMaxChars: 50,
		AdminSecret:       "@supersecret",
		MaxMessages:       40,
		HistoryWindow:     5,
	}
}

func newTestServer(t *testing.T, client llm.Client) *Server {
	t.Helper()
	s, err := New(testConfig(t), client)
	require.NoError(t, err)
	return s
}

func postChat(t *testing.T, s *Server, sid, message string) (types.ChatResponse, *httptest.ResponseRecorder) {
	t.Helper()
	body, _ := json.Marshal(types.ChatRequest{Message: message})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set("X-Session-Id", sid)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var resp types.ChatResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	}
	return resp, rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatRequiresMessage(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	_, rec := postChat(t, s, "", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatCreatesSession(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	resp, rec := postChat(t, s, "", "hello")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, rec.Header().Get("X-Session-Id"))
	assert.Equal(t, "greeting", resp.Intent)
	assert.Equal(t, "idle", resp.State)
}

func TestChatBookingFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	resp, _ := postChat(t, s, "sess-book", "I want to book an appointment")
	assert.Equal(t, "awaiting_name", resp.State)

	resp, _ = postChat(t, s, "sess-book", "Jane Doe")
	assert.Equal(t, "awaiting_datetime", resp.State)

	resp, _ = postChat(t, s, "sess-book", "2026-01-20 14:00")
	assert.Equal(t, "awaiting_purpose", resp.State)

	resp, _ = postChat(t, s, "sess-book", "consultation")
	assert.Equal(t, "idle", resp.State)
	assert.Contains(t, resp.Reply, "Jane Doe")
	assert.Contains(t, resp.Reply, "2026-01-20 14:00")
	assert.Contains(t, resp.Reply, "consultation")

	appts := s.appointments.List()
	require.Len(t, appts, 1)
	assert.Equal(t, "Jane Doe", appts[0].Name)
}

func TestChatSessionIDFromBody(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	body, _ := json.Marshal(types.ChatRequest{SessionID: "body-sess", Message: "book a meeting"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var resp types.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "body-sess", resp.SessionID)
	assert.Equal(t, "awaiting_name", resp.State)

	// The same body session ID continues the booking sub-flow.
	resp, _ = postChat(t, s, "body-sess", "Jane Doe")
	assert.Equal(t, "awaiting_datetime", resp.State)
}

func TestChatSessionsAreIndependent(t *testing.T) {
	s := newTestServer(t, &stubClient{result: llm.Result{Reply: "ok"}})
	resp, _ := postChat(t, s, "sess-a", "book a meeting")
	assert.Equal(t, "awaiting_name", resp.State)

	// A second session is unaffected by the first one's booking state.
	resp, _ = postChat(t, s, "sess-b", "question about the program")
	assert.Equal(t, "idle", resp.State)
	assert.Equal(t, "ok", resp.Reply)
}

func TestChatDownstreamFailureIsNonFatal(t *testing.T) {
	s := newTestServer(t, &stubClient{result: llm.Result{Err: llm.ErrTimeout}})
	resp, rec := postChat(t, s, "sess-f", "question about the program")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "I couldn't process that right now. Please try again.", resp.Reply)

	// The conversation continues on the next turn.
	resp, rec = postChat(t, s, "sess-f", "hello")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "greeting", resp.Intent)
}
