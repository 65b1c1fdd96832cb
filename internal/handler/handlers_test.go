package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ai-automation-studio/chatbots-api/internal/llm"
	"github.com/ai-automation-studio/chatbots-api/internal/model"
	"github.com/ai-automation-studio/chatbots-api/internal/persona"
	"github.com/ai-automation-studio/chatbots-api/internal/service"
	"github.com/ai-automation-studio/chatbots-api/internal/store"
	"github.com/ai-automation-studio/chatbots-api/pkg/logger"
)

type fakeLLM struct {
	completeFn func(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return f.completeFn(ctx, req)
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) Models() []string { return nil }

// newTestServer wires the full API surface the way cmd/api does, against a
// temporary database and the given LLM client.
func newTestServer(t *testing.T, client llm.Client) *httptest.Server {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	log, err := logger.New("error")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	chatSvc := service.NewChatService(st, client, nil, log, "gpt-4o-mini", 16)
	personaSvc := service.NewPersonaService(st, client, nil, log, "gpt-4o-mini")

	healthHandler := NewHealthHandler(st, nil)
	chatHandler := NewChatHandler(chatSvc, log)
	personaHandler := NewPersonaHandler(personaSvc, log)

	r := chi.NewRouter()
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Route("/api", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/new", chatHandler.Create)
			r.Post("/title", chatHandler.GenerateTitle)
			r.Get("/list", chatHandler.List)
			r.Get("/{id}/messages", chatHandler.Messages)
			r.Delete("/{id}/delete", chatHandler.Delete)
		})
		for _, p := range persona.All() {
			r.Post("/"+p.Key+"/chat", personaHandler.Chat(p))
		}
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func echoLLM() *fakeLLM {
	return &fakeLLM{
		completeFn: func(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "reply to: " + req.Messages[0].Content}, nil
		},
	}
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, echoLLM())

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	decode(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %q", body["status"])
	}
}

func TestReady(t *testing.T) {
	srv := newTestServer(t, echoLLM())

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestPersonaChat_EndToEnd(t *testing.T) {
	client := &fakeLLM{
		completeFn: func(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "Here are a few 2BHK listings"}, nil
		},
	}
	srv := newTestServer(t, client)

	// Create a chat
	resp := postJSON(t, srv.URL+"/api/chat/new", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from /api/chat/new, got %d", resp.StatusCode)
	}
	var created model.NewChatResponse
	decode(t, resp, &created)
	if created.ChatID != 1 {
		t.Errorf("Expected chat_id 1 on fresh database, got %d", created.ChatID)
	}

	// Send a persona chat turn
	resp = postJSON(t, srv.URL+"/api/real-estate/chat", model.ChatRequest{
		ChatID:  created.ChatID,
		Message: "Show me 2BHK options",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from persona chat, got %d", resp.StatusCode)
	}
	var chatResp model.ChatResponse
	decode(t, resp, &chatResp)
	if chatResp.Reply != "Here are a few 2BHK listings" {
		t.Errorf("Unexpected reply: %q", chatResp.Reply)
	}

	// Both turns are persisted, user first
	getResp, err := http.Get(fmt.Sprintf("%s/api/chat/%d/messages", srv.URL, created.ChatID))
	if err != nil {
		t.Fatalf("GET messages failed: %v", err)
	}
	var messages model.ListMessagesResponse
	decode(t, getResp, &messages)

	if len(messages.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages.Messages))
	}
	if messages.Messages[0].Sender != model.SenderUser || messages.Messages[0].Text != "Show me 2BHK options" {
		t.Errorf("Unexpected user message: %+v", messages.Messages[0])
	}
	if messages.Messages[1].Sender != model.SenderBot || messages.Messages[1].Text != chatResp.Reply {
		t.Errorf("Unexpected bot message: %+v", messages.Messages[1])
	}
}

func TestPersonaChat_GatewayFailure(t *testing.T) {
	client := &fakeLLM{
		completeFn: func(context.Context, *llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("provider unavailable")
		},
	}
	srv := newTestServer(t, client)

	resp := postJSON(t, srv.URL+"/api/chat/new", nil)
	var created model.NewChatResponse
	decode(t, resp, &created)

	resp = postJSON(t, srv.URL+"/api/travel-planner/chat", model.ChatRequest{
		ChatID:  created.ChatID,
		Message: "weekend in Lisbon",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected 500 on gateway failure, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The user turn survives without a matching reply
	getResp, err := http.Get(fmt.Sprintf("%s/api/chat/%d/messages", srv.URL, created.ChatID))
	if err != nil {
		t.Fatalf("GET messages failed: %v", err)
	}
	var messages model.ListMessagesResponse
	decode(t, getResp, &messages)

	if len(messages.Messages) != 1 {
		t.Fatalf("Expected 1 message after gateway failure, got %d", len(messages.Messages))
	}
	if messages.Messages[0].Sender != model.SenderUser {
		t.Errorf("Expected sender %q, got %q", model.SenderUser, messages.Messages[0].Sender)
	}
}

func TestPersonaChat_MissingChatID(t *testing.T) {
	srv := newTestServer(t, echoLLM())

	resp := postJSON(t, srv.URL+"/api/restaurant/chat", map[string]string{
		"message": "tonight's specials",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing chat_id, got %d", resp.StatusCode)
	}
}

func TestTitle_MissingChatID(t *testing.T) {
	srv := newTestServer(t, echoLLM())

	resp := postJSON(t, srv.URL+"/api/chat/title", map[string]string{
		"message": "hello",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing chat_id, got %d", resp.StatusCode)
	}
}

func TestTitle_FallbackOnGatewayFailure(t *testing.T) {
	client := &fakeLLM{
		completeFn: func(context.Context, *llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("provider unavailable")
		},
	}
	srv := newTestServer(t, client)

	resp := postJSON(t, srv.URL+"/api/chat/new", nil)
	var created model.NewChatResponse
	decode(t, resp, &created)

	resp = postJSON(t, srv.URL+"/api/chat/title", model.TitleRequest{
		ChatID:  created.ChatID,
		Message: "hello there",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 (best effort), got %d", resp.StatusCode)
	}
	var title model.TitleResponse
	decode(t, resp, &title)
	if title.Title != model.FallbackTitle {
		t.Errorf("Expected fallback title %q, got %q", model.FallbackTitle, title.Title)
	}

	// The fallback is also persisted
	listResp, err := http.Get(srv.URL + "/api/chat/list")
	if err != nil {
		t.Fatalf("GET /api/chat/list failed: %v", err)
	}
	var list model.ListChatsResponse
	decode(t, listResp, &list)
	if len(list.Chats) != 1 || list.Chats[0].Title != model.FallbackTitle {
		t.Errorf("Expected stored fallback title, got %+v", list.Chats)
	}
}

func TestListChats_NewestFirst(t *testing.T) {
	srv := newTestServer(t, echoLLM())

	var ids []int64
	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/api/chat/new", nil)
		var created model.NewChatResponse
		decode(t, resp, &created)
		ids = append(ids, created.ChatID)
	}

	resp, err := http.Get(srv.URL + "/api/chat/list")
	if err != nil {
		t.Fatalf("GET /api/chat/list failed: %v", err)
	}
	var list model.ListChatsResponse
	decode(t, resp, &list)

	if len(list.Chats) != 3 {
		t.Fatalf("Expected 3 chats, got %d", len(list.Chats))
	}
	for i, chat := range list.Chats {
		want := ids[len(ids)-1-i]
		if chat.ID != want {
			t.Errorf("Position %d: expected id %d, got %d", i, want, chat.ID)
		}
		if i == 0 && chat.Title != model.DefaultChatTitle {
			t.Errorf("Expected default title, got %q", chat.Title)
		}
	}
}

func TestDeleteChat_Idempotent(t *testing.T) {
	srv := newTestServer(t, echoLLM())

	resp := postJSON(t, srv.URL+"/api/chat/new", nil)
	var created model.NewChatResponse
	decode(t, resp, &created)

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodDelete,
			fmt.Sprintf("%s/api/chat/%d/delete", srv.URL, created.ChatID), nil)
		if err != nil {
			t.Fatalf("Failed to build request: %v", err)
		}
		delResp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE failed: %v", err)
		}
		if delResp.StatusCode != http.StatusOK {
			t.Fatalf("Delete attempt %d: expected 200, got %d", i+1, delResp.StatusCode)
		}
		var body model.DeleteChatResponse
		decode(t, delResp, &body)
		if body.Status != "deleted" {
			t.Errorf("Expected status 'deleted', got %q", body.Status)
		}
	}
}

func TestMessages_InvalidChatID(t *testing.T) {
	srv := newTestServer(t, echoLLM())

	resp, err := http.Get(srv.URL + "/api/chat/notanumber/messages")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400 for non-numeric id, got %d", resp.StatusCode)
	}
}

func TestMessages_UnknownChatIsEmptyNotError(t *testing.T) {
	srv := newTestServer(t, echoLLM())

	resp, err := http.Get(srv.URL + "/api/chat/424242/messages")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for unknown chat, got %d", resp.StatusCode)
	}
	var messages model.ListMessagesResponse
	decode(t, resp, &messages)
	if len(messages.Messages) != 0 {
		t.Errorf("Expected empty messages, got %d", len(messages.Messages))
	}
}
