package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ai-automation-studio/chatbots-api/internal/middleware"
	"github.com/ai-automation-studio/chatbots-api/internal/model"
	"github.com/ai-automation-studio/chatbots-api/internal/service"
	"github.com/ai-automation-studio/chatbots-api/pkg/logger"
)

// ChatHandler handles chat session endpoints.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/chat/new
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	chat, err := h.service.Create(r.Context())
	if err != nil {
		h.logger.Error("failed to create chat")
		writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	writeJSON(w, http.StatusOK, model.NewChatResponse{ChatID: chat.ID})
}

// List handles GET /api/chat/list
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	chats, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list chats")
		writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}

	writeJSON(w, http.StatusOK, model.ListChatsResponse{Chats: chats})
}

// Messages handles GET /api/chat/{id}/messages
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	messages, err := h.service.Messages(r.Context(), chatID)
	if err != nil {
		h.logger.Error("failed to get messages")
		writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}

	writeJSON(w, http.StatusOK, model.ListMessagesResponse{Messages: messages})
}

// Delete handles DELETE /api/chat/{id}/delete
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	if err := h.service.Delete(r.Context(), chatID); err != nil {
		h.logger.Error("failed to delete chat")
		writeError(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteChatResponse{Status: "deleted"})
}

// GenerateTitle handles POST /api/chat/title
func (h *ChatHandler) GenerateTitle(w http.ResponseWriter, r *http.Request) {
	var req model.TitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ChatID == 0 {
		writeError(w, http.StatusBadRequest, "chat_id required")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	title, err := h.service.GenerateTitle(r.Context(), req.ChatID, req.Message)
	if err != nil {
		h.logger.Error("failed to store chat title")
		writeError(w, http.StatusInternalServerError, "failed to store chat title")
		return
	}

	writeJSON(w, http.StatusOK, model.TitleResponse{Title: title})
}
