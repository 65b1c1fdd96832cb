package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ai-automation-studio/chatbots-api/internal/middleware"
	"github.com/ai-automation-studio/chatbots-api/internal/model"
	"github.com/ai-automation-studio/chatbots-api/internal/persona"
	"github.com/ai-automation-studio/chatbots-api/internal/service"
	"github.com/ai-automation-studio/chatbots-api/pkg/logger"
)

// PersonaHandler handles per-persona chat endpoints.
type PersonaHandler struct {
	service *service.PersonaService
	logger  *logger.Logger
}

// NewPersonaHandler creates a new persona handler.
func NewPersonaHandler(svc *service.PersonaService, log *logger.Logger) *PersonaHandler {
	return &PersonaHandler{
		service: svc,
		logger:  log,
	}
}

// Chat returns the handler for POST /api/{persona}/chat. One handler is
// registered per persona; the route alone decides which system prompt is
// used.
func (h *PersonaHandler) Chat(p persona.Persona) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.ChatRequest
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

		reply, err := h.service.Chat(r.Context(), p, req.ChatID, req.Message)
		if err != nil {
			h.logger.Error("persona chat failed")
			writeError(w, http.StatusInternalServerError, "failed to generate reply")
			return
		}

		writeJSON(w, http.StatusOK, model.ChatResponse{Reply: reply})
	}
}
