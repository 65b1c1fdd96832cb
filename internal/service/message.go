package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ai-automation-studio/chatbots-api/internal/events"
	"github.com/ai-automation-studio/chatbots-api/internal/llm"
	"github.com/ai-automation-studio/chatbots-api/internal/model"
	"github.com/ai-automation-studio/chatbots-api/internal/persona"
	"github.com/ai-automation-studio/chatbots-api/internal/store"
	"github.com/ai-automation-studio/chatbots-api/pkg/logger"
	"github.com/ai-automation-studio/chatbots-api/pkg/metrics"
)

// PersonaService runs one persona chat turn: persist the user message,
// call the completion gateway with the persona's system prompt, persist
// the reply.
type PersonaService struct {
	store     *store.Store
	llmClient llm.Client
	publisher *events.Publisher
	logger    *logger.Logger
	chatModel string
}

// NewPersonaService creates a new persona service.
func NewPersonaService(
	st *store.Store,
	llmClient llm.Client,
	publisher *events.Publisher,
	log *logger.Logger,
	chatModel string,
) *PersonaService {
	return &PersonaService{
		store:     st,
		llmClient: llmClient,
		publisher: publisher,
		logger:    log,
		chatModel: chatModel,
	}
}

// Chat handles one turn for the given persona. The user message is
// persisted before the gateway call, so a provider failure leaves a user
// turn with no reply. There are no retries.
func (s *PersonaService) Chat(ctx context.Context, p persona.Persona, chatID int64, text string) (string, error) {
	userMsg, err := s.store.AppendMessage(ctx, chatID, model.SenderUser, text)
	if err != nil {
		return "", fmt.Errorf("failed to persist user message: %w", err)
	}

	s.publisher.Publish(events.Event{
		Type:    events.TypeMessageAppended,
		ChatID:  chatID,
		Sender:  string(model.SenderUser),
		Persona: p.Key,
	})
	metrics.MessagesTotal.WithLabelValues(p.Key, string(model.SenderUser)).Inc()

	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model:  s.chatModel,
		System: p.SystemPrompt,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: "User message: " + text},
		},
	})
	if err != nil {
		metrics.RecordCompletion(s.llmClient.Name(), s.chatModel, "error", 0, 0, 0)
		s.logger.Error("completion failed",
			zap.String("persona", p.Key),
			zap.Int64("chat_id", chatID),
			zap.Int64("user_message_id", userMsg.ID),
			zap.Error(err))
		return "", fmt.Errorf("completion failed: %w", err)
	}

	metrics.RecordCompletion(s.llmClient.Name(), resp.Model, "success",
		float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)

	if _, err := s.store.AppendMessage(ctx, chatID, model.SenderBot, resp.Content); err != nil {
		return "", fmt.Errorf("failed to persist bot message: %w", err)
	}

	s.publisher.Publish(events.Event{
		Type:    events.TypeMessageAppended,
		ChatID:  chatID,
		Sender:  string(model.SenderBot),
		Persona: p.Key,
	})
	metrics.MessagesTotal.WithLabelValues(p.Key, string(model.SenderBot)).Inc()

	return resp.Content, nil
}
