// Package service provides business logic for the chatbots API.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ai-automation-studio/chatbots-api/internal/events"
	"github.com/ai-automation-studio/chatbots-api/internal/llm"
	"github.com/ai-automation-studio/chatbots-api/internal/middleware"
	"github.com/ai-automation-studio/chatbots-api/internal/model"
	"github.com/ai-automation-studio/chatbots-api/internal/persona"
	"github.com/ai-automation-studio/chatbots-api/internal/store"
	"github.com/ai-automation-studio/chatbots-api/pkg/logger"
	"github.com/ai-automation-studio/chatbots-api/pkg/metrics"
)

// ChatService handles chat session operations.
type ChatService struct {
	store          *store.Store
	llmClient      llm.Client
	publisher      *events.Publisher
	logger         *logger.Logger
	chatModel      string
	titleMaxTokens int
}

// NewChatService creates a new chat service.
func NewChatService(
	st *store.Store,
	llmClient llm.Client,
	publisher *events.Publisher,
	log *logger.Logger,
	chatModel string,
	titleMaxTokens int,
) *ChatService {
	return &ChatService{
		store:          st,
		llmClient:      llmClient,
		publisher:      publisher,
		logger:         log,
		chatModel:      chatModel,
		titleMaxTokens: titleMaxTokens,
	}
}

// Create starts a new chat session.
func (s *ChatService) Create(ctx context.Context) (*model.Chat, error) {
	chat, err := s.store.CreateChat(ctx)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.Event{Type: events.TypeChatCreated, ChatID: chat.ID})
	metrics.ChatsTotal.Inc()

	s.logger.Info("chat created", zap.Int64("chat_id", chat.ID))
	return chat, nil
}

// List returns all chats, newest first.
func (s *ChatService) List(ctx context.Context) ([]model.Chat, error) {
	return s.store.ListChats(ctx)
}

// Messages returns a chat's messages in creation order.
func (s *ChatService) Messages(ctx context.Context, chatID int64) ([]model.Message, error) {
	return s.store.GetMessages(ctx, chatID)
}

// Delete removes a chat and its messages. Unknown ids are a no-op.
func (s *ChatService) Delete(ctx context.Context, chatID int64) error {
	if err := s.store.DeleteChat(ctx, chatID); err != nil {
		return err
	}

	s.publisher.Publish(events.Event{Type: events.TypeChatDeleted, ChatID: chatID})
	metrics.ChatsDeletedTotal.Inc()

	s.logger.Info("chat deleted", zap.Int64("chat_id", chatID))
	return nil
}

// GenerateTitle asks the model for a short label and stores it on the chat.
// Generation is best-effort: any provider failure, or an empty result,
// falls back to the default title. The fallback is persisted too.
func (s *ChatService) GenerateTitle(ctx context.Context, chatID int64, message string) (string, error) {
	title := model.FallbackTitle

	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model:     s.chatModel,
		System:    persona.TitleSystemPrompt,
		Messages:  []llm.ChatMessage{{Role: "user", Content: message}},
		MaxTokens: s.titleMaxTokens,
	})
	switch {
	case err != nil:
		s.logger.Warn("title generation failed, using fallback",
			zap.Int64("chat_id", chatID), zap.Error(err))
		metrics.TitleFallbacksTotal.Inc()
	case strings.TrimSpace(resp.Content) == "":
		metrics.TitleFallbacksTotal.Inc()
	case middleware.ValidateTitle(strings.TrimSpace(resp.Content)) != nil:
		// The model ignored the length instruction; treat like a failure
		s.logger.Warn("generated title rejected, using fallback",
			zap.Int64("chat_id", chatID))
		metrics.TitleFallbacksTotal.Inc()
	default:
		title = strings.TrimSpace(resp.Content)
		metrics.RecordCompletion(s.llmClient.Name(), resp.Model, "success",
			float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)
	}

	if err := s.store.SetChatTitle(ctx, chatID, title); err != nil {
		return "", err
	}

	s.publisher.Publish(events.Event{Type: events.TypeTitleGenerated, ChatID: chatID, Title: title})
	return title, nil
}
