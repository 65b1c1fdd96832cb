// Package model defines data structures for the chatbots API.
package model

import (
	"time"
)

// Chat represents a chat session.
type Chat struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultChatTitle is the placeholder title assigned at creation.
const DefaultChatTitle = "New Chat"

// FallbackTitle is used when title generation fails or returns nothing.
const FallbackTitle = "Conversation"

// NewChatResponse is the response for creating a chat.
type NewChatResponse struct {
	ChatID int64 `json:"chat_id"`
}

// ListChatsResponse is the response for listing chats.
type ListChatsResponse struct {
	Chats []Chat `json:"chats"`
}

// TitleRequest is the request to generate a chat title.
type TitleRequest struct {
	ChatID  int64  `json:"chat_id"`
	Message string `json:"message"`
}

// TitleResponse is the response after title generation.
type TitleResponse struct {
	Title string `json:"title"`
}

// DeleteChatResponse is the response after deleting a chat.
type DeleteChatResponse struct {
	Status string `json:"status"`
}
