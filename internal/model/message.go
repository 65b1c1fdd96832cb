package model

import (
	"time"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message represents one turn in a chat.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is the request body for a persona chat turn.
type ChatRequest struct {
	ChatID  int64  `json:"chat_id"`
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply for a persona chat turn.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ListMessagesResponse is the response for listing a chat's messages.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}
