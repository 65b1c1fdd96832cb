// Package store persists chats and messages in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ai-automation-studio/chatbots-api/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS chats (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id INTEGER,
    sender TEXT NOT NULL,
    text TEXT NOT NULL,
    timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (chat_id) REFERENCES chats(id)
);`

// Store wraps a pooled SQLite handle. All operations share the pool;
// connections are acquired per statement and released by database/sql.
type Store struct {
	db *sql.DB
}

// New opens the database at path and ensures the schema exists.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateChat inserts a new chat with the default title and returns it.
func (s *Store) CreateChat(ctx context.Context) (*model.Chat, error) {
	query := `
        INSERT INTO chats (title, created_at)
        VALUES (?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	chat := &model.Chat{Title: model.DefaultChatTitle}
	err := s.db.QueryRowContext(ctx, query, chat.Title).Scan(&chat.ID, &chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat, nil
}

// ListChats returns all chats, most recently created first.
func (s *Store) ListChats(ctx context.Context) ([]model.Chat, error) {
	query := `
        SELECT id, title, created_at
        FROM chats
        ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]model.Chat, 0)
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// GetMessages returns all messages for a chat in creation order. An unknown
// chat id yields an empty slice, not an error.
func (s *Store) GetMessages(ctx context.Context, chatID int64) ([]model.Message, error) {
	query := `
        SELECT id, chat_id, sender, text, timestamp
        FROM messages
        WHERE chat_id = ?
        ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Sender, &msg.Text, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AppendMessage inserts one message for a chat. The chat id is not checked
// for existence; a dangling reference is accepted.
func (s *Store) AppendMessage(ctx context.Context, chatID int64, sender model.Sender, text string) (*model.Message, error) {
	query := `
        INSERT INTO messages (chat_id, sender, text, timestamp)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        RETURNING id, timestamp`

	msg := &model.Message{ChatID: chatID, Sender: sender, Text: text}
	err := s.db.QueryRowContext(ctx, query, chatID, sender, text).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

// SetChatTitle updates a chat's title. Unknown ids are a silent no-op.
func (s *Store) SetChatTitle(ctx context.Context, chatID int64, title string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE chats SET title = ? WHERE id = ?", title, chatID)
	if err != nil {
		return fmt.Errorf("failed to set chat title: %w", err)
	}
	return nil
}

// DeleteChat removes a chat and its messages in one transaction. Deleting a
// nonexistent id succeeds with no effect.
func (s *Store) DeleteChat(ctx context.Context, chatID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", chatID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", chatID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}

	return tx.Commit()
}
