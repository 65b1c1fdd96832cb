package events

import (
	"testing"

	"github.com/ai-automation-studio/chatbots-api/pkg/logger"
)

func TestConnect_DisabledWithoutURL(t *testing.T) {
	log, err := logger.New("error")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	p, err := Connect(Config{URL: ""}, log)
	if err != nil {
		t.Fatalf("Connect with empty URL should not error, got: %v", err)
	}
	if p != nil {
		t.Fatal("Expected nil publisher when no URL is configured")
	}
}

func TestNilPublisher_SafeOperations(t *testing.T) {
	var p *Publisher

	// All operations must be no-ops on a disabled publisher
	p.Publish(Event{Type: TypeChatCreated, ChatID: 1})
	p.Close()

	if p.IsConnected() {
		t.Error("Expected nil publisher to report not connected")
	}
}
