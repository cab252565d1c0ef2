package ai

import (
	"context"
	"time"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged segment of a chat request.
type Message struct {
	Role    Role
	Content string
}

// Provider sends chat messages to an LLM and returns the raw text response.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Options carries the request settings shared by every provider.
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string  // empty uses the SDK default endpoint
	Temperature float64 // 0 keeps output deterministic-leaning
	MaxTokens   int64
	Timeout     time.Duration // per-request; zero leaves the SDK default
}

// splitMessages separates system instructions from the conversation turns.
func splitMessages(messages []Message) (system []string, turns []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
