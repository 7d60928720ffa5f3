package assistant

import (
	"context"
	"errors"
	"iter"
)

// ErrModelUnavailable is returned when no language model is configured.
var ErrModelUnavailable = errors.New("assistant: language model is not configured")

// Model opens chats with a language model.
type Model interface {
	StartChat(ctx context.Context, systemInstruction string) (Chat, error)
}

// Chat is an upstream conversation that keeps its own history.
type Chat interface {
	// SendStream sends one user message and yields the reply as it arrives.
	SendStream(ctx context.Context, message string) iter.Seq2[string, error]
}

// Unavailable is the Model used when no API key is configured. Every chat
// fails to start.
type Unavailable struct{}

func (Unavailable) StartChat(context.Context, string) (Chat, error) {
	return nil, ErrModelUnavailable
}
