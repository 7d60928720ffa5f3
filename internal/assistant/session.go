package assistant

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/qbazz/storefront/pkg/logger"
)

// Session holds one upstream chat. The chat is started lazily and replaced
// whenever the context string changes; while the context is unchanged every
// message goes to the same upstream chat, which keeps the history.
//
// A Session is not safe for concurrent use. Conversation serializes access.
type Session struct {
	model       Model
	logger      *slog.Logger
	instruction string
	chat        Chat
}

// NewSession creates an idle session.
func NewSession(model Model, log *slog.Logger) *Session {
	return &Session{model: model, logger: log}
}

// Stream sends message within chatContext and returns the reply fragments.
// Starting the upstream chat may fail, and that error is returned. Errors
// while streaming are logged and end the sequence with the Apology fragment;
// the second value of the sequence reports whether that happened.
func (s *Session) Stream(ctx context.Context, chatContext, message string) (iter.Seq2[string, bool], error) {
	chat, err := s.chatFor(ctx, SystemInstruction(chatContext))
	if err != nil {
		return nil, err
	}

	return func(yield func(string, bool) bool) {
		if message == "" {
			return
		}
		for fragment, err := range chat.SendStream(ctx, message) {
			if err != nil {
				logger.WithContext(ctx, s.logger).ErrorContext(ctx, "chat stream failed",
					slog.String("error", err.Error()),
				)
				yield(Apology, true)
				return
			}
			if fragment == "" {
				continue
			}
			if !yield(fragment, false) {
				return
			}
		}
	}, nil
}

func (s *Session) chatFor(ctx context.Context, instruction string) (Chat, error) {
	if instruction != s.instruction {
		s.chat = nil
		s.instruction = instruction
	}
	if s.chat == nil {
		chat, err := s.model.StartChat(ctx, instruction)
		if err != nil {
			return nil, fmt.Errorf("start chat: %w", err)
		}
		s.chat = chat
	}
	return s.chat, nil
}

// Reset drops the upstream chat.
func (s *Session) Reset() {
	s.chat = nil
	s.instruction = ""
}
