package assistant

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/qbazz/storefront/internal/domain"
	apperrors "github.com/qbazz/storefront/pkg/errors"
	"github.com/qbazz/storefront/pkg/logger"
)

// Conversation is the transcript a visitor sees in the chat window together
// with the session that produces the model's replies. Only one turn may be
// in flight at a time.
type Conversation struct {
	mu       sync.Mutex
	session  *Session
	logger   *slog.Logger
	nowFunc  func() time.Time
	context  string
	opened   bool
	messages []domain.ChatMessage
	// generation changes on every reset so a turn that outlives a reset
	// cannot write into the new transcript.
	generation uint64
	inFlight   bool
	lastUsed   time.Time
}

func newConversation(model Model, log *slog.Logger, now func() time.Time) *Conversation {
	return &Conversation{
		session:  NewSession(model, log),
		logger:   log,
		nowFunc:  now,
		lastUsed: now(),
	}
}

// Open shows the conversation for chatContext. The transcript is reset to the
// greeting on the first open and whenever the context differs from the
// previous one.
func (c *Conversation) Open(chatContext string) []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastUsed = c.nowFunc()
	if !c.opened || c.context != chatContext {
		c.resetLocked(chatContext)
	}
	return c.snapshotLocked()
}

// Send runs one turn: the user message is appended, the reply is streamed to
// emit fragment by fragment and assembled into a single model message. An
// error from emit stops the turn early. Upstream failures never surface as
// errors; they become the apology or the generic error turn.
func (c *Conversation) Send(ctx context.Context, chatContext, text string, emit func(fragment string) error) ([]domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.InvalidInput("message is empty")
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		chatTurns.WithLabelValues(turnRejected).Inc()
		return nil, apperrors.Conflict("a reply is still being written")
	}
	if !c.opened || c.context != chatContext {
		c.resetLocked(chatContext)
	}
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleUser, Text: text})
	c.inFlight = true
	c.lastUsed = c.nowFunc()
	gen := c.generation
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.lastUsed = c.nowFunc()
		c.mu.Unlock()
	}()

	log := logger.WithContext(ctx, c.logger)

	fragments, err := c.session.Stream(ctx, chatContext, text)
	if err != nil {
		log.ErrorContext(ctx, "chat turn failed", slog.String("error", err.Error()))
		chatTurns.WithLabelValues(turnFailed).Inc()
		c.appendFragment(gen, GenericError, true)
		_ = emit(GenericError)
		return c.Messages(), nil
	}

	result := turnOK
	first := true
	for fragment, apology := range fragments {
		if apology {
			result = turnApology
		}
		c.appendFragment(gen, fragment, first)
		first = false
		if err := emit(fragment); err != nil {
			log.InfoContext(ctx, "chat client went away", slog.String("error", err.Error()))
			break
		}
	}
	chatTurns.WithLabelValues(result).Inc()
	return c.Messages(), nil
}

func (c *Conversation) appendFragment(gen uint64, fragment string, newTurn bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	last := len(c.messages) - 1
	if newTurn || last < 0 || c.messages[last].Role != domain.RoleModel {
		c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleModel, Text: fragment})
		return
	}
	c.messages[last].Text += fragment
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Context returns the context string of the current transcript.
func (c *Conversation) Context() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.context
}

// Busy reports whether a turn is in flight.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Conversation) idleSince(now time.Time) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastUsed), c.inFlight
}

func (c *Conversation) resetLocked(chatContext string) {
	c.context = chatContext
	c.opened = true
	c.generation++
	c.messages = []domain.ChatMessage{{Role: domain.RoleModel, Text: Greeting}}
}

func (c *Conversation) snapshotLocked() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
