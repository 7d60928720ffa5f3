package assistant

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry owns one Conversation per visitor. Conversations are created on
// first use and dropped when closed or idle for longer than the TTL.
type Registry struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	model         Model
	ttl           time.Duration
	logger        *slog.Logger
	nowFunc       func() time.Time
}

// NewRegistry creates an empty registry. Call Run to evict idle conversations.
func NewRegistry(model Model, ttl time.Duration, log *slog.Logger) *Registry {
	return &Registry{
		conversations: make(map[string]*Conversation),
		model:         model,
		ttl:           ttl,
		logger:        log,
		nowFunc:       time.Now,
	}
}

// Conversation returns the visitor's conversation, creating it if needed.
func (r *Registry) Conversation(visitorID string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[visitorID]
	if !ok {
		c = newConversation(r.model, r.logger, r.nowFunc)
		r.conversations[visitorID] = c
	}
	return c
}

func (r *Registry) lookup(visitorID string) (*Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[visitorID]
	return c, ok
}

// Close drops the visitor's conversation. It reports whether one existed.
func (r *Registry) Close(visitorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conversations[visitorID]
	delete(r.conversations, visitorID)
	return ok
}

// Len returns the number of live conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conversations)
}

// Run evicts idle conversations until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictIdle(); n > 0 {
				r.logger.Debug("evicted idle conversations",
					slog.Int("count", n),
					slog.Int("live", r.Len()),
				)
			}
		}
	}
}

func (r *Registry) evictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	evicted := 0
	for id, c := range r.conversations {
		idle, busy := c.idleSince(now)
		if busy || idle < r.ttl {
			continue
		}
		delete(r.conversations, id)
		evicted++
	}
	return evicted
}
