package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/qbazz/storefront/internal/assistant"
	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/pkg/httputil"
	"github.com/qbazz/storefront/pkg/logger"
	"github.com/qbazz/storefront/pkg/middleware"
	"github.com/qbazz/storefront/pkg/validator"
)

// SSE event names.
const (
	eventFragment = "fragment"
	eventDone     = "done"
)

// ChatHandler exposes the shopping assistant conversation of each visitor.
type ChatHandler struct {
	registry *assistant.Registry
	logger   *slog.Logger
}

// NewChatHandler creates a new chat HTTP handler.
func NewChatHandler(registry *assistant.Registry, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{registry: registry, logger: logger}
}

// --- Request DTOs ---

// SendMessageRequest is the JSON request body for one chat turn. Context is
// the page context the chat window was opened on.
type SendMessageRequest struct {
	Context string `json:"context" validate:"max=500"`
	Message string `json:"message" validate:"required,max=2000"`
}

// TranscriptResponse is the conversation as shown in the chat window.
type TranscriptResponse struct {
	Context  string               `json:"context"`
	Messages []domain.ChatMessage `json:"messages"`
	Busy     bool                 `json:"busy"`
}

type fragmentEvent struct {
	Text string `json:"text"`
}

// --- Handlers ---

// Open handles GET /api/v1/chat
func (h *ChatHandler) Open(w http.ResponseWriter, r *http.Request) {
	conv := h.registry.Conversation(middleware.VisitorID(r))
	messages := conv.Open(r.URL.Query().Get("context"))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: TranscriptResponse{
		Context:  conv.Context(),
		Messages: messages,
		Busy:     conv.Busy(),
	}})
}

// SendMessage handles POST /api/v1/chat/messages. The reply is streamed as
// server-sent events: one "fragment" event per piece of text followed by a
// "done" event carrying the full transcript.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	ctx := r.Context()
	log := logger.WithContext(ctx, h.logger)
	rc := http.NewResponseController(w)

	// Replies can outlast the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.WarnContext(ctx, "failed to clear write deadline", slog.String("error", err.Error()))
	}

	started := false
	emit := func(fragment string) error {
		if !started {
			startStream(w)
			started = true
		}
		if err := writeEvent(w, eventFragment, fragmentEvent{Text: fragment}); err != nil {
			return err
		}
		return rc.Flush()
	}

	conv := h.registry.Conversation(middleware.VisitorID(r))
	messages, err := conv.Send(ctx, req.Context, req.Message, emit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if ctx.Err() != nil {
		return
	}

	if !started {
		startStream(w)
	}
	done := TranscriptResponse{Context: req.Context, Messages: messages}
	if err := writeEvent(w, eventDone, done); err != nil {
		log.InfoContext(ctx, "chat client went away before done", slog.String("error", err.Error()))
		return
	}
	_ = rc.Flush()
}

// Close handles DELETE /api/v1/chat
func (h *ChatHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.registry.Close(middleware.VisitorID(r))
	w.WriteHeader(http.StatusNoContent)
}

func startStream(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
}

func writeEvent(w io.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
