package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbazz/storefront/internal/assistant"
	"github.com/qbazz/storefront/internal/domain"
)

type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			}
		}
		require.NotEmpty(t, ev.name, "malformed event block %q", block)
		events = append(events, ev)
	}
	return events
}

func fragmentText(t *testing.T, ev sseEvent) string {
	t.Helper()
	require.Equal(t, eventFragment, ev.name)
	var f fragmentEvent
	require.NoError(t, json.Unmarshal([]byte(ev.data), &f))
	return f.Text
}

func TestChatOpen_StartsWithGreeting(t *testing.T) {
	env := newTestEnv(t, assistant.Unavailable{}, 1)

	rec := env.do(http.MethodGet, "/api/v1/chat?context=home", "")

	require.Equal(t, http.StatusOK, rec.Code)
	transcript := decodeData[TranscriptResponse](t, rec)
	assert.Equal(t, "home", transcript.Context)
	assert.False(t, transcript.Busy)
	assert.Equal(t, []domain.ChatMessage{{Role: domain.RoleModel, Text: assistant.Greeting}}, transcript.Messages)
}

func TestChatSendMessage_StreamsFragmentsThenDone(t *testing.T) {
	env := newTestEnv(t, scriptedModel{fragments: []string{"سلام", " دوست"}}, 1)

	rec := env.do(http.MethodPost, "/api/v1/chat/messages", `{"context":"home","message":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "سلام", fragmentText(t, events[0]))
	assert.Equal(t, " دوست", fragmentText(t, events[1]))
	require.Equal(t, eventDone, events[2].name)

	var done TranscriptResponse
	require.NoError(t, json.Unmarshal([]byte(events[2].data), &done))
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleModel, Text: assistant.Greeting},
		{Role: domain.RoleUser, Text: "hi"},
		{Role: domain.RoleModel, Text: "سلام دوست"},
	}, done.Messages)
}

func TestChatSendMessage_ModelUnavailable_SendsGenericError(t *testing.T) {
	env := newTestEnv(t, assistant.Unavailable{}, 1)

	rec := env.do(http.MethodPost, "/api/v1/chat/messages", `{"context":"home","message":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, assistant.GenericError, fragmentText(t, events[0]))
	assert.Equal(t, eventDone, events[1].name)
}

func TestChatSendMessage_TranscriptPersistsAcrossRequests(t *testing.T) {
	env := newTestEnv(t, scriptedModel{fragments: []string{"ok"}}, 2)

	rec := env.do(http.MethodPost, "/api/v1/chat/messages", `{"context":"store:s1 Mesgar","message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/chat?context=store:s1%20Mesgar", "")
	transcript := decodeData[TranscriptResponse](t, rec)
	assert.Equal(t, "store:s1 Mesgar", transcript.Context)
	assert.Len(t, transcript.Messages, 3)

	rec = env.do(http.MethodGet, "/api/v1/chat?context=home", "")
	transcript = decodeData[TranscriptResponse](t, rec)
	assert.Equal(t, "home", transcript.Context)
	assert.Len(t, transcript.Messages, 1, "a new context resets to the greeting")
}

func TestChatSendMessage_EmptyMessage_Returns400(t *testing.T) {
	env := newTestEnv(t, scriptedModel{fragments: []string{"ok"}}, 1)

	rec := env.do(http.MethodPost, "/api/v1/chat/messages", `{"context":"home","message":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestChatSendMessage_RateLimitedPerVisitor(t *testing.T) {
	env := newTestEnv(t, scriptedModel{fragments: []string{"ok"}}, 1)

	rec := env.do(http.MethodPost, "/api/v1/chat/messages", `{"context":"home","message":"one"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/chat/messages", `{"context":"home","message":"two"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestChatClose_DiscardsConversation(t *testing.T) {
	env := newTestEnv(t, scriptedModel{fragments: []string{"ok"}}, 1)

	rec := env.do(http.MethodPost, "/api/v1/chat/messages", `{"context":"home","message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/chat", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/chat?context=home", "")
	transcript := decodeData[TranscriptResponse](t, rec)
	assert.Len(t, transcript.Messages, 1)
}
