package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/qbazz/storefront/pkg/logger"
)

const (
	visitorSessionName = "qbazz_visitor"
	visitorIDValue     = "visitor_id"
)

// NewVisitorStore builds the signed cookie store that carries visitor IDs.
func NewVisitorStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.MaxAge = 365 * 24 * 60 * 60
	return store
}

// Visitor attributes every request to an anonymous visitor. The ID only ever
// comes from the signed session cookie, which is issued with a fresh UUID on
// first contact.
func Visitor(store sessions.Store, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionVisitorID(w, r, store, l)
			next.ServeHTTP(w, r.WithContext(logger.WithVisitorID(r.Context(), id)))
		})
	}
}

func sessionVisitorID(w http.ResponseWriter, r *http.Request, store sessions.Store, l *slog.Logger) string {
	// A cookie signed with a rotated key fails to decode; Get still returns a fresh session.
	session, err := store.Get(r, visitorSessionName)
	if err != nil {
		l.DebugContext(r.Context(), "discarding unreadable visitor cookie", slog.String("error", err.Error()))
	}
	if session == nil {
		return uuid.New().String()
	}

	if id, ok := session.Values[visitorIDValue].(string); ok && id != "" {
		return id
	}

	id := uuid.New().String()
	session.Values[visitorIDValue] = id
	if err := session.Save(r, w); err != nil {
		l.WarnContext(r.Context(), "failed to issue visitor cookie", slog.String("error", err.Error()))
	}
	return id
}

// VisitorID returns the visitor attributed to the request by Visitor.
func VisitorID(r *http.Request) string {
	return logger.VisitorIDFromContext(r.Context())
}
