package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSessionKey = []byte("0123456789abcdef0123456789abcdef")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func visitorHandler(seen *string) http.Handler {
	store := NewVisitorStore(testSessionKey, false)
	return Visitor(store, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = VisitorID(r)
	}))
}

func TestVisitor_IgnoresClaimedIDHeader(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Visitor-ID", "someone-else")
	rr := httptest.NewRecorder()

	visitorHandler(&seen).ServeHTTP(rr, req)

	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "someone-else", seen)
	assert.Len(t, rr.Result().Cookies(), 1)
}

func TestVisitor_IssuesCookieAndReusesIt(t *testing.T) {
	var first, second string
	handler := visitorHandler(&first)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, first)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, visitorSessionName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	handler = visitorHandler(&second)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, first, second)
	assert.Empty(t, rr.Result().Cookies(), "an existing visitor is not re-issued a cookie")
}

func TestVisitor_TamperedCookieGetsFreshID(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: visitorSessionName, Value: "forged"})
	rr := httptest.NewRecorder()

	visitorHandler(&seen).ServeHTTP(rr, req)

	assert.NotEmpty(t, seen)
	assert.Len(t, rr.Result().Cookies(), 1)
}
