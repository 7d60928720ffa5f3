package http

import (
	"net/http"
	"strings"

	apperrors "github.com/qbazz/storefront/pkg/errors"
	"github.com/qbazz/storefront/pkg/httputil"
	"github.com/qbazz/storefront/pkg/middleware"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireVisitor rejects requests that reached a handler without a visitor.
// Visitor always assigns one, so this only fires when the router is
// assembled without it.
func requireVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.VisitorID(r) == "" {
			httputil.WriteError(w, r, apperrors.InvalidInput("visitor identity is required"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
