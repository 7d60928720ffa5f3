package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qbazz/storefront/pkg/logger"
)

func TestLimiterStore_BurstThenReject(t *testing.T) {
	store := NewLimiterStore(1, 3, time.Minute)
	fixed := time.Now()
	store.nowFunc = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		assert.True(t, store.Allow("visitor:a"), "request %d within burst", i+1)
	}
	assert.False(t, store.Allow("visitor:a"))
	assert.True(t, store.Allow("visitor:b"), "keys have independent buckets")

	fixed = fixed.Add(time.Second)
	assert.True(t, store.Allow("visitor:a"), "one token refills after a second")
}

func TestLimiterStore_CleanupEvictsIdleKeys(t *testing.T) {
	store := NewLimiterStore(1, 1, time.Minute)
	now := time.Now()
	store.nowFunc = func() time.Time { return now }

	store.Allow("old")
	now = now.Add(2 * time.Minute)
	store.Allow("fresh")

	store.cleanup()

	assert.Equal(t, 1, store.len())
}

func TestLimiterStore_RunStopsOnCancel(t *testing.T) {
	store := NewLimiterStore(1, 1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	store := NewLimiterStore(0.001, 2, time.Minute)
	handler := RateLimit(store, VisitorKey, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		ctx := logger.WithVisitorID(context.Background(), "visitor-1")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/messages", nil).WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestVisitorKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:5555"
	assert.Equal(t, "ip:192.168.1.9", VisitorKey(req))

	req = req.WithContext(logger.WithVisitorID(req.Context(), "v-7"))
	assert.Equal(t, "visitor:v-7", VisitorKey(req))
}

func TestIPKey_IgnoresVisitor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:5555"
	req = req.WithContext(logger.WithVisitorID(req.Context(), "v-7"))

	assert.Equal(t, "ip:192.168.1.9", IPKey(req))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		remote string
		want   string
	}{
		{"forwarded chain", "X-Forwarded-For", "203.0.113.5, 10.0.0.1", "10.0.0.2:80", "203.0.113.5"},
		{"forwarded garbage", "X-Forwarded-For", "unknown", "10.0.0.2:80", "10.0.0.2"},
		{"real ip", "X-Real-IP", "198.51.100.7", "10.0.0.2:80", "198.51.100.7"},
		{"remote addr", "", "", "10.0.0.3:4242", "10.0.0.3"},
		{"remote without port", "", "", "10.0.0.4", "10.0.0.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
