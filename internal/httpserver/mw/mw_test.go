package mw

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"127.0.0.1:7878", "127.0.0.1:7878", true},
		{"LOCALHOST:7878", "localhost:7878", true},
		{"evil.example:7878", "127.0.0.1:7878", false},
		{"app.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
	}
	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := EnforceHost([]string{"127.0.0.1:7878"}, logger.NewNop())(ok)

	req := httptest.NewRequest(http.MethodGet, "/api/document", nil)
	req.Host = "127.0.0.1:7878"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Errorf("allowed host got %d", rec.Code)
	}

	req.Host = "attacker.example:7878"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign host got %d, want 403", rec.Code)
	}

	pass := EnforceHost(nil, logger.NewNop())(ok)
	rec = httptest.NewRecorder()
	pass.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Errorf("passthrough got %d", rec.Code)
	}
}

type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestLogPassesHijackThrough(t *testing.T) {
	var supported bool
	h := Log(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		supported = ok
		if ok {
			_, _, _ = hj.Hijack()
		}
	}))

	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if !supported || !rec.hijacked {
		t.Error("logging middleware must expose http.Hijacker")
	}
}
