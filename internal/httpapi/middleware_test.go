package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func scrapeMetrics(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", w.Code)
	}
	return w.Body.String()
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}

	body := scrapeMetrics(t)
	if !strings.Contains(body, `localmind_http_requests_total{method="GET",path="/items/{id}",status="202"}`) {
		t.Fatalf("route pattern label missing from metrics")
	}
}

func TestChatRateLimit(t *testing.T) {
	SetChatRateLimit(0.001, 1)
	defer SetChatRateLimit(0, 0)
	h := NewMux(&mockService{tokens: []string{"x"}})

	if w := postChat(t, h, `{"content":"hi"}`); w.Code != http.StatusOK {
		t.Fatalf("first request status=%d", w.Code)
	}
	w := postChat(t, h, `{"content":"hi"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
	// cancel is never throttled
	cw := httptest.NewRecorder()
	h.ServeHTTP(cw, httptest.NewRequest(http.MethodPost, "/chat/cancel", nil))
	if cw.Code != http.StatusOK {
		t.Fatalf("cancel status=%d", cw.Code)
	}
	if !strings.Contains(scrapeMetrics(t), `localmind_http_rejected_total{reason="rate_limit"}`) {
		t.Fatalf("rejection not counted")
	}
}

func TestCORS(t *testing.T) {
	SetCORSOrigins([]string{"http://localhost:3000"})
	defer SetCORSOrigins(nil)
	h := NewMux(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestSetMaxBodyBytes(t *testing.T) {
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(-1)
	if maxBodyBytes != defaultMaxBodyBytes {
		t.Fatalf("expected default, got %d", maxBodyBytes)
	}
}

func TestJoinContexts(t *testing.T) {
	a, ac := context.WithCancel(context.Background())
	defer ac()
	b, bc := context.WithCancel(context.Background())
	j, cancelJ := joinContexts(a, b)
	defer cancelJ()
	bc()
	select {
	case <-j.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("joined context did not cancel when second parent cancelled")
	}

	j2, cancel2 := joinContexts(a, context.Background())
	defer cancel2()
	ac()
	select {
	case <-j2.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("joined context did not cancel when first parent cancelled")
	}
}

func TestSetBaseContext_NilResetsToBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	SetBaseContext(ctx)
	SetBaseContext(nil) //nolint:staticcheck // nil resets to Background
	if serverBaseCtx.Err() != nil {
		t.Fatalf("base context should be live after reset")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevelOverrides(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func TestTokenLogWriterSplitsLines(t *testing.T) {
	var buf bytes.Buffer
	lw := &tokenLogWriter{log: zerolog.New(&buf).Level(zerolog.DebugLevel)}
	_, _ = lw.Write([]byte("{\"token\":\"a\"}\npartial"))
	_, _ = lw.Write([]byte("-cont\n"))

	out := buf.String()
	if !strings.Contains(out, `{\"token\":\"a\"}`) || !strings.Contains(out, "partial-cont") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Count(out, "chat>") != 2 {
		t.Fatalf("expected two lines, got %q", out)
	}
}

func TestChatLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.New(io.Discard))

	req := httptest.NewRequest(http.MethodPost, "/chat?log=debug", bytes.NewBufferString(`{"content":"hi","stream":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewMux(&mockService{tokens: []string{"t"}}).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "chat start") || !strings.Contains(out, "chat end") || !strings.Contains(out, "request_id") {
		t.Fatalf("log output = %q", out)
	}
}

func TestMountSwagger_NoOp(t *testing.T) {
	MountSwagger(chi.NewRouter())
}
