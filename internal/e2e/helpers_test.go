package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"localmind/internal/httpapi"
	"localmind/internal/manager"
	"localmind/internal/scheduler"
	"localmind/pkg/types"
)

const assetSize = 256 * 1024

type harness struct {
	srv      *httptest.Server
	mgr      *manager.Manager
	engine   *manager.ReferenceEngine
	modelDir string
}

// newHarness serves a manager backed by the reference engine over a real
// asset directory holding a model of assetSize bytes.
func newHarness(t *testing.T, tokenDelay time.Duration) *harness {
	t.Helper()
	assets := t.TempDir()
	if err := os.WriteFile(filepath.Join(assets, manager.DefaultAssetName), bytes.Repeat([]byte{0x47}, assetSize), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	eng := manager.NewReferenceEngine()
	eng.TokenDelay = tokenDelay
	modelDir := filepath.Join(t.TempDir(), "models")
	sched := scheduler.New(scheduler.Config{Workers: 2})
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Assets:          os.DirFS(assets),
		ModelDir:        modelDir,
		HardwareThreads: 4,
		Engine:          eng,
		Scheduler:       sched,
	})
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = mgr.Close(ctx)
		_ = sched.Dispose(ctx)
	})
	return &harness{srv: srv, mgr: mgr, engine: eng, modelDir: modelDir}
}

func (h *harness) post(t *testing.T, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	resp, err := http.Post(h.srv.URL+path, "application/json", rd)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func (h *harness) status(t *testing.T) types.StatusResponse {
	t.Helper()
	resp, err := http.Get(h.srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	var st types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return st
}

func (h *harness) init(t *testing.T) {
	t.Helper()
	resp, body := h.post(t, "/init", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("init status=%d body=%s", resp.StatusCode, body)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
