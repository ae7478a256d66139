package manager

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"localmind/internal/scheduler"
)

const testAssetSize = 64 * 1024

// assetFS returns an in-memory asset store holding a model of testAssetSize bytes.
func assetFS() fstest.MapFS {
	return fstest.MapFS{
		DefaultAssetName: &fstest.MapFile{Data: bytes.Repeat([]byte{0xAB}, testAssetSize), Mode: 0o444},
	}
}

// fakeEngine is a lightweight in-memory engine used for tests.
type fakeEngine struct {
	mu       sync.Mutex
	loaded   bool
	opts     LoadOptions
	loadPath string
	params   SamplingParams

	loadErr error
	// loadBlock, when set, makes Load wait for it to be closed.
	loadBlock  chan struct{}
	doubleLoad atomic.Bool
	genErr     error
	failFirst  atomic.Bool
	reply      string
	tokens     []string
	// block, when set, makes Generate wait for a value or ctx.
	block      chan struct{}
	ignoreCtx  bool
	tokenCount func(string) int

	loads       atomic.Int32
	generations atomic.Int32
	started     chan struct{}
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{reply: "Hello there!", started: make(chan struct{}, 16)}
}

func (f *fakeEngine) Load(path string, opts LoadOptions) error {
	f.loads.Add(1)
	if f.loadBlock != nil {
		<-f.loadBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	if f.loaded {
		f.doubleLoad.Store(true)
	}
	f.loaded, f.opts, f.loadPath = true, opts, path
	return nil
}

func (f *fakeEngine) lastParams() SamplingParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

func (f *fakeEngine) IsLoaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *fakeEngine) Unload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = false
}

func (f *fakeEngine) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	return f.GenerateStream(ctx, prompt, params, nil)
}

func (f *fakeEngine) GenerateStream(ctx context.Context, _ string, params SamplingParams, onToken func(string) error) (string, error) {
	f.generations.Add(1)
	f.mu.Lock()
	f.params = params
	f.mu.Unlock()
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.block != nil {
		if f.ignoreCtx {
			<-f.block
		} else {
			select {
			case <-f.block:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if f.failFirst.CompareAndSwap(true, false) {
		return "", errors.New("native generate failed")
	}
	if f.genErr != nil {
		return "", f.genErr
	}
	if onToken != nil {
		for _, tok := range f.tokens {
			if err := onToken(tok); err != nil {
				return "", err
			}
		}
	}
	return f.reply, nil
}

func (f *fakeEngine) TokenCount(text string) int {
	if f.tokenCount != nil {
		return f.tokenCount(text)
	}
	return approxTokens(text)
}

func (f *fakeEngine) ContextSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts.ContextSize
}

func (f *fakeEngine) VocabSize() int       { return 49152 }
func (f *fakeEngine) HasAccelerator() bool { return false }
func (f *fakeEngine) LastError() string    { return "" }

type testManager struct {
	*Manager
	engine *fakeEngine
	events *MemoryPublisher
	assets fstest.MapFS
	dir    string
}

// newTestManager builds a manager over a fake engine and an in-memory asset
// store, extracting into a temp dir. mutate may adjust the config.
func newTestManager(t *testing.T, mutate func(*ManagerConfig)) *testManager {
	t.Helper()
	eng := newFakeEngine()
	pub := NewMemoryPublisher()
	assets := assetFS()
	dir := t.TempDir()
	cfg := ManagerConfig{
		Assets:          assets,
		ModelDir:        dir,
		HardwareThreads: 8,
		ChunkSize:       4096,
		Engine:          eng,
		Publisher:       pub,
		ExtractRetry:    scheduler.RetryPolicy{MaxAttempts: 1},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m := NewWithConfig(cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = m.Close(ctx)
	})
	return &testManager{Manager: m, engine: eng, events: pub, assets: assets, dir: dir}
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
