package manager

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"localmind/internal/common/fsutil"
)

// Reference engine constants, matching the bundled SmolLM2-360M model.
const (
	ReferenceContextSize = 2048
	ReferenceVocabSize   = 49152
	ReferenceReply       = "I'm a local AI assistant running on your device! I process everything locally without needing an internet connection. Your privacy is completely protected."
)

// ReferenceEngine is a pure-Go engine with the observable behaviour of the
// native bridge: it validates the model file, reports the bundled model's
// geometry and answers every prompt with a fixed reply. It backs the CLI's
// "reference" engine and the manager tests.
type ReferenceEngine struct {
	// Reply overrides ReferenceReply when set.
	Reply string
	// TokenDelay is slept between streamed tokens.
	TokenDelay time.Duration

	mu      sync.Mutex
	loaded  bool
	opts    LoadOptions
	lastErr string
}

// NewReferenceEngine returns a ReferenceEngine with the stock reply.
func NewReferenceEngine() *ReferenceEngine { return &ReferenceEngine{} }

func (e *ReferenceEngine) Load(path string, opts LoadOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !fsutil.PathExists(path) {
		e.lastErr = "Model file not found"
		return errors.New(e.lastErr)
	}
	if opts.ContextSize <= 0 {
		opts.ContextSize = ReferenceContextSize
	}
	e.loaded, e.opts, e.lastErr = true, opts, ""
	return nil
}

func (e *ReferenceEngine) IsLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

func (e *ReferenceEngine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loaded = false
}

func (e *ReferenceEngine) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	return e.GenerateStream(ctx, prompt, params, nil)
}

// GenerateStream emits the reply word by word, stopping early when ctx is
// done, onToken fails or MaxTokens words have been produced.
func (e *ReferenceEngine) GenerateStream(ctx context.Context, _ string, params SamplingParams, onToken func(string) error) (string, error) {
	e.mu.Lock()
	loaded := e.loaded
	if !loaded {
		e.lastErr = "No model loaded"
	}
	e.mu.Unlock()
	if !loaded {
		return "", errors.New("No model loaded")
	}

	reply := e.Reply
	if reply == "" {
		reply = ReferenceReply
	}
	words := strings.SplitAfter(reply, " ")
	if params.MaxTokens > 0 && len(words) > params.MaxTokens {
		words = words[:params.MaxTokens]
	}
	var b strings.Builder
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return b.String(), err
		}
		if e.TokenDelay > 0 {
			timer := time.NewTimer(e.TokenDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return b.String(), ctx.Err()
			case <-timer.C:
			}
		}
		if onToken != nil {
			if err := onToken(w); err != nil {
				return b.String(), err
			}
		}
		b.WriteString(w)
	}
	return b.String(), nil
}

func (e *ReferenceEngine) TokenCount(text string) int { return approxTokens(text) }

func (e *ReferenceEngine) ContextSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opts.ContextSize > 0 {
		return e.opts.ContextSize
	}
	return ReferenceContextSize
}

func (e *ReferenceEngine) VocabSize() int { return ReferenceVocabSize }

func (e *ReferenceEngine) HasAccelerator() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts.GPULayers > 0
}

func (e *ReferenceEngine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *ReferenceEngine) SystemInfo() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	threads := e.opts.Threads
	if threads <= 0 {
		threads = maxEngineThreads
	}
	return systemInfo("Local LLM (SmolLM2-360M)", threads, e.opts.GPULayers > 0)
}
