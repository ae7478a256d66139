//go:build llama

package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaEngine runs the model in-process through go-llama.cpp.
type llamaEngine struct {
	mu      sync.Mutex
	model   *llama.LLama
	opts    LoadOptions
	lastErr string
}

// NewLlamaEngine returns the in-process llama.cpp engine.
func NewLlamaEngine() InferenceEngine { return &llamaEngine{} }

func (e *llamaEngine) Load(path string, opts LoadOptions) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("model path is empty")
	}
	mo := []llama.ModelOption{llama.SetContext(opts.ContextSize)}
	if opts.BatchSize > 0 {
		mo = append(mo, llama.SetNBatch(opts.BatchSize))
	}
	if opts.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(opts.GPULayers))
	}
	m, err := llama.New(path, mo...)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.lastErr = err.Error()
		return err
	}
	if e.model != nil {
		e.model.Free()
	}
	e.model, e.opts, e.lastErr = m, opts, ""
	return nil
}

func (e *llamaEngine) IsLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model != nil
}

func (e *llamaEngine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
}

func (e *llamaEngine) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	return e.GenerateStream(ctx, prompt, params, nil)
}

func (e *llamaEngine) GenerateStream(ctx context.Context, prompt string, params SamplingParams, onToken func(string) error) (string, error) {
	e.mu.Lock()
	m, threads := e.model, e.opts.Threads
	e.mu.Unlock()
	if m == nil {
		return "", errors.New("No model loaded")
	}

	// Bridge token streaming to onToken and respect cancellation
	m.SetTokenCallback(func(tok string) bool {
		if ctx.Err() != nil {
			return false
		}
		if onToken != nil {
			if err := onToken(tok); err != nil {
				return false
			}
		}
		return true
	})
	defer m.SetTokenCallback(nil)

	text, err := m.Predict(prompt, predictOptions(params, threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		e.setLastErr(err)
		return "", fmt.Errorf("predict: %w", err)
	}
	if ctx.Err() != nil {
		return text, ctx.Err()
	}
	return text, nil
}

func (e *llamaEngine) TokenCount(text string) int {
	e.mu.Lock()
	m := e.model
	e.mu.Unlock()
	if m == nil {
		return approxTokens(text)
	}
	n, _, err := m.TokenizeString(text)
	if err != nil {
		return approxTokens(text)
	}
	return int(n)
}

func (e *llamaEngine) ContextSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts.ContextSize
}

// VocabSize is not exposed by the bindings.
func (e *llamaEngine) VocabSize() int { return 0 }

func (e *llamaEngine) HasAccelerator() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts.GPULayers > 0
}

func (e *llamaEngine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *llamaEngine) SystemInfo() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return systemInfo("llama.cpp", e.opts.Threads, e.opts.GPULayers > 0)
}

func (e *llamaEngine) setLastErr(err error) {
	e.mu.Lock()
	e.lastErr = err.Error()
	e.mu.Unlock()
}

// predictOptions converts sampling params into go-llama.cpp options.
func predictOptions(p SamplingParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, p.MaxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTopP(zf(p.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(p.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(p.Temp()),
		llama.SetPenalty(zf(p.RepeatPenalty, llama.DefaultOptions.Penalty)),
		llama.SetRepeat(zn(p.RepeatLastN, llama.DefaultOptions.Repeat)),
	}
	if p.Seed != 0 {
		po = append(po, llama.SetSeed(p.Seed))
	}
	if len(p.Stop) > 0 {
		po = append(po, llama.SetStopWords(p.Stop...))
	}
	return po
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}
