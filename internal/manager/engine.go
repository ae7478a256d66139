package manager

import "context"

// InferenceEngine abstracts the native model runtime. Implementations are not
// required to be reentrant: the Manager serialises Load, Unload and Generate
// through the scheduler's shared inference/model-load ceiling.
type InferenceEngine interface {
	// Load opens the model at path. Loading over an already loaded model
	// replaces it.
	Load(path string, opts LoadOptions) error
	IsLoaded() bool
	Unload()
	// Generate runs a completion. ctx is checked between tokens where the
	// runtime allows it; the native call itself cannot be interrupted.
	Generate(ctx context.Context, prompt string, params SamplingParams) (string, error)
	// TokenCount returns the number of tokens prompt encodes to.
	TokenCount(text string) int
	ContextSize() int
	VocabSize() int
	HasAccelerator() bool
	// LastError is the most recent runtime error message, if any.
	LastError() string
}

// StreamingEngine is implemented by engines that can deliver tokens as they
// are produced. onToken returning an error stops generation.
type StreamingEngine interface {
	GenerateStream(ctx context.Context, prompt string, params SamplingParams, onToken func(string) error) (string, error)
}

// SystemInfoer is implemented by engines that describe their runtime.
type SystemInfoer interface {
	SystemInfo() string
}

// LoadOptions configure model loading.
type LoadOptions struct {
	ContextSize int
	Threads     int
	BatchSize   int
	GPULayers   int
}

// SamplingParams captures generation parameters passed to the engine.
type SamplingParams struct {
	MaxTokens     int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	Temperature   *float32 `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty"`
	TopP          float32  `json:"top_p" yaml:"top_p" toml:"top_p"`
	TopK          int      `json:"top_k" yaml:"top_k" toml:"top_k"`
	RepeatPenalty float32  `json:"repeat_penalty" yaml:"repeat_penalty" toml:"repeat_penalty"`
	RepeatLastN   int      `json:"repeat_last_n" yaml:"repeat_last_n" toml:"repeat_last_n"`
	Seed          int      `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
	Stop          []string `json:"stop,omitempty" yaml:"stop,omitempty" toml:"stop,omitempty"`
}

// Sampling defaults.
const (
	DefaultMaxTokens     = 512
	DefaultTemperature   = 0.7
	DefaultTopP          = 0.9
	DefaultTopK          = 40
	DefaultRepeatPenalty = 1.1
	DefaultRepeatLastN   = 64
)

// Temp returns the sampling temperature, DefaultTemperature when unset.
func (p SamplingParams) Temp() float32 {
	if p.Temperature == nil {
		return DefaultTemperature
	}
	return *p.Temperature
}

// withDefaults fills zero fields; stop markers default to stops. Temperature
// is only defaulted when unset so zero selects greedy decoding.
func (p SamplingParams) withDefaults(stops []string) SamplingParams {
	if p.MaxTokens <= 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	if p.Temperature == nil {
		t := float32(DefaultTemperature)
		p.Temperature = &t
	}
	if p.TopP <= 0 {
		p.TopP = DefaultTopP
	}
	if p.TopK <= 0 {
		p.TopK = DefaultTopK
	}
	if p.RepeatPenalty <= 0 {
		p.RepeatPenalty = DefaultRepeatPenalty
	}
	if p.RepeatLastN <= 0 {
		p.RepeatLastN = DefaultRepeatLastN
	}
	if len(p.Stop) == 0 {
		p.Stop = append([]string(nil), stops...)
	}
	return p
}
