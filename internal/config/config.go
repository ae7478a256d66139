package config

// Config holds runtime parameters for the service. Load starts from Default,
// so keys missing from a file keep their default values.
type Config struct {
	Addr                 string  `json:"addr" yaml:"addr" toml:"addr"`
	AssetsDir            string  `json:"assets_dir" yaml:"assets_dir" toml:"assets_dir"`
	ModelAsset           string  `json:"model_asset" yaml:"model_asset" toml:"model_asset"`
	ModelDir             string  `json:"model_dir" yaml:"model_dir" toml:"model_dir"`
	ModelID              string  `json:"model_id" yaml:"model_id" toml:"model_id"`
	Engine               string  `json:"engine" yaml:"engine" toml:"engine"`
	ContextSize          int     `json:"context_size" yaml:"context_size" toml:"context_size"`
	BatchSize            int     `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	GPULayers            int     `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
	ReservedOutputTokens int     `json:"reserved_output_tokens" yaml:"reserved_output_tokens" toml:"reserved_output_tokens"`
	HistoryTurns         int     `json:"history_turns" yaml:"history_turns" toml:"history_turns"`
	IntegrityTolerance   float64 `json:"integrity_tolerance" yaml:"integrity_tolerance" toml:"integrity_tolerance"`

	Persona      PersonaConfig   `json:"persona" yaml:"persona" toml:"persona"`
	Sampling     SamplingConfig  `json:"sampling" yaml:"sampling" toml:"sampling"`
	Scheduler    SchedulerConfig `json:"scheduler" yaml:"scheduler" toml:"scheduler"`
	ExtractRetry RetryConfig     `json:"extract_retry" yaml:"extract_retry" toml:"extract_retry"`
	HTTP         HTTPConfig      `json:"http" yaml:"http" toml:"http"`
	Logging      LoggingConfig   `json:"logging" yaml:"logging" toml:"logging"`
}

// Engine names.
const (
	EngineLlama     = "llama"
	EngineReference = "reference"
)

type PersonaConfig struct {
	Name         string `json:"name" yaml:"name" toml:"name"`
	Instructions string `json:"instructions" yaml:"instructions" toml:"instructions"`
}

type SamplingConfig struct {
	MaxTokens     int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	Temperature   float64  `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopP          float64  `json:"top_p" yaml:"top_p" toml:"top_p"`
	TopK          int      `json:"top_k" yaml:"top_k" toml:"top_k"`
	RepeatPenalty float64  `json:"repeat_penalty" yaml:"repeat_penalty" toml:"repeat_penalty"`
	RepeatLastN   int      `json:"repeat_last_n" yaml:"repeat_last_n" toml:"repeat_last_n"`
	Stop          []string `json:"stop" yaml:"stop" toml:"stop"`
}

type SchedulerConfig struct {
	// Workers of zero sizes the pool from the host.
	Workers             int `json:"workers" yaml:"workers" toml:"workers"`
	MemorySearchCeiling int `json:"memory_search_ceiling" yaml:"memory_search_ceiling" toml:"memory_search_ceiling"`
	InferenceTimeoutSec int `json:"inference_timeout_sec" yaml:"inference_timeout_sec" toml:"inference_timeout_sec"`
	ModelLoadTimeoutSec int `json:"model_load_timeout_sec" yaml:"model_load_timeout_sec" toml:"model_load_timeout_sec"`
	PriorityWeight      int `json:"priority_weight" yaml:"priority_weight" toml:"priority_weight"`
	AgeStepSec          int `json:"age_step_sec" yaml:"age_step_sec" toml:"age_step_sec"`
}

type RetryConfig struct {
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts"`
	BackoffMS   int `json:"backoff_ms" yaml:"backoff_ms" toml:"backoff_ms"`
}

type HTTPConfig struct {
	CORSOrigins  []string        `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	RateLimit    RateLimitConfig `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
	MaxBodyBytes int64           `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
}

type RateLimitConfig struct {
	Enabled           bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst" toml:"burst"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}
