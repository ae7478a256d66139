package config

func Default() Config {
	return Config{
		Addr:                 "127.0.0.1:8765",
		AssetsDir:            "./assets",
		ModelAsset:           "model.gguf",
		ModelDir:             "~/.localmind/models",
		ModelID:              "smollm2-360m-instruct-q8",
		Engine:               EngineLlama,
		ContextSize:          2048,
		BatchSize:            512,
		ReservedOutputTokens: 256,
		HistoryTurns:         10,
		IntegrityTolerance:   0.01,
		Persona: PersonaConfig{
			Name:         "LocalMind",
			Instructions: "You are a helpful assistant running entirely on this device. Answer concisely.",
		},
		Sampling: SamplingConfig{
			MaxTokens:     512,
			Temperature:   0.7,
			TopP:          0.9,
			TopK:          40,
			RepeatPenalty: 1.1,
			RepeatLastN:   64,
		},
		Scheduler: SchedulerConfig{
			MemorySearchCeiling: 2,
			InferenceTimeoutSec: 120,
			ModelLoadTimeoutSec: 60,
			PriorityWeight:      10,
			AgeStepSec:          10,
		},
		ExtractRetry: RetryConfig{
			MaxAttempts: 3,
			BackoffMS:   200,
		},
		HTTP: HTTPConfig{
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 2,
				Burst:             4,
			},
			MaxBodyBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
