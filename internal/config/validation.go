package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.ModelDir == "" {
		errs = append(errs, errors.New("model_dir must not be empty"))
	}
	if c.ModelAsset == "" {
		errs = append(errs, errors.New("model_asset must not be empty"))
	}
	switch c.Engine {
	case EngineLlama, EngineReference:
	default:
		errs = append(errs, fmt.Errorf("engine must be %q or %q, got %q", EngineLlama, EngineReference, c.Engine))
	}
	if c.ContextSize < 64 {
		errs = append(errs, fmt.Errorf("context_size must be at least 64, got %d", c.ContextSize))
	}
	if c.ReservedOutputTokens < 0 || c.ReservedOutputTokens >= c.ContextSize {
		errs = append(errs, fmt.Errorf("reserved_output_tokens must be in [0, context_size), got %d", c.ReservedOutputTokens))
	}
	if c.HistoryTurns < 0 {
		errs = append(errs, fmt.Errorf("history_turns must be non-negative"))
	}
	if c.IntegrityTolerance < 0 || c.IntegrityTolerance > 1 {
		errs = append(errs, fmt.Errorf("integrity_tolerance must be between 0 and 1"))
	}
	if err := c.Sampling.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sampling: %w", err))
	}
	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (s *SamplingConfig) Validate() error {
	var errs []error
	if s.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", s.MaxTokens))
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be between 0 and 2"))
	}
	if s.TopP < 0 || s.TopP > 1 {
		errs = append(errs, fmt.Errorf("top_p must be between 0 and 1"))
	}
	if s.TopK < 0 {
		errs = append(errs, fmt.Errorf("top_k must be non-negative"))
	}
	if s.RepeatPenalty < 0 {
		errs = append(errs, fmt.Errorf("repeat_penalty must be non-negative"))
	}
	return errors.Join(errs...)
}

func (s *SchedulerConfig) Validate() error {
	var errs []error
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative"))
	}
	if s.MemorySearchCeiling < 1 {
		errs = append(errs, fmt.Errorf("memory_search_ceiling must be at least 1"))
	}
	if s.InferenceTimeoutSec < 0 || s.ModelLoadTimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("timeouts must be non-negative"))
	}
	if s.PriorityWeight < 1 || s.AgeStepSec < 1 {
		errs = append(errs, fmt.Errorf("priority_weight and age_step_sec must be positive"))
	}
	return errors.Join(errs...)
}

func (h *HTTPConfig) Validate() error {
	if h.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be non-negative")
	}
	if h.RateLimit.Enabled && (h.RateLimit.RequestsPerSecond <= 0 || h.RateLimit.Burst < 1) {
		return fmt.Errorf("rate_limit needs positive requests_per_second and burst")
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		errs = append(errs, fmt.Errorf("level: %w", err))
	}
	if l.Format != "console" && l.Format != "json" {
		errs = append(errs, fmt.Errorf("format must be console or json, got %q", l.Format))
	}
	return errors.Join(errs...)
}
