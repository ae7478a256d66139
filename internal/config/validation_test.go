package config

import (
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Engine = "gpt"
	cfg.ReservedOutputTokens = cfg.ContextSize
	cfg.Sampling.TopP = 2
	cfg.Scheduler.MemorySearchCeiling = 0
	cfg.HTTP.RateLimit = RateLimitConfig{Enabled: true}
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, want := range []string{"engine", "reserved_output_tokens", "sampling: top_p", "scheduler: memory_search_ceiling", "http: rate_limit", "logging: format"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}
