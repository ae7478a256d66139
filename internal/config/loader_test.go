package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nmodel_dir: /tmp/m\nengine: reference\nscheduler:\n  workers: 3\nsampling:\n  temperature: 0.2\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.ModelDir != "/tmp/m" || cfg.Engine != EngineReference || cfg.Scheduler.Workers != 3 || cfg.Sampling.Temperature != 0.2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	// untouched keys keep defaults
	if cfg.ContextSize != 2048 || cfg.Sampling.TopK != 40 || cfg.Scheduler.InferenceTimeoutSec != 120 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","model_id":"m2","http":{"cors_origins":["http://localhost:3000"],"rate_limit":{"enabled":true,"requests_per_second":1,"burst":2}}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ModelID != "m2" || len(cfg.HTTP.CORSOrigins) != 1 || !cfg.HTTP.RateLimit.Enabled || cfg.HTTP.RateLimit.Burst != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\ncontext_size=4096\n[extract_retry]\nmax_attempts=5\n[logging]\nformat=\"json\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.ContextSize != 4096 || cfg.ExtractRetry.MaxAttempts != 5 || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadSubstitutesEnv(t *testing.T) {
	t.Setenv("LM_TEST_DIR", "/data/models")
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "model_dir: ${LM_TEST_DIR}\nassets_dir: ${LM_UNSET_VAR}\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelDir != "/data/models" || cfg.AssetsDir != "${LM_UNSET_VAR}" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.ini", "addr=:1")
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported extension error, got %v", err)
	}
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
	bad := map[string]string{
		"bad.yaml": "addr: [unclosed\n",
		"bad.json": `{ "addr": ":8080", "model_dir": }`,
		"bad.toml": "addr=:8080\nmodel_dir\n",
	}
	for name, body := range bad {
		if _, err := Load(writeTempFile(t, d, name, body)); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvAddr, "")
	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Addr != Default().Addr {
		t.Fatalf("addr = %s", cfg.Addr)
	}

	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "engine: reference\n")
	t.Setenv(EnvConfig, p)
	t.Setenv(EnvAddr, "0.0.0.0:1234")
	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Engine != EngineReference || cfg.Addr != "0.0.0.0:1234" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}
