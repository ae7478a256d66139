package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"localmind/internal/config"
	"localmind/internal/manager"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestSeconds(t *testing.T) {
	if got := seconds(0); got >= 0 {
		t.Fatalf("zero should disable the timeout, got %v", got)
	}
	if got := seconds(90); got != 90*time.Second {
		t.Fatalf("seconds(90) = %v", got)
	}
}

func TestNewEngine(t *testing.T) {
	if e, err := newEngine(config.EngineReference); err != nil || e == nil {
		t.Fatalf("reference engine: %v", err)
	}
	if _, err := newEngine("gpt"); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("log output = %q", out)
	}
}

func TestManagerServesReferenceEngine(t *testing.T) {
	assets := t.TempDir()
	if err := os.WriteFile(filepath.Join(assets, "model.gguf"), bytes.Repeat([]byte{1}, 4096), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	cfg := config.Default()
	cfg.Engine = config.EngineReference
	cfg.AssetsDir = assets
	cfg.ModelDir = t.TempDir()
	cfg.Scheduler.Workers = 2
	cfg.Sampling.Temperature = 0

	eng, err := newEngine(cfg.Engine)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	log := zerolog.Nop()
	sched := newScheduler(cfg.Scheduler, log)
	t.Cleanup(func() { _ = sched.Dispose(context.Background()) })
	mcfg, err := managerConfig(cfg, eng, sched, nil, log)
	if err != nil {
		t.Fatalf("manager config: %v", err)
	}
	if mcfg.Sampling.TopK != cfg.Sampling.TopK || mcfg.ExtractRetry.Backoff != 200*time.Millisecond {
		t.Fatalf("mapping lost values: %+v", mcfg)
	}
	if mcfg.Sampling.Temperature == nil || *mcfg.Sampling.Temperature != 0 {
		t.Fatalf("greedy temperature lost: %v", mcfg.Sampling.Temperature)
	}

	mgr := manager.NewWithConfig(mcfg)
	t.Cleanup(func() { _ = mgr.Close(context.Background()) })
	if err := mgr.Initialize(t.Context()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	res, err := mgr.SendMessage(t.Context(), "hello", manager.Persona{}, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.Content != manager.ReferenceReply {
		t.Fatalf("content = %q", res.Content)
	}
}

func TestConfigCommandPrintsYAML(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvAddr, "127.0.0.1:9999")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "127.0.0.1:9999") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestCheckCommandListsAssets(t *testing.T) {
	t.Setenv(config.EnvAddr, "")
	assets := t.TempDir()
	if err := os.WriteFile(filepath.Join(assets, "model.gguf"), []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	cfgPath := filepath.Join(t.TempDir(), "localmind.yaml")
	body := "engine: reference\nassets_dir: " + assets + "\nmodel_dir: " + t.TempDir() + "\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--config", cfgPath, "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		cfgFile, logLevel = "", ""
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, `"asset_found": true`) || !strings.Contains(got, `"name": "model.gguf"`) || !strings.Contains(got, `"available_bytes"`) {
		t.Fatalf("output = %s", got)
	}
}
