package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"localmind/internal/common/fsutil"
	"localmind/internal/config"
	"localmind/internal/manager"
	"localmind/internal/scheduler"
)

// newEngine picks the inference engine named in the config.
func newEngine(name string) (manager.InferenceEngine, error) {
	switch name {
	case config.EngineLlama:
		return manager.NewLlamaEngine(), nil
	case config.EngineReference:
		return manager.NewReferenceEngine(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

func newScheduler(sc config.SchedulerConfig, log zerolog.Logger) *scheduler.Scheduler {
	return scheduler.New(scheduler.Config{
		Workers:             sc.Workers,
		MemorySearchCeiling: sc.MemorySearchCeiling,
		Timeouts: map[scheduler.Category]time.Duration{
			scheduler.CategoryInference: seconds(sc.InferenceTimeoutSec),
			scheduler.CategoryModelLoad: seconds(sc.ModelLoadTimeoutSec),
		},
		PriorityWeight: sc.PriorityWeight,
		AgeStep:        seconds(sc.AgeStepSec),
		Logger:         log,
	})
}

// seconds converts a config value; zero disables the timeout.
func seconds(n int) time.Duration {
	if n <= 0 {
		return -1
	}
	return time.Duration(n) * time.Second
}

// managerConfig maps the file config onto the manager. The returned manager
// does not own sched.
func managerConfig(cfg config.Config, eng manager.InferenceEngine, sched *scheduler.Scheduler, pub manager.EventPublisher, log zerolog.Logger) (manager.ManagerConfig, error) {
	assets, err := fsutil.ExpandHome(cfg.AssetsDir)
	if err != nil {
		return manager.ManagerConfig{}, err
	}
	s := cfg.Sampling
	temp := float32(s.Temperature)
	return manager.ManagerConfig{
		ModelID:              cfg.ModelID,
		Assets:               os.DirFS(assets),
		AssetName:            cfg.ModelAsset,
		ModelDir:             cfg.ModelDir,
		ContextSize:          cfg.ContextSize,
		BatchSize:            cfg.BatchSize,
		GPULayers:            cfg.GPULayers,
		ReservedOutputTokens: cfg.ReservedOutputTokens,
		HistoryTurns:         cfg.HistoryTurns,
		IntegrityTolerance:   cfg.IntegrityTolerance,
		Sampling: manager.SamplingParams{
			MaxTokens:     s.MaxTokens,
			Temperature:   &temp,
			TopP:          float32(s.TopP),
			TopK:          s.TopK,
			RepeatPenalty: float32(s.RepeatPenalty),
			RepeatLastN:   s.RepeatLastN,
			Stop:          s.Stop,
		},
		Persona:      manager.Persona{Name: cfg.Persona.Name, Instructions: cfg.Persona.Instructions},
		ExtractRetry: scheduler.RetryPolicy{MaxAttempts: cfg.ExtractRetry.MaxAttempts, Backoff: time.Duration(cfg.ExtractRetry.BackoffMS) * time.Millisecond},
		Engine:       eng,
		Scheduler:    sched,
		Publisher:    pub,
		Logger:       log,
	}, nil
}

// splitCSV splits a comma separated flag value, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
