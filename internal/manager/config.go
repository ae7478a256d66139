package manager

import (
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"localmind/internal/common/fsutil"
	"localmind/internal/common/hostinfo"
	"localmind/internal/prompt"
	"localmind/internal/scheduler"
	"localmind/internal/telemetry"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	DefaultModelID              = "smollm2-360m-instruct-q8"
	DefaultAssetName            = "model.gguf"
	DefaultModelDir             = "~/.localmind/models"
	defaultContextSize          = 2048
	defaultBatchSize            = 512
	defaultReservedOutputTokens = 256
	defaultHistoryTurns         = 10
	defaultIntegrityTolerance   = 0.01
	defaultChunkSize            = 1 << 20
	defaultExtractAttempts      = 3
	defaultExtractBackoff       = 200 * time.Millisecond
)

// ManagerConfig encapsulates all tunables and collaborators for Manager
// construction. Nil collaborators are replaced with working defaults.
type ManagerConfig struct {
	ModelID string
	// Assets is the read-only store holding the bundled model as AssetName.
	Assets    fs.FS
	AssetName string
	// ModelDir is the writable directory the model is extracted into. A
	// leading '~' is expanded.
	ModelDir string

	ContextSize          int
	BatchSize            int
	GPULayers            int
	ReservedOutputTokens int
	HistoryTurns         int
	// IntegrityTolerance is the accepted relative size difference between
	// the extracted file and the bundled asset.
	IntegrityTolerance float64
	ChunkSize          int
	// HardwareThreads overrides the probed logical CPU count.
	HardwareThreads int

	Sampling         SamplingParams
	Persona          Persona
	InferenceTimeout time.Duration
	ModelLoadTimeout time.Duration
	ExtractRetry     scheduler.RetryPolicy

	Engine    InferenceEngine
	Scheduler *scheduler.Scheduler
	Recorder  *telemetry.Recorder
	Publisher EventPublisher
	Logger    zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig. When no scheduler is
// supplied the manager creates one and disposes it on Close.
func NewWithConfig(cfg ManagerConfig) *Manager {
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.AssetName == "" {
		cfg.AssetName = DefaultAssetName
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = DefaultModelDir
	}
	if dir, err := fsutil.ExpandHome(cfg.ModelDir); err == nil {
		cfg.ModelDir = dir
	}
	if cfg.ContextSize <= 0 {
		cfg.ContextSize = defaultContextSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.ReservedOutputTokens <= 0 {
		cfg.ReservedOutputTokens = defaultReservedOutputTokens
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = defaultHistoryTurns
	}
	if cfg.IntegrityTolerance <= 0 {
		cfg.IntegrityTolerance = defaultIntegrityTolerance
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.HardwareThreads <= 0 {
		cfg.HardwareThreads = hostinfo.LogicalCPUs()
	}
	if cfg.ExtractRetry.MaxAttempts <= 0 {
		cfg.ExtractRetry = scheduler.RetryPolicy{MaxAttempts: defaultExtractAttempts, Backoff: defaultExtractBackoff}
	}
	cfg.Sampling = cfg.Sampling.withDefaults(prompt.DefaultStopMarkers())

	m := &Manager{
		cfg:       cfg,
		state:     StateUninitialized,
		engine:    cfg.Engine,
		sched:     cfg.Scheduler,
		recorder:  cfg.Recorder,
		publisher: cfg.Publisher,
		log:       cfg.Logger.With().Str("component", "manager").Logger(),
		genCh:     make(chan struct{}, 1),
		startTime: time.Now(),
	}
	if m.engine == nil {
		m.engine = NewLlamaEngine()
	}
	if m.sched == nil {
		m.sched = scheduler.New(scheduler.Config{Logger: cfg.Logger})
		m.ownsSched = true
	}
	if m.recorder == nil {
		m.recorder = telemetry.NewRecorder(telemetry.DefaultCapacity)
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	return m
}
