package manager

import (
	"time"

	"localmind/internal/prompt"
)

// State represents the lifecycle state of the bundled model.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateExtractingModel State = "extracting_model"
	StateLoading         State = "loading"
	StateReady           State = "ready"
	StateGenerating      State = "generating"
	StateError           State = "error"
)

// transitions lists every permitted edge. Any state may move to Error.
var transitions = map[State][]State{
	StateUninitialized:   {StateExtractingModel},
	StateExtractingModel: {StateLoading},
	StateLoading:         {StateReady},
	StateReady:           {StateGenerating, StateUninitialized},
	StateGenerating:      {StateReady},
	StateError:           {StateExtractingModel, StateUninitialized},
}

// canTransition reports whether from -> to is a legal edge.
func canTransition(from, to State) bool {
	if to == StateError {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ModelInfo describes the loaded model.
type ModelInfo struct {
	ID          string
	Path        string
	ContextSize int
	VocabSize   int
	Threads     int
	Accelerator bool
	SystemInfo  string
	LoadedAt    time.Time
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State        State
	CurrentModel *ModelInfo
	Err          string
	InFlight     bool
}

// Persona and Message are re-exported so callers need not import prompt.
type (
	Persona = prompt.Persona
	Message = prompt.Message
)

// ResultMetadata accompanies a completed generation.
type ResultMetadata struct {
	ModelID         string
	Threads         int
	InputTokens     int
	OutputTokens    int
	Duration        time.Duration
	TokensPerSecond float64
	TaskID          string
}

// GenerationResult is the sanitised reply plus metadata. Raw keeps the
// unsanitised engine output.
type GenerationResult struct {
	Content  string
	Raw      string
	Metadata ResultMetadata
}

// GenerationRequest is what an Inference task hands to the engine.
type GenerationRequest struct {
	Prompt  string
	Params  SamplingParams
	OnToken func(string) error
}
