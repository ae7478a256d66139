package types

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	// New user message.
	// example: Summarise my last note.
	Content string `json:"content" example:"Summarise my last note."`
	// Optional persona; the server default is used when empty.
	Persona Persona `json:"persona"`
	// Prior turns, oldest first. Only the most recent turns reach the model.
	History []ChatMessage `json:"history,omitempty"`
	// If true, stream NDJSON token lines followed by a final summary line.
	// example: false
	Stream bool `json:"stream,omitempty" example:"false"`
}

// GenerationMetadata accompanies a completed reply.
type GenerationMetadata struct {
	// example: smollm2-360m-instruct-q8
	ModelID string `json:"model_id" example:"smollm2-360m-instruct-q8"`
	// example: 4
	Threads int `json:"threads" example:"4"`
	// example: 212
	InputTokens int `json:"input_tokens" example:"212"`
	// example: 48
	OutputTokens int `json:"output_tokens" example:"48"`
	// example: 2310
	DurationMs int64 `json:"duration_ms" example:"2310"`
	// example: 20.8
	TokensPerSecond float64 `json:"tokens_per_second" example:"20.8"`
	// Scheduler task that produced the reply.
	TaskID string `json:"task_id,omitempty"`
}

// ChatResponse is returned by POST /chat when not streaming, and as the final
// NDJSON line when streaming.
type ChatResponse struct {
	// Sanitised assistant reply.
	Content string `json:"content"`
	// Always true on the final streamed line.
	Done     bool               `json:"done,omitempty"`
	Metadata GenerationMetadata `json:"metadata"`
}

// TokenLine is one streamed NDJSON token.
type TokenLine struct {
	Token string `json:"token"`
}

// CancelResponse is returned by POST /chat/cancel and by POST /chat when the
// generation was cancelled.
type CancelResponse struct {
	// example: true
	Cancelled bool `json:"cancelled" example:"true"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not ready
	Error string `json:"error" example:"model not ready"`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}

// SchedulerStatus summarises the task scheduler.
type SchedulerStatus struct {
	// example: 4
	Workers int `json:"workers" example:"4"`
	// example: 1
	BusyWorkers int `json:"busy_workers" example:"1"`
	// example: 0
	Pending int `json:"pending" example:"0"`
	// example: 1
	Active int `json:"active" example:"1"`
	// example: 12
	Submitted int64 `json:"submitted" example:"12"`
	// example: 11
	Completed int64 `json:"completed" example:"11"`
	// example: 0
	Failed int64 `json:"failed" example:"0"`
	// example: 1
	Cancelled int64 `json:"cancelled" example:"1"`
	// example: 0
	TimedOut int64 `json:"timed_out" example:"0"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Lifecycle state: uninitialized, extracting_model, loading, ready, generating or error.
	// example: ready
	State string `json:"state" example:"ready"`
	// Whether a generation is currently running.
	// example: false
	InFlight bool `json:"in_flight" example:"false"`
	// Last lifecycle error, if any.
	LastError string `json:"last_error,omitempty"`
	// Loaded model details; omitted before the first successful load.
	Model *ModelDetails `json:"model,omitempty"`
	// Scheduler counters.
	Scheduler SchedulerStatus `json:"scheduler"`
	// Uptime of the manager in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Completed model loads.
	// example: 1
	LoadsTotal uint64 `json:"loads_total" example:"1"`
	// Completed generations.
	// example: 7
	GenerationsTotal uint64 `json:"generations_total" example:"7"`
}

// TelemetryResponse is returned by GET /telemetry.
type TelemetryResponse struct {
	// False until the first generation completes.
	// example: true
	HasData bool `json:"has_data" example:"true"`
	// example: 7
	Count int `json:"count" example:"7"`
	// example: 1830.5
	MeanDurationMs float64 `json:"mean_duration_ms" example:"1830.5"`
	// example: 950
	MinDurationMs float64 `json:"min_duration_ms" example:"950"`
	// example: 3120
	MaxDurationMs float64 `json:"max_duration_ms" example:"3120"`
	// example: 18.2
	MeanTokensPerSec float64 `json:"mean_tokens_per_second" example:"18.2"`
}
