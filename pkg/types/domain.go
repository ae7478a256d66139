package types

// ChatMessage is one prior turn supplied by the host.
type ChatMessage struct {
	// Author of the turn: user, assistant or system.
	// example: user
	Role string `json:"role" example:"user"`
	// Text of the turn.
	// example: What's the weather like on Mars?
	Content string `json:"content" example:"What's the weather like on Mars?"`
}

// Persona shapes the assistant's system turn.
type Persona struct {
	// Display name the assistant answers as.
	// example: Nova
	Name string `json:"name,omitempty" example:"Nova"`
	// Free-form behaviour instructions.
	// example: Answer in one short paragraph.
	Instructions string `json:"instructions,omitempty" example:"Answer in one short paragraph."`
}

// ModelDetails describes the loaded model.
type ModelDetails struct {
	// Identifier of the bundled model.
	// example: smollm2-360m-instruct-q8
	ModelID string `json:"model_id" example:"smollm2-360m-instruct-q8"`
	// Writable path the model was extracted to.
	Path string `json:"path,omitempty"`
	// Context window in tokens.
	// example: 2048
	ContextSize int `json:"context_size" example:"2048"`
	// Vocabulary size.
	// example: 49152
	VocabSize int `json:"vocab_size" example:"49152"`
	// Threads used for generation.
	// example: 4
	Threads int `json:"threads" example:"4"`
	// Whether a hardware accelerator is in use.
	// example: false
	Accelerator bool `json:"accelerator" example:"false"`
	// Engine description.
	// example: Local LLM (SmolLM2-360M)
	SystemInfo string `json:"system_info,omitempty" example:"Local LLM (SmolLM2-360M)"`
}
