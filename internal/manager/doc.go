// Package manager owns the lifecycle of the single bundled language model:
// extraction from the read-only asset store, loading into the inference
// engine, generation, cancellation and unload. It is structured into small
// files by concern:
//
//   - manager.go: core Manager type, getters, state transitions, Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: State and its edge table, ModelInfo, Snapshot, generation types.
//   - errors.go: error types and helpers (IsNotReady, IsPromptTooLong, ...).
//   - admission.go: readiness checks and the single in-flight generation slot.
//   - extract.go: chunked copy of the bundled model to the model directory.
//   - initialize.go: Initialize (extract, then load).
//   - inference.go: SendMessage, SendMessageStream and CancelGeneration.
//   - unload.go: Unload.
//   - sanity.go: CheckModelIntegrity and SanityCheck.
//   - status_report.go: Snapshot and Status reporting.
//   - events.go, eventpub_memory.go: lifecycle event publishers.
//
// Engines:
//
//   - In-process llama: go-llama.cpp, enabled with `-tags=llama`.
//     Files: engine_llama.go, llama_cgo.go (linker rpath hints).
//     A no-CGO stub is compiled when the tag is not set: engine_llama_stub.go.
//   - ReferenceEngine: pure Go, fixed reply; engine_reference.go.
//
// All engine access (load, unload, generate) is submitted to the scheduler
// under the shared inference/model-load ceiling, so the engine never sees two
// calls at once. Token counting is the exception and runs on the caller.
package manager
