//go:build !llama

package manager

// No-CGO stub compiled when the 'llama' build tag is not set. It refuses to
// load anything so production binaries never silently fake inference.

import "context"

var llamaBuilt = false

type llamaEngine struct{}

// NewLlamaEngine returns the in-process llama.cpp engine. In this build it is
// a stub whose Load reports the missing dependency.
func NewLlamaEngine() InferenceEngine { return llamaEngine{} }

func errLlamaNotBuilt() error {
	return ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (llamaEngine) Load(string, LoadOptions) error { return errLlamaNotBuilt() }
func (llamaEngine) IsLoaded() bool                 { return false }
func (llamaEngine) Unload()                        {}

func (llamaEngine) Generate(ctx context.Context, _ string, _ SamplingParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", errLlamaNotBuilt()
}

func (llamaEngine) TokenCount(text string) int { return approxTokens(text) }
func (llamaEngine) ContextSize() int           { return 0 }
func (llamaEngine) VocabSize() int             { return 0 }
func (llamaEngine) HasAccelerator() bool       { return false }
func (llamaEngine) LastError() string          { return errLlamaNotBuilt().Error() }
