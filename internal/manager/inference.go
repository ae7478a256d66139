package manager

import (
	"context"
	"time"

	"localmind/internal/prompt"
	"localmind/internal/scheduler"
	"localmind/internal/telemetry"
)

type rawOutput struct {
	text     string
	duration time.Duration
}

// SendMessage generates a reply to content. It fails fast, before any work
// is scheduled, when the model is not Ready, when another generation is in
// flight or when the prompt does not fit the context window with the output
// budget reserved. Generation errors leave the model Ready.
func (m *Manager) SendMessage(ctx context.Context, content string, persona Persona, history []Message) (GenerationResult, error) {
	return m.generate(ctx, content, persona, history, nil)
}

// SendMessageStream is SendMessage with tokens delivered to onToken as they
// are produced. Engines without streaming support deliver the whole reply as
// a single token.
func (m *Manager) SendMessageStream(ctx context.Context, content string, persona Persona, history []Message, onToken func(string) error) (GenerationResult, error) {
	return m.generate(ctx, content, persona, history, onToken)
}

func (m *Manager) generate(ctx context.Context, content string, persona Persona, history []Message, onToken func(string) error) (GenerationResult, error) {
	if err := m.precheck(); err != nil {
		return GenerationResult{}, err
	}
	if persona == (Persona{}) {
		persona = m.cfg.Persona
	}
	req := GenerationRequest{
		Prompt:  prompt.Build(persona, history, content, prompt.WithHistoryTurns(m.cfg.HistoryTurns)),
		Params:  m.cfg.Sampling,
		OnToken: onToken,
	}

	info := m.ModelInfo()
	ctxSize := m.cfg.ContextSize
	threads := engineThreads(m.cfg.HardwareThreads)
	if info != nil {
		ctxSize, threads = info.ContextSize, info.Threads
	}
	inputTokens := m.engine.TokenCount(req.Prompt)
	if limit := ctxSize - m.cfg.ReservedOutputTokens; inputTokens > limit {
		return GenerationResult{}, &PromptTooLongError{Tokens: inputTokens, Limit: limit}
	}

	// high priority work is always queued, never run inline under m.mu
	task, release, err := m.beginGeneration(func() (*scheduler.Task, error) {
		return m.sched.Submit(scheduler.CategoryInference, scheduler.PriorityHigh,
			func(tctx context.Context) (any, error) { return m.runGeneration(tctx, req) },
			scheduler.WithTimeout(m.cfg.InferenceTimeout),
		)
	})
	if err != nil {
		return GenerationResult{}, err
	}
	defer release()
	m.publish(EventGenerationStart, map[string]any{"task_id": task.ID(), "input_tokens": inputTokens})

	out, err := scheduler.Await[rawOutput](ctx, task.Future())
	if err != nil {
		if ctx.Err() != nil {
			// caller gave up; stop the task so the engine frees up sooner
			m.sched.Cancel(task.ID())
		}
		if !IsCancelled(err) {
			m.log.Warn().Err(err).Str("event", EventGenerationFailed).Str("task", task.ID()).Msg("manager")
			m.publish(EventGenerationFailed, map[string]any{"task_id": task.ID(), "error": err.Error()})
		}
		return GenerationResult{}, err
	}

	outputTokens := m.engine.TokenCount(out.text)
	sample := telemetry.Sample{
		Timestamp:    time.Now(),
		Duration:     out.duration,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Threads:      threads,
	}
	m.recorder.Record(sample)
	m.generationsTotal.Add(1)

	res := GenerationResult{
		Content: prompt.Sanitize(out.text),
		Raw:     out.text,
		Metadata: ResultMetadata{
			ModelID:         m.cfg.ModelID,
			Threads:         threads,
			InputTokens:     inputTokens,
			OutputTokens:    outputTokens,
			Duration:        out.duration,
			TokensPerSecond: sample.TokensPerSecond(),
			TaskID:          task.ID(),
		},
	}
	m.log.Info().Str("event", EventGenerationDone).Str("task", task.ID()).Int("input_tokens", inputTokens).
		Int("output_tokens", outputTokens).Dur("duration", out.duration).Msg("manager")
	m.publish(EventGenerationDone, map[string]any{"task_id": task.ID(), "output_tokens": outputTokens, "duration_ms": out.duration.Milliseconds()})
	return res, nil
}

// runGeneration executes on a scheduler worker.
func (m *Manager) runGeneration(ctx context.Context, req GenerationRequest) (rawOutput, error) {
	start := time.Now()
	var (
		text string
		err  error
	)
	switch se, ok := m.engine.(StreamingEngine); {
	case req.OnToken != nil && ok:
		text, err = se.GenerateStream(ctx, req.Prompt, req.Params, req.OnToken)
	default:
		text, err = m.engine.Generate(ctx, req.Prompt, req.Params)
		if err == nil && req.OnToken != nil {
			err = req.OnToken(text)
		}
	}
	if err != nil {
		return rawOutput{}, err
	}
	return rawOutput{text: text, duration: time.Since(start)}, nil
}

// CancelGeneration cancels the running generation, if any. When accepted the
// in-flight flag is cleared and the model returns to Ready immediately; the
// engine slot is held by the scheduler until the native call returns.
func (m *Manager) CancelGeneration() bool {
	m.mu.RLock()
	id, release := m.genID, m.genRelease
	m.mu.RUnlock()
	if id == "" || !m.sched.Cancel(id) {
		return false
	}
	if release != nil {
		release()
	}
	m.log.Info().Str("event", EventGenerationCancel).Str("task", id).Msg("manager")
	m.publish(EventGenerationCancel, map[string]any{"task_id": id})
	return true
}
