package manager

import (
	"context"

	"localmind/internal/prompt"
	"localmind/pkg/types"
)

// Chat adapts SendMessage/SendMessageStream to the API types. A nil onToken
// runs a non-streaming generation.
func (m *Manager) Chat(ctx context.Context, req types.ChatRequest, onToken func(string) error) (types.ChatResponse, error) {
	persona := Persona{Name: req.Persona.Name, Instructions: req.Persona.Instructions}
	history := make([]Message, 0, len(req.History))
	for _, h := range req.History {
		history = append(history, Message{Role: prompt.Role(h.Role), Content: h.Content})
	}
	var (
		res GenerationResult
		err error
	)
	if onToken != nil {
		res, err = m.SendMessageStream(ctx, req.Content, persona, history, onToken)
	} else {
		res, err = m.SendMessage(ctx, req.Content, persona, history)
	}
	if err != nil {
		return types.ChatResponse{}, err
	}
	md := res.Metadata
	return types.ChatResponse{
		Content: res.Content,
		Done:    true,
		Metadata: types.GenerationMetadata{
			ModelID:         md.ModelID,
			Threads:         md.Threads,
			InputTokens:     md.InputTokens,
			OutputTokens:    md.OutputTokens,
			DurationMs:      md.Duration.Milliseconds(),
			TokensPerSecond: md.TokensPerSecond,
			TaskID:          md.TaskID,
		},
	}, nil
}

// Telemetry summarises the recorder for GET /telemetry.
func (m *Manager) Telemetry() types.TelemetryResponse {
	agg, ok := m.recorder.Aggregate()
	if !ok {
		return types.TelemetryResponse{}
	}
	return types.TelemetryResponse{
		HasData:          true,
		Count:            agg.Count,
		MeanDurationMs:   agg.MeanDurationMs,
		MinDurationMs:    agg.MinDurationMs,
		MaxDurationMs:    agg.MaxDurationMs,
		MeanTokensPerSec: agg.MeanTokensPerSec,
	}
}
