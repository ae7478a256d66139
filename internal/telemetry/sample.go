package telemetry

import "time"

// Sample describes one completed generation. Samples are values and are
// never modified after recording.
type Sample struct {
	Timestamp    time.Time     `json:"timestamp"`
	Duration     time.Duration `json:"duration"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Threads      int           `json:"threads"`
}

// TokensPerSecond is output tokens over wall time; zero when no time elapsed.
func (s Sample) TokensPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.OutputTokens) / s.Duration.Seconds()
}
