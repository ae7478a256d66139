package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "localmind",
			Subsystem: "inference",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of completed generations",
			Buckets:   []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	tokensPerSecond = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "localmind",
			Subsystem: "inference",
			Name:      "tokens_per_second",
			Help:      "Output token throughput of completed generations",
			Buckets:   []float64{1, 2, 5, 10, 15, 20, 30, 50, 100},
		},
	)

	samplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "localmind",
			Subsystem: "inference",
			Name:      "samples_total",
			Help:      "Generations recorded",
		},
	)

	outputTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "localmind",
			Subsystem: "inference",
			Name:      "output_tokens_total",
			Help:      "Tokens produced across all generations",
		},
	)
)

func init() {
	prometheus.MustRegister(generationDuration, tokensPerSecond, samplesTotal, outputTokensTotal)
}

func observe(s Sample) {
	samplesTotal.Inc()
	outputTokensTotal.Add(float64(s.OutputTokens))
	generationDuration.Observe(s.Duration.Seconds())
	tokensPerSecond.Observe(s.TokensPerSecond())
}
