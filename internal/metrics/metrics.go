package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeParseFallback = "parse_fallback"
	OutcomeCallFallback  = "call_fallback"
	OutcomeShortCircuit  = "short_circuit"
)

// ChatMetrics exposes counters/histograms for the conversation pipeline.
type ChatMetrics struct {
	queriesTotal    *prometheus.CounterVec
	generationTotal *prometheus.CounterVec
	searchDuration  *prometheus.HistogramVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_chat",
			Name:      "queries_total",
			Help:      "Total routed chat queries by intent",
		}, []string{"intent"}),
		generationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osint_chat",
			Name:      "generation_total",
			Help:      "Text-generation operations by outcome",
		}, []string{"operation", "outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osint_chat",
			Name:      "search_duration_seconds",
			Help:      "Latency of username searches",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90},
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.queriesTotal, m.generationTotal, m.searchDuration)
	return m
}

func (m *ChatMetrics) ObserveQuery(intent string) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(intent).Inc()
}

func (m *ChatMetrics) ObserveGeneration(operation, outcome string) {
	if m == nil {
		return
	}
	m.generationTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *ChatMetrics) ObserveSearch(status string, seconds float64) {
	if m == nil {
		return
	}
	m.searchDuration.WithLabelValues(status).Observe(seconds)
}
