package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LedgerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crediario",
		Name:      "ledger_calls_total",
		Help:      "Calls to the remote ledger backend by operation and HTTP status.",
	}, []string{"operation", "status"})

	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crediario",
		Name:      "ai_chat_requests_total",
		Help:      "AI chat requests by outcome (cached, model, degraded).",
	}, []string{"outcome"})

	ExecutedActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crediario",
		Name:      "ai_actions_total",
		Help:      "Ledger mutations triggered from chat messages by action and result.",
	}, []string{"action", "result"})

	ModelLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "crediario",
		Name:      "ai_model_latency_seconds",
		Help:      "Latency of language model completions.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	})
)

// ObserveLedgerCall counts one backend call. status 0 means the request never
// produced a response.
func ObserveLedgerCall(operation string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	LedgerCalls.WithLabelValues(operation, label).Inc()
}
