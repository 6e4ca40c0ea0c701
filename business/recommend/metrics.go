package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeServed     = "served"
	outcomeFailed     = "failed"
	outcomeEmpty      = "empty"
	outcomeIneligible = "ineligible"
)

var (
	StrategyAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_strategy_total",
			Help: "Ranking strategy attempts by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	CandidatePoolSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_candidate_pool_size",
			Help:    "Number of candidates scored per request, by strategy.",
			Buckets: []float64{0, 5, 10, 25, 50, 75, 100},
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(StrategyAttemptsTotal, CandidatePoolSize)
}
