package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RecommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_http_latency_seconds",
		Help:    "Latency of the recommendations endpoint",
		Buckets: prometheus.DefBuckets,
	})

	RecommendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_http_total",
		Help: "Recommendation responses by recommendation type",
	}, []string{"type"})

	RecommendRateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_rate_limited_total",
		Help: "Recommendation requests rejected by the per-user rate limit",
	})
)

func Init() {
	prometheus.MustRegister(RecommendDuration, RecommendTotal, RecommendRateLimited)
}
