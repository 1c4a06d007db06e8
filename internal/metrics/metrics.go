package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	votesTotal        *prometheus.CounterVec
	statsCacheTotal   *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polly",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the polling API.",
		}, []string{"method", "path", "status"})

		votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polly",
			Name:      "votes_total",
			Help:      "Vote submissions by outcome (accepted, rejected, retracted).",
		}, []string{"outcome"})

		statsCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polly",
			Name:      "stats_cache_total",
			Help:      "Poll statistics cache lookups by result.",
		}, []string{"result"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func IncVote(outcome string) {
	if votesTotal == nil {
		return
	}
	votesTotal.WithLabelValues(outcome).Inc()
}

func IncStatsCache(hit bool) {
	if statsCacheTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	statsCacheTotal.WithLabelValues(result).Inc()
}
