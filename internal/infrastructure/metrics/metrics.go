package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// submissionsTotal counts starknet CLI submissions by verb and outcome.
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starkops",
			Subsystem: "cli",
			Name:      "submissions_total",
			Help:      "Total number of starknet CLI submissions by verb and outcome",
		},
		[]string{"verb", "outcome"},
	)

	// pollCyclesTotal counts individual tx_status poll cycles.
	pollCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "starkops",
			Subsystem: "poller",
			Name:      "cycles_total",
			Help:      "Total number of transaction status poll cycles",
		},
	)

	// settlementDuration tracks submission-to-settlement latency.
	settlementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "starkops",
			Subsystem: "poller",
			Name:      "settlement_duration_seconds",
			Help:      "Time from submission until the transaction settled",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s ~ ~68min
		},
	)
)

func init() {
	prometheus.MustRegister(submissionsTotal, pollCyclesTotal, settlementDuration)
}

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// RecordSubmission counts one CLI submission.
func RecordSubmission(verb, outcome string) {
	submissionsTotal.WithLabelValues(verb, outcome).Inc()
}

// RecordPollCycle counts one tx_status query.
func RecordPollCycle() {
	pollCyclesTotal.Inc()
}

// RecordSettlement records the latency between submission and settlement.
func RecordSettlement(d time.Duration) {
	settlementDuration.Observe(d.Seconds())
}

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
