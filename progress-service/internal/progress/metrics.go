package progress

import "github.com/prometheus/client_golang/prometheus"

var (
	leaderboardBuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "progress_service",
		Subsystem: "leaderboard",
		Name:      "builds_total",
		Help:      "Leaderboard builds labeled by outcome.",
	}, []string{"outcome"})

	leaderboardBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "progress_service",
		Subsystem: "leaderboard",
		Name:      "build_duration_seconds",
		Help:      "Time spent fetching histories and ranking participants.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	leaderboardParticipants = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "progress_service",
		Subsystem: "leaderboard",
		Name:      "participants",
		Help:      "Participants ranked by the most recent successful build.",
	})
)

func init() {
	prometheus.MustRegister(leaderboardBuilds, leaderboardBuildSeconds, leaderboardParticipants)
}
