package workshop

import "github.com/prometheus/client_golang/prometheus"

var (
	workshopsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workshop_service",
		Name:      "workshops_created_total",
		Help:      "Workshops created by recruiters.",
	})

	registrationChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workshop_service",
		Name:      "registration_changes_total",
		Help:      "Workshop registrations and unregistrations, labeled by change.",
	}, []string{"change"})

	reflectionsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workshop_service",
		Name:      "reflections_submitted_total",
		Help:      "Reflections submitted by learners.",
	})

	reviewsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workshop_service",
		Name:      "reviews_applied_total",
		Help:      "Reflection reviews, labeled by resulting status.",
	}, []string{"status"})

	eventPublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workshop_service",
		Name:      "event_publish_failures_total",
		Help:      "Domain events that could not be published, labeled by topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(workshopsCreated, registrationChanges, reflectionsSubmitted, reviewsApplied, eventPublishFailures)
}
