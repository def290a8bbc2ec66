// Package metrics holds the Prometheus collectors for the recommendation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	responseShapes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodrec_response_shapes_total",
		Help: "Prediction responses by recognised shape",
	}, []string{"shape"})

	recommendationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodrec_recommendation_requests_total",
		Help: "Recommendation requests by outcome",
	}, []string{"outcome"}) // outcome=success|session_error|remote_error

	sessionsEstablished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodrec_sessions_established_total",
		Help: "Total number of sessions established against the inference endpoint",
	})

	sessionInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodrec_session_invalidations_total",
		Help: "Total number of cached session invalidations",
	})

	testCaseRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodrec_test_case_runs_total",
		Help: "Built-in test case runs by case and outcome",
	}, []string{"case", "outcome"})
)

// RecordResponseShape counts a normalised response.
func RecordResponseShape(shape string) {
	responseShapes.WithLabelValues(shape).Inc()
}

// RecordRecommendation counts a pipeline outcome.
func RecordRecommendation(outcome string) {
	recommendationRequests.WithLabelValues(outcome).Inc()
}

// IncSessionEstablished counts a new session.
func IncSessionEstablished() {
	sessionsEstablished.Inc()
}

// IncSessionInvalidated counts a dropped session.
func IncSessionInvalidated() {
	sessionInvalidations.Inc()
}

// RecordTestCase counts one test case run.
func RecordTestCase(id string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	testCaseRuns.WithLabelValues(id, outcome).Inc()
}
