// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the citizen hub.
var (
	// Counters.
	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_points_awarded_total",
			Help: "Total Green Points awarded",
		},
		[]string{"activity_type"},
	)

	PointActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_point_actions_total",
			Help: "Total number of point-earning actions",
		},
		[]string{"activity_type"},
	)

	ChallengeCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_challenge_completions_total",
			Help: "Total challenge completion attempts",
		},
		[]string{"frequency", "status"},
	)

	WasteIdentificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_waste_identifications_total",
			Help: "Total waste identification lookups",
		},
		[]string{"result"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_logins_total",
			Help: "Total login attempts",
		},
		[]string{"status"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_registrations_total",
			Help: "Total registration attempts",
		},
		[]string{"status"},
	)

	ReportsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_reports_submitted_total",
			Help: "Total cleanliness reports submitted",
		},
		[]string{"category"},
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_badges_awarded_total",
			Help: "Total badges awarded",
		},
		[]string{"badge_name"},
	)

	CertificatesUnlockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swachhta_certificates_unlocked_total",
			Help: "Total users that crossed the certificate threshold",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swachhta_cache_requests_total",
			Help: "Total response cache lookups",
		},
		[]string{"key", "result"},
	)

	// Gauges.
	ActiveBadgeHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swachhta_active_badge_holders",
			Help: "Current number of users holding each badge",
		},
		[]string{"badge_name"},
	)

	// Histograms.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swachhta_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	PointsPerAction = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swachhta_points_per_action",
			Help:    "Points awarded per action",
			Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 to 100 points
		},
		[]string{"activity_type"},
	)
)

// RecordPointsAwarded records one point-earning action.
func RecordPointsAwarded(activityType string, points int) {
	PointActionsTotal.WithLabelValues(activityType).Inc()
	PointsAwardedTotal.WithLabelValues(activityType).Add(float64(points))
	PointsPerAction.WithLabelValues(activityType).Observe(float64(points))
}

// RecordChallengeCompletion records a completion attempt ("completed" or "duplicate").
func RecordChallengeCompletion(frequency, status string) {
	ChallengeCompletionsTotal.WithLabelValues(frequency, status).Inc()
}

// RecordWasteIdentification records a lookup ("matched" or "not_found").
func RecordWasteIdentification(result string) {
	WasteIdentificationsTotal.WithLabelValues(result).Inc()
}

// RecordLogin records a login attempt ("success" or "failure").
func RecordLogin(status string) {
	LoginsTotal.WithLabelValues(status).Inc()
}

// RecordRegistration records a registration attempt ("success", "duplicate" or "failure").
func RecordRegistration(status string) {
	RegistrationsTotal.WithLabelValues(status).Inc()
}

// RecordReportSubmitted records a cleanliness report.
func RecordReportSubmitted(category string) {
	ReportsSubmittedTotal.WithLabelValues(category).Inc()
}

// RecordBadgeAwarded records a badge award.
func RecordBadgeAwarded(badgeName string) {
	BadgesAwardedTotal.WithLabelValues(badgeName).Inc()
}

// SetActiveBadgeHolders sets the number of users holding a badge.
func SetActiveBadgeHolders(badgeName string, count int) {
	ActiveBadgeHolders.WithLabelValues(badgeName).Set(float64(count))
}

// RecordCertificateUnlocked records a user crossing the certificate threshold.
func RecordCertificateUnlocked() {
	CertificatesUnlockedTotal.Inc()
}

// RecordCacheHit records a cache hit for key.
func RecordCacheHit(key string) {
	CacheRequestsTotal.WithLabelValues(key, "hit").Inc()
}

// RecordCacheMiss records a cache miss for key.
func RecordCacheMiss(key string) {
	CacheRequestsTotal.WithLabelValues(key, "miss").Inc()
}

// ObserveHTTPRequest records the latency of a handled request.
func ObserveHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
