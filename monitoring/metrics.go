package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_tickets_evaluated_total",
			Help: "Tickets evaluated by the recommendation job",
		},
		[]string{"event_id"},
	)

	recommendationsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_recommendations_total",
			Help: "Price recommendations produced, by direction",
		},
		[]string{"event_id", "direction"},
	)

	ticketSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_ticket_skips_total",
			Help: "Tickets skipped by the recommendation job, by reason",
		},
		[]string{"reason"},
	)

	escalationWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalation_writes_total",
			Help: "Escalation insert attempts",
		},
		[]string{"priority", "status"},
	)

	jobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_job_duration_seconds",
			Help:    "Duration of recommendation job runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	feedSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "escalation_feed_notifications",
			Help: "Notifications currently held by an organizer feed",
		},
		[]string{"owner_id"},
	)

	feedReconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalation_feed_reconnects_total",
			Help: "Realtime channel reconnections per organizer feed",
		},
		[]string{"owner_id"},
	)
)

// Monitor records pricing-job and feed metrics. A nil Monitor is a no-op so
// unit tests can leave it out.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) TrackTicketEvaluated(eventID string) {
	if m == nil {
		return
	}
	ticketsEvaluated.WithLabelValues(eventID).Inc()
}

func (m *Monitor) TrackRecommendation(eventID, direction string) {
	if m == nil {
		return
	}
	recommendationsWritten.WithLabelValues(eventID, direction).Inc()
}

func (m *Monitor) TrackSkip(reason string) {
	if m == nil {
		return
	}
	ticketSkips.WithLabelValues(reason).Inc()
}

func (m *Monitor) TrackEscalationWrite(priority, status string) {
	if m == nil {
		return
	}
	escalationWrites.WithLabelValues(priority, status).Inc()
}

func (m *Monitor) ObserveJobDuration(d time.Duration) {
	if m == nil {
		return
	}
	jobDuration.Observe(d.Seconds())
}

func (m *Monitor) SetFeedSize(ownerID string, size int) {
	if m == nil {
		return
	}
	feedSize.WithLabelValues(ownerID).Set(float64(size))
}

func (m *Monitor) TrackFeedReconnect(ownerID string) {
	if m == nil {
		return
	}
	feedReconnects.WithLabelValues(ownerID).Inc()
}
