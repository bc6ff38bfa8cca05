package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports round lifecycle counts. It satisfies viewing.Observer.
type Metrics struct {
	sessionsStarted  prometheus.Counter
	guessesSubmitted prometheus.Counter
	ratings          prometheus.Counter
	imageFailures    prometheus.Counter
	sessionsSwept    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rv_sessions_started_total",
			Help: "Rounds created behind a fetched image",
		}),
		guessesSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rv_guesses_submitted_total",
			Help: "Guesses accepted",
		}),
		ratings: factory.NewCounter(prometheus.CounterOpts{
			Name: "rv_ratings_total",
			Help: "Ratings recorded, including re-ratings",
		}),
		imageFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rv_image_fetch_failures_total",
			Help: "Round starts aborted because no image could be fetched",
		}),
		sessionsSwept: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rv_sessions_swept_total",
			Help: "Rounds deleted by retention rules",
		}, []string{"reason"}),
	}
}

func (m *Metrics) SessionStarted() {
	m.sessionsStarted.Inc()
}

func (m *Metrics) GuessSubmitted() {
	m.guessesSubmitted.Inc()
}

func (m *Metrics) Rated() {
	m.ratings.Inc()
}

func (m *Metrics) ImageUnavailable() {
	m.imageFailures.Inc()
}

func (m *Metrics) SessionsSwept(reason string, count int64) {
	if count <= 0 {
		return
	}
	m.sessionsSwept.WithLabelValues(reason).Add(float64(count))
}
