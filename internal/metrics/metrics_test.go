package metrics

import (
	"testing"

	"remote-viewing/internal/viewing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var _ viewing.Observer = (*Metrics)(nil)

func TestMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SessionStarted()
	m.SessionStarted()
	m.GuessSubmitted()
	m.Rated()
	m.ImageUnavailable()
	m.SessionsSwept(viewing.SweepExpired, 3)
	m.SessionsSwept(viewing.SweepIncomplete, 0)
	m.SessionsSwept(viewing.SweepIncomplete, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.guessesSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ratings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imageFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsSwept.WithLabelValues(viewing.SweepExpired)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsSwept.WithLabelValues(viewing.SweepIncomplete)))

	count, err := testutil.GatherAndCount(reg, "rv_sessions_swept_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
