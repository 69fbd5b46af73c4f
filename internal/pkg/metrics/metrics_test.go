package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Turns.WithLabelValues("nearby-schools", "admission").Inc()
	m.Turns.WithLabelValues("nearby-schools", "admission").Inc()
	m.ParseTiers.WithLabelValues("repair").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Turns.WithLabelValues("nearby-schools", "admission")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseTiers.WithLabelValues("repair")))
}

func TestObserveCall(t *testing.T) {
	m := New()

	m.ObserveCall("llm", time.Now(), nil)
	m.ObserveCall("llm", time.Now(), errors.New("timeout"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.ExternalCalls))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveCall("tts", time.Now(), nil)
		m.ObserveTurn("scholarships", "default")
		m.ObserveTier("direct")
		m.ObserveTransition("NONE", "AWAITING_EMAIL")
		m.ObserveAdmission()
	})
}

func TestObserveHelpers(t *testing.T) {
	m := New()

	m.ObserveTransition("AWAITING_EMAIL", "AWAITING_CONFIRMATION")
	m.ObserveAdmission()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandoffTransitions.WithLabelValues("AWAITING_EMAIL", "AWAITING_CONFIRMATION")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdmissionsCreated))
}
