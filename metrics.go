package fixauth

import (
	"sync/atomic"
)

// MetricID identifies one of the engine's counters.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful password checks.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins.
	MetricLoginFailure
	// MetricSecondFactorSuccess counts verified one-time codes.
	MetricSecondFactorSuccess
	// MetricSecondFactorFailure counts rejected one-time codes.
	MetricSecondFactorFailure
	// MetricSecondFactorRateLimited counts attempts shed by the limiter.
	MetricSecondFactorRateLimited
	// MetricRefreshSuccess counts successful token rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh tokens.
	MetricRefreshFailure
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeFailure counts rejected password changes.
	MetricPasswordChangeFailure
	// MetricPasswordReset counts completed forgot-password resets.
	MetricPasswordReset
	// MetricAdminCreated counts provisioned administrator accounts.
	MetricAdminCreated
	// MetricUserRegistered counts self-registered user accounts.
	MetricUserRegistered
	// MetricEmailDispatchFailure counts swallowed OTP-send failures.
	MetricEmailDispatchFailure

	metricIDCount
)

// Metrics holds the engine's atomic counters. When disabled, every
// operation is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the given counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns a deep copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
