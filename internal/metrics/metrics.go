// Package metrics defines the optional Prometheus instrumentation for
// the authorization pipeline: failover attempts, PIP/OH failures, and
// Authorize latency. New registers the instruments against a
// prometheus.Registerer when one is given; every recording method is a
// safe no-op on a nil *Collector, so pep.Client can unconditionally
// call them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the PEP client's Prometheus instruments.
type Collector struct {
	failoverAttempts prometheus.Counter
	pipFailures      prometheus.Counter
	ohFailures       prometheus.Counter
	authorizeLatency prometheus.Histogram
	registered       bool
}

// New constructs a Collector. If reg is non-nil, the instruments are
// registered against it immediately; a registration failure (e.g. a
// duplicate collector) is surfaced so callers can decide whether it is
// fatal.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		failoverAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pep", Name: "failover_attempts_total",
			Help: "Number of PDP endpoint attempts made during authorize calls.",
		}),
		pipFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pep", Name: "pip_failures_total",
			Help: "Number of PIP.Process calls that returned an error.",
		}),
		ohFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pep", Name: "oh_failures_total",
			Help: "Number of ObligationHandler.Process calls that returned an error.",
		}),
		authorizeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pep", Name: "authorize_duration_seconds",
			Help:    "Wall-clock duration of Authorize calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c.failoverAttempts); err != nil {
		return nil, err
	}
	if err := reg.Register(c.pipFailures); err != nil {
		return nil, err
	}
	if err := reg.Register(c.ohFailures); err != nil {
		return nil, err
	}
	if err := reg.Register(c.authorizeLatency); err != nil {
		return nil, err
	}
	c.registered = true
	return c, nil
}

// IncFailoverAttempt records one PDP endpoint attempt. Safe to call on
// a nil *Collector.
func (c *Collector) IncFailoverAttempt() {
	if c == nil {
		return
	}
	c.failoverAttempts.Inc()
}

// IncPIPFailure records one PIP.Process failure. Safe to call on a nil
// *Collector.
func (c *Collector) IncPIPFailure() {
	if c == nil {
		return
	}
	c.pipFailures.Inc()
}

// IncOHFailure records one ObligationHandler.Process failure. Safe to
// call on a nil *Collector.
func (c *Collector) IncOHFailure() {
	if c == nil {
		return
	}
	c.ohFailures.Inc()
}

// ObserveAuthorizeLatency records the wall-clock duration of a single
// Authorize call. Safe to call on a nil *Collector.
func (c *Collector) ObserveAuthorizeLatency(d time.Duration) {
	if c == nil {
		return
	}
	c.authorizeLatency.Observe(d.Seconds())
}
