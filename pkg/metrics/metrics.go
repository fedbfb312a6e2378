// Package metrics collects credential-flow outcomes with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the credential service and breach checkers report to.
type Recorder interface {
	RecordSignup(outcome string)
	RecordLogin(outcome string)
	RecordBreachCheck(result string, d time.Duration)
}

// Breach check results.
const (
	BreachClean = "clean"
	BreachFound = "breached"
	BreachError = "error"
)

// Collector is the Prometheus Recorder.
type Collector struct {
	signups       *prometheus.CounterVec
	logins        *prometheus.CounterVec
	breachChecks  *prometheus.CounterVec
	breachLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_signup_total",
			Help: "Signup attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Credential validations by outcome.",
		}, []string{"outcome"}),
		breachChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_breach_check_total",
			Help: "Breached-password lookups by result.",
		}, []string{"result"}),
		breachLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auth_breach_check_duration_seconds",
			Help:    "Breached-password lookup latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signups,
		c.logins,
		c.breachChecks,
		c.breachLatency,
	)

	return c
}

func (c *Collector) RecordSignup(outcome string) {
	c.signups.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordBreachCheck(result string, d time.Duration) {
	c.breachChecks.WithLabelValues(result).Inc()
	c.breachLatency.Observe(d.Seconds())
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordSignup(string)                     {}
func (Nop) RecordLogin(string)                      {}
func (Nop) RecordBreachCheck(string, time.Duration) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
