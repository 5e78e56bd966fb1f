package telemetry

import (
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/prometheus/client_golang/prometheus"

	"multiparty-params/internal/ports"
	"multiparty-params/internal/types"
)

const metricsNamespace = "multiparty_params"

// Metrics collects resolution metrics in a private Prometheus registry.
// When a textfile path is configured, Flush writes the registry in the
// node-exporter textfile format.
type Metrics struct {
	textfile string
	registry *prometheus.Registry

	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	parties     prometheus.Histogram
	findings    *prometheus.CounterVec
}

func NewMetrics(textfile string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		textfile: strings.TrimSpace(textfile),
		registry: registry,
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "resolutions_total",
				Help:      "Total number of job resolutions by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "resolution_duration_seconds",
				Help:      "Duration of job resolutions in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"outcome"},
		),
		parties: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "resolution_parties",
				Help:      "Number of parties resolved per job",
				Buckets:   prometheus.LinearBuckets(1, 2, 8),
			},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics by stage, code and severity",
			},
			[]string{"stage", "code", "severity"},
		),
	}
	registry.MustRegister(m.resolutions, m.duration, m.parties, m.findings)
	return m
}

func (m *Metrics) ObserveResolution(result types.ResolutionResult, elapsed time.Duration) {
	outcome := "valid"
	if !result.Valid {
		outcome = "invalid"
	}
	m.resolutions.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	m.parties.Observe(float64(len(result.Parties)))
	for _, diag := range result.Diagnostics {
		m.findings.WithLabelValues(string(diag.Stage), string(diag.Code), string(diag.Severity)).Inc()
	}
}

// Flush writes the registry to the configured textfile. Without a path it
// does nothing.
func (m *Metrics) Flush() error {
	if m.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.textfile, m.registry); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write metrics file").
			WithCause(err)
	}
	return nil
}

// Gatherer exposes the registry for tests and embedding servers.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

var _ ports.MetricsPort = (*Metrics)(nil)
