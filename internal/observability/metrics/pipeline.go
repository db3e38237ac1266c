package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amoghv/rollscan/internal/core/domain"
	"github.com/amoghv/rollscan/internal/core/ports"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	rollsTotal     *prometheus.CounterVec
	rollDuration   *prometheus.HistogramVec
	rollsInFlight  prometheus.Gauge
	pagesExtracted *prometheus.CounterVec
}

func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	rollsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollscan",
			Subsystem: "pipeline",
			Name:      "rolls_processed_total",
			Help:      "Total processed rolls by outcome.",
		},
		[]string{"status"},
	)
	rollDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rollscan",
			Subsystem: "pipeline",
			Name:      "roll_process_duration_seconds",
			Help:      "End-to-end roll processing duration in seconds by outcome.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"status"},
	)
	rollsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rollscan",
			Subsystem: "pipeline",
			Name:      "rolls_in_flight",
			Help:      "Number of rolls currently being processed.",
		},
	)
	pagesExtracted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollscan",
			Subsystem: "pipeline",
			Name:      "pages_extracted_total",
			Help:      "Total extracted pages by outcome.",
		},
		[]string{"status"},
	)

	registry.MustRegister(rollsTotal, rollDuration, rollsInFlight, pagesExtracted)

	return &PipelineMetrics{
		registry:       registry,
		rollsTotal:     rollsTotal,
		rollDuration:   rollDuration,
		rollsInFlight:  rollsInFlight,
		pagesExtracted: pagesExtracted,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartRoll() {
	m.rollsInFlight.Inc()
}

func (m *PipelineMetrics) FinishRoll(duration time.Duration, err error) {
	m.rollsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.rollsTotal.WithLabelValues(status).Inc()
	m.rollDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObservePages(succeeded, total int) {
	if total < succeeded {
		total = succeeded
	}
	m.pagesExtracted.WithLabelValues("success").Add(float64(succeeded))
	m.pagesExtracted.WithLabelValues("error").Add(float64(total - succeeded))
}

// InstrumentedProcessor wraps a RollProcessor with pipeline metrics so the
// core stays free of prometheus types.
type InstrumentedProcessor struct {
	next ports.RollProcessor
	m    *PipelineMetrics
}

func NewInstrumentedProcessor(next ports.RollProcessor, m *PipelineMetrics) *InstrumentedProcessor {
	return &InstrumentedProcessor{next: next, m: m}
}

func (p *InstrumentedProcessor) ProcessFile(ctx context.Context, path string, report ports.ProgressReporter) (*domain.Roll, error) {
	p.m.StartRoll()
	start := time.Now()

	roll, err := p.next.ProcessFile(ctx, path, report)

	p.m.FinishRoll(time.Since(start), err)
	if roll != nil {
		p.m.ObservePages(roll.PagesSucceeded, roll.PagesTotal)
	}
	return roll, err
}
