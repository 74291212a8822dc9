package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics — метрики выполнения pipeline.
type Metrics struct {
	registry *prometheus.Registry

	// StepRuns — количество dispatched step runs по шагу и статусу.
	StepRuns *prometheus.CounterVec

	// StepDuration — длительность выполнения шага (от submit до
	// терминального статуса), секунды.
	StepDuration *prometheus.HistogramVec

	// PipelineRuns — количество выполнений pipeline по статусу.
	PipelineRuns *prometheus.CounterVec
}

// NewMetrics создаёт метрики на собственном Registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,

		StepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlpipe",
			Name:      "step_runs_total",
			Help:      "Dispatched step runs by step and terminal status.",
		}, []string{"step", "status"}),

		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mlpipe",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of a dispatched step run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14), // 1s .. ~2.3h
		}, []string{"step"}),

		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlpipe",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline executions by terminal status.",
		}, []string{"status"}),
	}

	registry.MustRegister(m.StepRuns, m.StepDuration, m.PipelineRuns)
	return m
}

// ObserveStep фиксирует завершение шага.
func (m *Metrics) ObserveStep(step, status string, duration time.Duration) {
	m.StepRuns.WithLabelValues(step, status).Inc()
	m.StepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// ObservePipeline фиксирует завершение pipeline.
func (m *Metrics) ObservePipeline(status string) {
	m.PipelineRuns.WithLabelValues(status).Inc()
}

// Handler возвращает HTTP handler для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push отправляет метрики в Pushgateway.
//
// Используется одноразовым CLI-запуском: процесс завершается сразу
// после pipeline, поэтому scrape невозможен.
func (m *Metrics) Push(gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(m.registry).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
