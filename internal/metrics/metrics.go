// Package metrics считает загрузки relay для Prometheus.
package metrics

import (
	"context"
	"net/http"

	"imgrelay/internal/services"
	"imgrelay/pkg/apperrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "imgrelay"

// Outcome-метки для relay_uploads_total
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder - EventRecorder, который обновляет коллекторы
type Recorder struct {
	registry *prometheus.Registry

	Uploads         *prometheus.CounterVec
	UploadDuration  *prometheus.HistogramVec
	UploadBytes     *prometheus.HistogramVec
	Failures        *prometheus.CounterVec
	CleanupFailures prometheus.Counter
}

// NewRecorder регистрирует коллекторы в собственном реестре,
// плюс стандартные go_* и process_* метрики.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_uploads_total",
			Help:      "Relay uploads by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_upload_duration_seconds",
			Help:      "Time spent in the outbound upload call.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"provider"}),
		UploadBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_upload_bytes",
			Help:      "Size of decoded images sent upstream.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"provider"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_failures_total",
			Help:      "Failed relay requests by provider and error code.",
		}, []string{"provider", "code"}),
		CleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_scratch_cleanup_failures_total",
			Help:      "Scratch files that could not be removed.",
		}),
	}

	r.registry.MustRegister(
		r.Uploads,
		r.UploadDuration,
		r.UploadBytes,
		r.Failures,
		r.CleanupFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Record(_ context.Context, e services.RelayEvent) {
	switch e.Kind {
	case services.EventUploaded:
		r.Uploads.WithLabelValues(e.Provider, OutcomeSuccess).Inc()
		r.UploadDuration.WithLabelValues(e.Provider).Observe(e.Duration.Seconds())
		r.UploadBytes.WithLabelValues(e.Provider).Observe(float64(e.Size))
	case services.EventFailed:
		code := e.Code
		if code == "" {
			code = string(apperrors.CodeUnexpectedError)
		}
		r.Uploads.WithLabelValues(e.Provider, OutcomeFailure).Inc()
		r.Failures.WithLabelValues(e.Provider, code).Inc()
	case services.EventCleanupFailed:
		r.CleanupFailures.Inc()
	}
}

// Handler отдаёт метрики в формате Prometheus
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
