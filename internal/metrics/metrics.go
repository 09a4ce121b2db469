// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics records client-side call metrics for casechat.
//
// All methods are safe to call on a nil *Metrics, so components can be
// constructed without a registry in tests.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeranaias/casechat/internal/logging"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	httpAttempts *prometheus.CounterVec
	httpRetries  *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	uploads      *prometheus.CounterVec
	inquiries    *prometheus.CounterVec
}

// New registers the casechat collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		httpAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casechat_http_attempts_total",
			Help: "HTTP attempts against the analysis service, labelled by endpoint and result.",
		}, []string{"endpoint", "result"}),
		httpRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casechat_http_retries_total",
			Help: "Retries issued after a connection failure.",
		}, []string{"endpoint"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "casechat_http_duration_seconds",
			Help:    "Latency of single HTTP attempts.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
		}, []string{"endpoint"}),
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casechat_uploads_total",
			Help: "Completed upload attempts by result.",
		}, []string{"result"}),
		inquiries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casechat_inquiries_total",
			Help: "Completed questions by result.",
		}, []string{"result"}),
	}
}

// ObserveAttempt records one HTTP attempt.
func (m *Metrics) ObserveAttempt(endpoint string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpAttempts.WithLabelValues(endpoint, result(ok)).Inc()
	m.httpDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveRetry records that a retry is about to be issued.
func (m *Metrics) ObserveRetry(endpoint string) {
	if m == nil {
		return
	}
	m.httpRetries.WithLabelValues(endpoint).Inc()
}

// ObserveUpload records a finished upload attempt.
func (m *Metrics) ObserveUpload(ok bool) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result(ok)).Inc()
}

// ObserveInquiry records a finished question.
func (m *Metrics) ObserveInquiry(ok bool) {
	if m == nil {
		return
	}
	m.inquiries.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve runs a /metrics endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
