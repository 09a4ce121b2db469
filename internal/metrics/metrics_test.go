// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAttempt("upload", true, 20*time.Millisecond)
	m.ObserveAttempt("upload", false, 10*time.Millisecond)
	m.ObserveAttempt("upload", false, 10*time.Millisecond)
	m.ObserveRetry("upload")
	m.ObserveUpload(true)
	m.ObserveInquiry(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpAttempts.WithLabelValues("upload", ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpAttempts.WithLabelValues("upload", ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRetries.WithLabelValues("upload")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inquiries.WithLabelValues(ResultFailure)))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAttempt("health", true, time.Millisecond)
		m.ObserveRetry("health")
		m.ObserveUpload(false)
		m.ObserveInquiry(true)
	})
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveUpload(true)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "casechat_uploads_total")
}
