// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleeper captures backoff delays without waiting.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

// refusedAddr returns a loopback address nothing is listening on.
func refusedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func refusedErr() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
}

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(nil)
	resp, err := client.Do(context.Background(), &Request{Endpoint: "health", URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, 1, resp.Attempts)
}

func TestDo_ConnRefusedRetriesWithLinearBackoff(t *testing.T) {
	sleeper := &recordingSleeper{}
	client := NewClient(nil).WithSleeper(sleeper.sleep)

	_, err := client.Do(context.Background(), &Request{
		Endpoint: "health",
		Method:   http.MethodGet,
		URL:      "http://" + refusedAddr(t) + "/api/health",
	})
	require.Error(t, err)

	te, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindConnRefused, te.Kind)
	assert.Equal(t, 4, te.Attempts)
	assert.False(t, te.ResponseReceived())
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 3 * time.Second}, sleeper.delays)
}

func TestDo_ConnRefusedRetriesNonIdempotent(t *testing.T) {
	var calls int32
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return nil, refusedErr()
		}
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body))
		return okResponse("done"), nil
	})}

	sleeper := &recordingSleeper{}
	client := NewClient(nil).WithHTTPClient(hc).WithSleeper(sleeper.sleep)

	resp, err := client.Do(context.Background(), &Request{
		Endpoint: "upload",
		Method:   http.MethodPost,
		URL:      "http://service.invalid/api/upload",
		Body:     []byte("payload"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, sleeper.delays)
}

func TestDo_NoResponseRetriedForEveryMethod(t *testing.T) {
	tests := []struct {
		method    string
		wantCalls int32
	}{
		{http.MethodGet, 4},
		{http.MethodPost, 4},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			var calls int32
			hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				atomic.AddInt32(&calls, 1)
				return nil, io.ErrUnexpectedEOF
			})}
			sleeper := &recordingSleeper{}
			client := NewClient(nil).WithHTTPClient(hc).WithSleeper(sleeper.sleep)

			_, err := client.Do(context.Background(), &Request{
				Method: tt.method,
				URL:    "http://service.invalid/x",
			})
			te, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, KindNoResponse, te.Kind)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestDo_UploadRetriedAfterDroppedConnection(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			hj, ok := w.(http.Hijacker)
			if !assert.True(t, ok) {
				return
			}
			conn, _, err := hj.Hijack()
			if assert.NoError(t, err) {
				conn.Close()
			}
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sleeper := &recordingSleeper{}
	client := NewClient(nil).WithSleeper(sleeper.sleep)

	resp, err := client.Do(context.Background(), &Request{
		Endpoint: "upload",
		Method:   http.MethodPost,
		URL:      server.URL,
		Body:     []byte("payload"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{time.Second}, sleeper.delays)
}

func TestDo_StatusNotRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	client := NewClient(nil).WithSleeper((&recordingSleeper{}).sleep)
	_, err := client.Do(context.Background(), &Request{Method: http.MethodPost, URL: server.URL})

	te, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindStatus, te.Kind)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, `{"error":"boom"}`, string(te.Body))
	assert.True(t, te.ResponseReceived())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestDo_PerAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(nil).WithSleeper((&recordingSleeper{}).sleep)
	_, err := client.Do(context.Background(), &Request{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	assert.True(t, IsTimeout(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestDo_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(nil).WithSleeper(func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	})

	_, err := client.Do(ctx, &Request{URL: "http://" + refusedAddr(t)})
	te, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindCanceled, te.Kind)
	assert.Equal(t, 1, te.Attempts)
}

func TestDo_OriginAndContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "http://localhost:3000", r.Header.Get("Origin"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Origin = "http://localhost:3000"
	client := NewClient(cfg)

	_, err := client.Do(context.Background(), &Request{
		Method:      http.MethodPost,
		URL:         server.URL,
		Body:        []byte(`{}`),
		ContentType: "application/json",
		Header:      http.Header{"X-Test": []string{"yes"}},
	})
	require.NoError(t, err)
}

func TestDo_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 100))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MaxResponseSize = 10
	client := NewClient(cfg)

	_, err := client.Do(context.Background(), &Request{URL: server.URL})
	te, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindBody, te.Kind)
	assert.True(t, te.ResponseReceived())
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(&Config{})
	cfg := client.Config()
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultBackoffStep, cfg.BackoffStep)
	assert.Nil(t, client.limiter)

	limited := NewClient(&Config{RateLimit: 5})
	assert.NotNil(t, limited.limiter)

	noRetry := NewClient(&Config{MaxRetries: -1})
	assert.Equal(t, 0, noRetry.Config().MaxRetries)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "http://host/api/chat", redactURL("http://user:pw@host/api/chat?token=x"))
}
