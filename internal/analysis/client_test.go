// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analysis

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/casechat/internal/classify"
	"github.com/jeranaias/casechat/internal/document"
	"github.com/jeranaias/casechat/internal/transport"
)

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	tc := transport.NewClient(nil).WithSleeper(noSleep)
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return NewClient(cfg, tc, classify.New(baseURL, "", nil), nil)
}

func TestUpload_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "f.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4 body", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary":"S","case_id":"C123","filename":"f.pdf"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Upload(context.Background(), document.New("f.pdf", "application/pdf", []byte("%PDF-1.4 body")))
	require.NoError(t, err)
	assert.Equal(t, "C123", result.CaseID)
	assert.Equal(t, "S", result.Summary)
	assert.Equal(t, "f.pdf", result.Filename)
}

func TestUpload_FilenameWithQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, `my "case".txt`, header.Filename)
		_, _ = w.Write([]byte(`{"summary":"","case_id":"C1"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Upload(context.Background(), document.New(`my "case".txt`, "text/plain", []byte("hi")))
	require.NoError(t, err)
	assert.Equal(t, "", result.Filename)
}

func TestUpload_MalformedResponses(t *testing.T) {
	bodies := []string{
		`{}`,
		`null`,
		`[]`,
		`"ok"`,
		``,
		`not json`,
		`{"summary":"S"}`,
		`{"summary":"S","case_id":""}`,
		`{"summary":"S","case_id":null}`,
		`{"summary":"S","case_id":42}`,
		`{"case_id":"C1"}`,
		`{"summary":null,"case_id":"C1"}`,
		`{"summary":"S","case_id":"C1","filename":7}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			_, err := client.Upload(context.Background(), document.New("f.pdf", "", []byte("x")))
			require.Error(t, err)
			assert.True(t, classify.Is(err, classify.KindMalformedResponse), "got %v", err)
		})
	}
}

func TestUpload_ServiceReportedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unsupported file type"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Upload(context.Background(), document.New("f.exe", "", []byte("MZ")))
	require.Error(t, err)
	assert.True(t, classify.Is(err, classify.KindServiceReported))
	assert.Equal(t, "Unsupported file type", err.Error())
}

func TestUpload_NilDocument(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	_, err := client.Upload(context.Background(), nil)
	assert.True(t, classify.Is(err, classify.KindValidation))
}

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is the verdict?", req["message"])
		assert.Equal(t, "C123", req["case_id"])

		_, _ = w.Write([]byte(`{"reply":"Pending"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	reply, err := client.Chat(context.Background(), "C123", "What is the verdict?")
	require.NoError(t, err)
	assert.Equal(t, "Pending", reply)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind classify.Kind
		wantMsg  string
	}{
		{"service error", http.StatusNotFound, `{"error":"Document not found"}`, classify.KindServiceReported, "Document not found"},
		{"missing reply", http.StatusOK, `{"answer":"x"}`, classify.KindMalformedResponse, ""},
		{"reply not string", http.StatusOK, `{"reply":["x"]}`, classify.KindMalformedResponse, ""},
		{"gateway", http.StatusServiceUnavailable, ``, classify.KindServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			_, err := client.Chat(context.Background(), "C1", "q")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, classify.KindOf(err))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestHealthProber(t *testing.T) {
	t.Run("2xx is live", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/health", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		prober := NewHealthProber(newTestClient(t, server.URL), nil)
		assert.True(t, prober.Probe(context.Background()))
	})

	t.Run("non-2xx is not live", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		prober := NewHealthProber(newTestClient(t, server.URL), nil)
		assert.False(t, prober.Probe(context.Background()))
	})

	t.Run("slow service is not live", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client := newTestClient(t, server.URL)
		client.config.ProbeTimeout = 50 * time.Millisecond
		prober := NewHealthProber(client, nil)
		assert.False(t, prober.Probe(context.Background()))
	})

	t.Run("refused is not live and retried", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		require.NoError(t, ln.Close())

		var retries int32
		tc := transport.NewClient(nil).WithSleeper(func(ctx context.Context, d time.Duration) error {
			atomic.AddInt32(&retries, 1)
			return nil
		})
		client := NewClient(&Config{BaseURL: "http://" + addr}, tc, nil, nil)
		prober := NewHealthProber(client, nil)

		assert.False(t, prober.Probe(context.Background()))
		assert.Equal(t, int32(3), atomic.LoadInt32(&retries))
	})

	t.Run("nil client does not panic", func(t *testing.T) {
		prober := NewHealthProber(nil, nil)
		assert.False(t, prober.Probe(context.Background()))
	})
}
