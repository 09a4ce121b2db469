// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/jeranaias/casechat/internal/classify"
	"github.com/jeranaias/casechat/internal/document"
	"github.com/jeranaias/casechat/internal/logging"
	"github.com/jeranaias/casechat/internal/transport"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Endpoint labels used in logs and metrics.
const (
	EndpointHealth = "health"
	EndpointUpload = "upload"
	EndpointChat   = "chat"
)

// Config holds the service contract settings.
type Config struct {
	// BaseURL of the analysis service (default: http://localhost:5000)
	BaseURL string

	HealthPath string
	UploadPath string
	ChatPath   string

	// FileField is the multipart field carrying the document (default: "file")
	FileField string

	// ProbeTimeout bounds the liveness probe (default: 2s)
	ProbeTimeout time.Duration

	// UploadTimeout bounds document submission (default: 30s)
	UploadTimeout time.Duration

	// ChatTimeout bounds a question. Zero uses the transport default.
	ChatTimeout time.Duration
}

// DefaultConfig returns the default service contract.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "http://localhost:5000",
		HealthPath:    "/api/health",
		UploadPath:    "/api/upload",
		ChatPath:      "/api/chat",
		FileField:     "file",
		ProbeTimeout:  2 * time.Second,
		UploadTimeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client speaks the analysis service contract over a transport.Client.
// Every error it returns is a *classify.Error.
type Client struct {
	config     *Config
	transport  *transport.Client
	classifier *classify.Classifier
	logger     *logging.Logger
}

// NewClient creates a service client. Zero fields in cfg take defaults.
func NewClient(cfg *Config, tc *transport.Client, classifier *classify.Classifier, logger *logging.Logger) *Client {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.HealthPath == "" {
		c.HealthPath = defaults.HealthPath
	}
	if c.UploadPath == "" {
		c.UploadPath = defaults.UploadPath
	}
	if c.ChatPath == "" {
		c.ChatPath = defaults.ChatPath
	}
	if c.FileField == "" {
		c.FileField = defaults.FileField
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = defaults.ProbeTimeout
	}
	if c.UploadTimeout == 0 {
		c.UploadTimeout = defaults.UploadTimeout
	}
	if tc == nil {
		tc = transport.NewClient(nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if classifier == nil {
		classifier = classify.New(c.BaseURL, "", logger)
	}

	return &Client{
		config:     &c,
		transport:  tc,
		classifier: classifier,
		logger:     logger,
	}
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.config.BaseURL + path
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health checks that the service answers its health endpoint with a 2xx
// within the probe timeout. The body is ignored.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.transport.Do(ctx, &transport.Request{
		Endpoint: EndpointHealth,
		Method:   http.MethodGet,
		URL:      c.url(c.config.HealthPath),
		Timeout:  c.config.ProbeTimeout,
	})
	if err != nil {
		return c.classifier.Classify(err)
	}
	return nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// UploadResult is a validated upload response.
type UploadResult struct {
	CaseID   string
	Summary  string
	Filename string
}

// Upload submits doc as a single-file multipart body.
func (c *Client) Upload(ctx context.Context, doc *document.Document) (*UploadResult, error) {
	if doc == nil {
		return nil, classify.Validation("no file selected")
	}

	body, contentType, err := encodeMultipart(c.config.FileField, doc)
	if err != nil {
		return nil, c.classifier.Classify(&transport.Error{
			Kind:     transport.KindRequest,
			Endpoint: EndpointUpload,
			Method:   http.MethodPost,
			URL:      c.url(c.config.UploadPath),
			Cause:    err,
		})
	}

	resp, err := c.transport.Do(ctx, &transport.Request{
		Endpoint:    EndpointUpload,
		Method:      http.MethodPost,
		URL:         c.url(c.config.UploadPath),
		Body:        body,
		ContentType: contentType,
		Header:      http.Header{"Accept": []string{"application/json"}},
		Timeout:     c.config.UploadTimeout,
	})
	if err != nil {
		return nil, c.classifier.Classify(err)
	}

	result, err := DecodeUploadResponse(resp.Body)
	if err != nil {
		c.logger.Warn("upload response rejected",
			"detail", err.Error(),
			"status", resp.StatusCode,
			"attempts", resp.Attempts,
		)
		return nil, err
	}

	c.logger.Info("document uploaded",
		"case_id", result.CaseID,
		"filename", result.Filename,
		"bytes", doc.Size(),
	)
	return result, nil
}

// encodeMultipart builds a body with one file part. The part header is set
// by hand so the declared media type goes on the wire.
func encodeMultipart(field string, doc *document.Document) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	mediaType := doc.MediaType
	if mediaType == "" {
		mediaType = document.DefaultMediaType
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(doc.Name)))
	h.Set("Content-Type", mediaType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// =============================================================================
// CHAT
// =============================================================================

type chatRequest struct {
	Message string `json:"message"`
	CaseID  string `json:"case_id"`
}

// Chat asks one question about the document identified by caseID.
func (c *Client) Chat(ctx context.Context, caseID, message string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: message, CaseID: caseID})
	if err != nil {
		return "", c.classifier.Classify(&transport.Error{
			Kind:     transport.KindRequest,
			Endpoint: EndpointChat,
			Method:   http.MethodPost,
			URL:      c.url(c.config.ChatPath),
			Cause:    err,
		})
	}

	resp, err := c.transport.Do(ctx, &transport.Request{
		Endpoint:    EndpointChat,
		Method:      http.MethodPost,
		URL:         c.url(c.config.ChatPath),
		Body:        payload,
		ContentType: "application/json",
		Header:      http.Header{"Accept": []string{"application/json"}},
		Timeout:     c.config.ChatTimeout,
	})
	if err != nil {
		return "", c.classifier.Classify(err)
	}

	reply, err := DecodeChatResponse(resp.Body)
	if err != nil {
		c.logger.Warn("chat response rejected", "detail", err.Error(), "case_id", caseID)
		return "", err
	}
	return reply, nil
}
