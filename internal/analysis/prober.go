// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analysis

import (
	"context"
	"fmt"

	"github.com/jeranaias/casechat/internal/document"
	"github.com/jeranaias/casechat/internal/logging"
)

// =============================================================================
// INTERFACES
// =============================================================================

// Prober reports whether the service is reachable. It never fails.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Uploader submits a document.
type Uploader interface {
	Upload(ctx context.Context, doc *document.Document) (*UploadResult, error)
}

// Inquirer asks a question about an uploaded document.
type Inquirer interface {
	Chat(ctx context.Context, caseID, message string) (string, error)
}

// =============================================================================
// LIVENESS PROBER
// =============================================================================

// HealthProber is a Prober backed by the health endpoint.
type HealthProber struct {
	client *Client
	logger *logging.Logger
}

// NewHealthProber creates a prober for client.
func NewHealthProber(client *Client, logger *logging.Logger) *HealthProber {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HealthProber{client: client, logger: logger}
}

// Probe returns true only when the health endpoint answered 2xx in time.
// Failures are logged and resolve to false.
func (p *HealthProber) Probe(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("liveness probe panicked", "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	if err := p.client.Health(ctx); err != nil {
		p.logger.Warn("liveness probe failed",
			"service", p.client.BaseURL(),
			"error", err.Error(),
		)
		return false
	}
	p.logger.Debug("liveness probe ok", "service", p.client.BaseURL())
	return true
}

// Compile-time checks.
var (
	_ Prober   = (*HealthProber)(nil)
	_ Uploader = (*Client)(nil)
	_ Inquirer = (*Client)(nil)
)
