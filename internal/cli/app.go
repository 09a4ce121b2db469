// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Builds the configured service stack behind a command.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeranaias/casechat/internal/analysis"
	"github.com/jeranaias/casechat/internal/classify"
	"github.com/jeranaias/casechat/internal/config"
	"github.com/jeranaias/casechat/internal/logging"
	"github.com/jeranaias/casechat/internal/metrics"
	"github.com/jeranaias/casechat/internal/session"
	"github.com/jeranaias/casechat/internal/transport"
)

// app is everything one command invocation needs.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	client   *analysis.Client
	session  *session.Session
	render   *renderer
}

// loadConfig loads configuration and applies command-line overrides.
func loadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		if err = config.LoadEnvFile(); err != nil {
			return nil, err
		}
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.ServiceURL != "" {
		cfg.Service.URL = strings.TrimSuffix(args.ServiceURL, "/")
	}
	if args.Verbose {
		cfg.Logging.Level = "debug"
	}
	if args.NoColor {
		cfg.UI.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newApp wires config, logging, metrics, transport, classifier, analysis
// client and session together.
func newApp(args Args, out io.Writer) (*app, error) {
	cfg, err := loadConfig(args)
	if err != nil {
		return nil, err
	}
	applyColorSetting(cfg.UI.NoColor)

	logger, err := logging.New(loggingOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostic log: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	tc := transport.NewClient(transportConfig(cfg)).
		WithLogger(logger).
		WithMetrics(m)
	classifier := classify.New(cfg.Service.URL, cfg.Service.Origin, logger)
	client := analysis.NewClient(analysisConfig(cfg), tc, classifier, logger)

	sess := session.New(session.Deps{
		Prober:          analysis.NewHealthProber(client, logger),
		Uploader:        client,
		Inquirer:        client,
		Classifier:      classifier,
		Logger:          logger,
		Metrics:         m,
		MaxDocumentSize: cfg.MaxDocumentBytes(),
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
		client:   client,
		session:  sess,
		render:   newRenderer(out, cfg, isTerminalWriter(out)),
	}, nil
}

// Close ends the session and flushes the diagnostic log.
func (a *app) Close() {
	a.session.Close()
	a.logger.Sync()
}

// =============================================================================
// CONFIG ADAPTERS
// =============================================================================

func transportConfig(cfg *config.Config) *transport.Config {
	retries := cfg.Transport.MaxRetries
	if retries == 0 {
		retries = -1
	}
	return &transport.Config{
		Timeout:         cfg.RequestTimeout(),
		MaxRetries:      retries,
		BackoffStep:     cfg.BackoffStep(),
		RateLimit:       cfg.Transport.RateLimit,
		RateBurst:       cfg.Transport.RateBurst,
		UserAgent:       "casechat/" + Version,
		Origin:          cfg.Service.Origin,
		MaxResponseSize: cfg.MaxResponseBytes(),
	}
}

func analysisConfig(cfg *config.Config) *analysis.Config {
	return &analysis.Config{
		BaseURL:       cfg.Service.URL,
		HealthPath:    cfg.Service.HealthPath,
		UploadPath:    cfg.Service.UploadPath,
		ChatPath:      cfg.Service.ChatPath,
		FileField:     cfg.Service.FileField,
		ProbeTimeout:  cfg.ProbeTimeout(),
		UploadTimeout: cfg.UploadTimeout(),
		ChatTimeout:   cfg.RequestTimeout(),
	}
}

func loggingOptions(cfg *config.Config) logging.Options {
	return logging.Options{
		Mode:   cfg.Logging.Mode,
		Level:  cfg.Logging.Level,
		File:   cfg.LogFile(),
		Redact: cfg.Logging.Redact,
	}
}
