// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Reports configuration and analysis service reachability.
//
// Command: status
// Aliases: s
//
// Examples:
//   casechat status
//   casechat status --json
//   casechat --service http://10.0.0.5:5000 status
//
// An unreachable service is reported, not treated as a command failure.

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/casechat/internal/classify"
	"github.com/jeranaias/casechat/internal/config"
	"github.com/jeranaias/casechat/internal/ui/styles"
)

// HandleStatus probes the service and prints the effective settings.
func HandleStatus(args Args, stdout io.Writer) error {
	a, err := newApp(args, stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	data := collectStatus(context.Background(), a, args.ConfigPath)
	if args.JSON {
		return NewJSONResponse("status", data).Print(stdout)
	}
	printStatus(a.render, data)
	return nil
}

func collectStatus(ctx context.Context, a *app, configPath string) StatusData {
	if configPath == "" {
		if p, err := config.ConfigPathTOML(); err == nil {
			configPath = p
		}
	}

	data := StatusData{
		ServiceURL:     a.cfg.Service.URL,
		Origin:         a.cfg.Service.Origin,
		ConfigPath:     configPath,
		LogFile:        a.cfg.LogFile(),
		UploadTimeout:  a.cfg.UploadTimeout().String(),
		RequestTimeout: a.cfg.RequestTimeout().String(),
		MaxRetries:     a.cfg.Transport.MaxRetries,
	}

	start := time.Now()
	if err := a.client.Health(ctx); err != nil {
		data.Error = err.Error()
		if ce, ok := classify.As(err); ok {
			data.Error = ce.Message
		}
		return data
	}
	data.Reachable = true
	data.LatencyMs = time.Since(start).Milliseconds()
	return data
}

func printStatus(r *renderer, data StatusData) {
	r.println(TitleStyle.Render("casechat status"))

	r.println(SectionStyle.Render("Service"))
	r.println(labelValue("URL", data.ServiceURL))
	if data.Reachable {
		r.println(labelValue("Reachable", styles.RenderSuccess(fmt.Sprintf("yes (%dms)", data.LatencyMs))))
	} else {
		r.println(labelValue("Reachable", styles.RenderError("no")))
		r.println(DimStyle.Render("  " + data.Error))
	}
	origin := data.Origin
	if origin == "" {
		origin = "not sent"
	}
	r.println(labelValue("Origin", origin))
	r.println()

	r.println(SectionStyle.Render("Transport"))
	r.println(labelValue("Upload timeout", data.UploadTimeout))
	r.println(labelValue("Request timeout", data.RequestTimeout))
	r.println(labelValue("Max retries", fmt.Sprintf("%d", data.MaxRetries)))
	r.println()

	r.println(SectionStyle.Render("Files"))
	r.println(labelValue("Config", data.ConfigPath))
	logFile := data.LogFile
	if logFile == "" {
		logFile = "disabled"
	}
	r.println(labelValue("Diagnostic log", logFile))
}
