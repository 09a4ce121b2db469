// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot "upload then ask" command.
//
// Command: ask --file PATH [QUESTION]
//
// Examples:
//   casechat ask --file brief.pdf
//   casechat ask --file brief.pdf "What is the verdict?"
//   casechat ask -f brief.pdf --json "Who are the parties?"
//   casechat ask -f brief.pdf --export notes.md "Summarize the holding"

package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/jeranaias/casechat/internal/export"
	"github.com/jeranaias/casechat/internal/upload"
)

// HandleAsk uploads args.File, prints the summary and answers args.Query.
func HandleAsk(args Args, stdout, stderr io.Writer) error {
	if args.File == "" {
		return ErrMissingArgument("file", `casechat ask --file brief.pdf "What is the verdict?"`)
	}

	a, err := newApp(args, stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return runAsk(ctx, a, args, stderr)
}

func runAsk(ctx context.Context, a *app, args Args, stderr io.Writer) error {
	if _, err := a.session.SelectFile(args.File); err != nil {
		return err
	}

	if !args.Quiet && !args.JSON {
		a.session.OnChange(progressPrinter(stderr))
	}

	out := a.session.Upload(ctx)
	if out.Status != upload.StatusSucceeded {
		if out.Err != nil {
			return out.Err
		}
		return ctx.Err()
	}

	data := AskData{
		CaseID:   out.Identity.CaseID,
		Filename: out.Identity.Filename,
		Summary:  out.Summary,
		Question: args.Query,
	}
	if !args.JSON {
		a.render.outcome(out)
	}

	if args.Query != "" {
		turn, err := a.session.Ask(ctx, args.Query)
		if err != nil {
			return err
		}
		data.Reply = turn.Content
		if !args.JSON {
			a.render.reply(turn)
		}
	}

	if args.Export != "" {
		path, err := exportTranscript(a, args.Format, args.Export)
		if err != nil {
			return err
		}
		data.Export = path
		if !args.JSON && !args.Quiet {
			a.render.println(DimStyle.Render("Saved transcript to " + path))
		}
	}

	if args.JSON {
		return NewJSONResponse("ask", data).Print(a.render.out)
	}
	return nil
}

// exportTranscript writes the current conversation and returns the path.
func exportTranscript(a *app, format, path string) (string, error) {
	exporter, err := export.ForFormat(format, nil)
	if err != nil {
		return "", NewValidationErrorWithExample("format", format, "unsupported export format", "md or json")
	}
	return export.ToFile(export.FromState(a.session.Snapshot()), exporter, path, nil)
}
