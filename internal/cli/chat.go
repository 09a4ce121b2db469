// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat about one uploaded document.
//
// Command: chat [--file PATH]
//
// Lines starting with "/" are commands; anything else is a question about
// the uploaded document. Ctrl+C cancels the operation in flight; at the
// prompt it leaves the chat.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterh/liner"

	"github.com/jeranaias/casechat/internal/config"
	"github.com/jeranaias/casechat/internal/conversation"
	"github.com/jeranaias/casechat/internal/metrics"
	"github.com/jeranaias/casechat/internal/session"
	"github.com/jeranaias/casechat/internal/ui/styles"
	"github.com/jeranaias/casechat/internal/upload"
)

const chatHelp = `Commands:
  /upload PATH              Select and upload a document
  /status                   Show document and conversation state
  /history                  Show the conversation so far
  /export [md|json] [PATH]  Save the conversation
  /clear                    Dismiss the last error
  /help                     Show this help
  /quit                     Leave the chat

Anything else is sent as a question about the uploaded document.`

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader provides line editing and persistent input history.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &lineReader{line: line, historyFile: filepath.Join(dir, "chat_history")}

	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// ReadInput reads one line. Non-empty lines are added to history.
func (r *lineReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with 0600 permissions and restores the terminal.
func (r *lineReader) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the interactive chat loop.
func HandleChat(args Args, stdout, stderr io.Writer) error {
	a, err := newApp(args, stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, a.cfg.Metrics.Addr, a.registry, a.logger); err != nil {
				a.logger.Error("metrics endpoint failed", "error", err.Error())
			}
		}()
	}

	repl := newChatREPL(a, args.Quiet, stderr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go watchInterrupts(ctx, sigChan, repl, stderr)

	if !args.Quiet {
		a.render.println(TitleStyle.Render("casechat") + DimStyle.Render(" - "+a.cfg.Service.URL))
		a.render.println(DimStyle.Render("Upload a document with /upload PATH, then ask questions. /help lists commands."))
		a.render.println()
	}

	if args.File != "" {
		if _, err := repl.handleLine(ctx, "/upload "+args.File); err != nil {
			DisplayError(err, false, stdout, stderr)
		}
	}

	input := newLineReader()
	defer input.Close()

	for {
		line, err := input.ReadInput(PromptStyle.Render("casechat> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or closed stdin.
			a.render.println()
			return nil
		}

		cont, err := repl.handleLine(ctx, line)
		if err != nil {
			DisplayError(err, false, stdout, stderr)
		}
		if !cont {
			return nil
		}
	}
}

// =============================================================================
// REPL
// =============================================================================

// chatREPL executes chat lines against the session.
type chatREPL struct {
	app    *app
	quiet  bool
	stderr io.Writer

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newChatREPL(a *app, quiet bool, stderr io.Writer) *chatREPL {
	r := &chatREPL{app: a, quiet: quiet, stderr: stderr}
	if !quiet {
		a.session.OnChange(progressPrinter(stderr))
	}
	return r
}

// handleLine runs one input line. It returns false when the chat should end.
// Errors already shown in the conversation are not returned again.
func (r *chatREPL) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return true, nil
	}
	if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return true, r.ask(ctx, line)
	}

	fields := strings.Fields(line)
	cmd, rest := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/?":
		r.app.render.println(chatHelp)

	case "/upload", "/u":
		if len(rest) == 0 {
			return true, ErrMissingArgument("path", "/upload brief.pdf")
		}
		return true, r.upload(ctx, strings.Join(rest, " "))

	case "/status":
		r.app.render.state(r.app.session.Snapshot())

	case "/history":
		r.app.render.history(r.app.session.Snapshot().Turns)

	case "/export":
		format, path := "md", ""
		if len(rest) > 0 {
			format = rest[0]
		}
		if len(rest) > 1 {
			path = strings.Join(rest[1:], " ")
		}
		written, err := exportTranscript(r.app, format, path)
		if err != nil {
			return true, err
		}
		r.app.render.println(styles.RenderSuccess("Saved conversation to " + written))

	case "/clear":
		r.app.session.ClearLastError()

	default:
		return true, NewValidationErrorWithExample("command", cmd, "unknown chat command", "/help")
	}
	return true, nil
}

func (r *chatREPL) upload(ctx context.Context, path string) error {
	if _, err := r.app.session.SelectFile(path); err != nil {
		return err
	}

	opCtx := r.begin(ctx)
	defer r.end()

	out := r.app.session.Upload(opCtx)
	if out.Status == upload.StatusFailed && out.Err != nil {
		return out.Err
	}
	r.app.render.outcome(out)
	return nil
}

func (r *chatREPL) ask(ctx context.Context, question string) error {
	r.app.session.SetPendingInput(question)

	opCtx := r.begin(ctx)
	defer r.end()

	turn, err := r.app.session.SubmitPending(opCtx)
	switch {
	case err == nil:
		r.app.render.reply(turn)
		return nil
	case errors.Is(err, conversation.ErrConversationReset):
		return nil
	case turn.IsError:
		// The failure is already an assistant turn; show it once.
		r.app.render.reply(turn)
		return nil
	default:
		return err
	}
}

// begin derives a cancellable context for one operation.
func (r *chatREPL) begin(ctx context.Context) context.Context {
	opCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	return opCtx
}

func (r *chatREPL) end() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
}

// cancelCurrent cancels the operation in flight, if any.
func (r *chatREPL) cancelCurrent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

// watchInterrupts cancels the operation in flight on each signal until ctx
// is done.
func watchInterrupts(ctx context.Context, sigs <-chan os.Signal, repl *chatREPL, w io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigs:
			if repl.cancelCurrent() {
				fmt.Fprintln(w, styles.RenderWarning("Cancelled"))
			}
		}
	}
}

// progressPrinter reports upload stage transitions on w.
func progressPrinter(w io.Writer) func(session.State) {
	var mu sync.Mutex
	last := upload.StateIdle
	return func(s session.State) {
		mu.Lock()
		defer mu.Unlock()
		if s.UploadState == last {
			return
		}
		last = s.UploadState
		if msg := uploadStage(s.UploadState, s.Document); msg != "" {
			fmt.Fprintln(w, styles.RenderPending(msg))
		}
	}
}
