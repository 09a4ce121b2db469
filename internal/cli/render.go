// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Turns session state into terminal output.

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/casechat/internal/config"
	"github.com/jeranaias/casechat/internal/conversation"
	"github.com/jeranaias/casechat/internal/document"
	"github.com/jeranaias/casechat/internal/session"
	"github.com/jeranaias/casechat/internal/ui/styles"
	"github.com/jeranaias/casechat/internal/upload"
	"github.com/jeranaias/casechat/internal/util"
)

// renderer writes human-readable output. Markdown is rendered with glamour
// only on a terminal.
type renderer struct {
	out io.Writer
	md  *glamour.TermRenderer
}

func newRenderer(out io.Writer, cfg *config.Config, terminal bool) *renderer {
	r := &renderer{out: out}
	if !terminal || !cfg.UI.Markdown || cfg.UI.NoColor {
		return r
	}

	wrap := cfg.UI.WordWrap
	if wrap <= 0 {
		wrap = GetTerminalWidth() - 4
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		r.md = md
	}
	return r
}

// markdown renders text, falling back to the raw text.
func (r *renderer) markdown(text string) string {
	if r.md == nil {
		return strings.TrimSpace(text)
	}
	out, err := r.md.Render(text)
	if err != nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimRight(out, "\n")
}

func (r *renderer) println(a ...interface{}) {
	fmt.Fprintln(r.out, a...)
}

// =============================================================================
// UPLOAD OUTPUT
// =============================================================================

// uploadStage describes an in-progress upload state, or "" for others.
func uploadStage(s upload.State, doc *document.Document) string {
	name := "document"
	if doc != nil {
		name = doc.Name
	}
	switch s {
	case upload.StateProbing:
		return "Checking the analysis service..."
	case upload.StateUploading:
		return fmt.Sprintf("Uploading %s...", name)
	default:
		return ""
	}
}

// outcome prints the result of an upload attempt.
func (r *renderer) outcome(out upload.Outcome) {
	switch out.Status {
	case upload.StatusSucceeded:
		r.println(styles.RenderSuccess(fmt.Sprintf("Uploaded %s (case %s)", out.Identity.Filename, out.Identity.CaseID)))
		r.println()
		r.println(SectionStyle.Render("Summary"))
		r.println(r.markdown(out.Summary))
		r.println()
	case upload.StatusFailed:
		if out.Err != nil {
			r.println(styles.RenderError(out.Err.Message))
		}
	case upload.StatusInProgress:
		r.println(styles.RenderPending("An upload is already in progress."))
	}
}

// =============================================================================
// CONVERSATION OUTPUT
// =============================================================================

// reply prints an assistant turn.
func (r *renderer) reply(t conversation.Turn) {
	if t.IsError {
		r.println(styles.RenderError(t.Content))
		return
	}
	r.println(styles.AssistantStyle.Render("Assistant:"))
	r.println(r.markdown(t.Content))
	r.println()
}

// history prints every turn in order.
func (r *renderer) history(turns []conversation.Turn) {
	if len(turns) == 0 {
		r.println(DimStyle.Render("No questions asked yet."))
		return
	}
	for _, t := range turns {
		stamp := styles.MutedStyle.Render(t.Timestamp.Format("15:04:05"))
		switch {
		case t.Role == conversation.RoleOperator:
			r.println(stamp, styles.OperatorStyle.Render("You:"), t.Content)
		case t.IsError:
			r.println(stamp, styles.ErrorTurnStyle.Render("Error: "+t.Content))
		default:
			r.println(stamp, styles.AssistantStyle.Render("Assistant:"))
			r.println(r.markdown(t.Content))
		}
	}
}

// state prints the session status block.
func (r *renderer) state(s session.State) {
	r.println(TitleStyle.Render("casechat session"))

	doc := "none"
	if s.Document != nil {
		doc = fmt.Sprintf("%s (%s, %s)", s.Document.Name, s.Document.MediaType, document.FormatSize(int64(s.Document.Size())))
	}
	r.println(labelValue("Document", doc))
	r.println(labelValue("Upload", s.UploadState.String()))

	if s.Identity != nil {
		r.println(labelValue("Case", s.Identity.CaseID))
	} else {
		r.println(labelValue("Case", "not uploaded"))
	}

	questions := 0
	for _, t := range s.Turns {
		if t.Role == conversation.RoleOperator {
			questions++
		}
	}
	r.println(labelValue("Questions", fmt.Sprintf("%d", questions)))
	r.println(labelValue("Session", formatDurationShort(time.Since(s.StartedAt))))

	if s.Outcome.Summary != "" {
		r.println(labelValue("Summary", util.TruncateRunes(util.SingleLine(s.Outcome.Summary), 60)))
	}
	if s.LastError != "" {
		r.println(styles.RenderWarning(s.LastError))
	}
}

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
