// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/casechat/internal/analysis"
	"github.com/jeranaias/casechat/internal/classify"
	"github.com/jeranaias/casechat/internal/conversation"
	"github.com/jeranaias/casechat/internal/document"
	"github.com/jeranaias/casechat/internal/logging"
	"github.com/jeranaias/casechat/internal/metrics"
	"github.com/jeranaias/casechat/internal/upload"
)

// =============================================================================
// STATE
// =============================================================================

// State is a point-in-time view of everything a presentation shows.
type State struct {
	SessionID    string
	Document     *document.Document
	UploadState  upload.State
	Outcome      upload.Outcome
	Identity     *document.Identity
	Turns        []conversation.Turn
	PendingInput string
	LastError    string
	StartedAt    time.Time
	LastActivity time.Time
}

// HasDocument reports whether a document is selected.
func (s State) HasDocument() bool {
	return s.Document != nil
}

// Ready reports whether questions can be asked.
func (s State) Ready() bool {
	return s.Identity != nil
}

// =============================================================================
// SESSION
// =============================================================================

// Deps are the collaborators a Session is built from.
type Deps struct {
	Prober     analysis.Prober
	Uploader   analysis.Uploader
	Inquirer   analysis.Inquirer
	Classifier *classify.Classifier
	Logger     *logging.Logger
	Metrics    *metrics.Metrics

	// MaxDocumentSize caps SelectFile. Zero uses document.DefaultMaxSize.
	MaxDocumentSize int64
}

// Session is the single owned object behind one operator interaction. It
// composes the upload coordinator and the conversation manager and wires
// the identity from a successful upload into the conversation.
type Session struct {
	mu           sync.Mutex
	id           string
	startedAt    time.Time
	lastActivity time.Time
	maxDocSize   int64
	logger       *logging.Logger

	coordinator *upload.Coordinator
	manager     *conversation.Manager

	listeners []func(State)
}

// New creates a session.
func New(deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	classifier := deps.Classifier
	if classifier == nil {
		classifier = classify.New("", "", logger)
	}

	now := time.Now()
	s := &Session{
		id:           generateSessionID(),
		startedAt:    now,
		lastActivity: now,
		maxDocSize:   deps.MaxDocumentSize,
		logger:       logger,
		coordinator:  upload.NewCoordinator(deps.Prober, deps.Uploader, classifier, logger, deps.Metrics),
		manager:      conversation.NewManager(deps.Inquirer, classifier, logger, deps.Metrics),
	}
	s.logger = logger.With("session", s.id)

	s.coordinator.SetIdentityCallback(s.manager.Bind)
	s.coordinator.SetChangeCallback(s.notify)
	s.manager.SetChangeCallback(s.notify)

	s.logger.Info("session started")
	return s
}

func generateSessionID() string {
	return "sess_" + uuid.New().String()
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// =============================================================================
// OPERATIONS
// =============================================================================

// SelectDocument replaces the current document and discards the
// conversation.
func (s *Session) SelectDocument(doc *document.Document) {
	s.touch()
	s.coordinator.SelectDocument(doc)
}

// SelectFile loads path and selects it. A load failure leaves the current
// selection untouched.
func (s *Session) SelectFile(path string) (*document.Document, error) {
	doc, err := document.Load(path, s.maxDocSize)
	if err != nil {
		return nil, err
	}
	s.SelectDocument(doc)
	return doc, nil
}

// Upload submits the current document.
func (s *Session) Upload(ctx context.Context) upload.Outcome {
	s.touch()
	return s.coordinator.Upload(ctx)
}

// SetPendingInput stores the operator's in-progress text.
func (s *Session) SetPendingInput(text string) {
	s.touch()
	s.manager.SetPendingInput(text)
}

// Ask sends a question about the uploaded document.
func (s *Session) Ask(ctx context.Context, text string) (conversation.Turn, error) {
	s.touch()
	return s.manager.Ask(ctx, text)
}

// SubmitPending asks the pending input.
func (s *Session) SubmitPending(ctx context.Context) (conversation.Turn, error) {
	s.touch()
	return s.manager.SubmitPending(ctx)
}

// ClearLastError dismisses the transient error message.
func (s *Session) ClearLastError() {
	s.manager.ClearLastError()
}

// =============================================================================
// OBSERVATION
// =============================================================================

// Snapshot returns the current observable state. Document, upload state,
// outcome and identity are read together; the conversation fields are read
// separately and may trail them by one change.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	started, last := s.startedAt, s.lastActivity
	s.mu.Unlock()

	v := s.coordinator.View()
	return State{
		SessionID:    s.id,
		Document:     v.Document,
		UploadState:  v.State,
		Outcome:      v.Outcome,
		Identity:     v.Identity,
		Turns:        s.manager.Turns(),
		PendingInput: s.manager.PendingInput(),
		LastError:    s.manager.LastError(),
		StartedAt:    started,
		LastActivity: last,
	}
}

// OnChange registers fn to receive a snapshot after every state change.
// Listeners run on the goroutine that made the change, outside all locks.
func (s *Session) OnChange(fn func(State)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) notify() {
	s.mu.Lock()
	listeners := make([]func(State), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if len(listeners) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range listeners {
		fn(snap)
	}
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Duration returns how long the session has existed.
func (s *Session) Duration() time.Duration {
	return time.Since(s.StartedAt())
}

// IdleTime returns the time since the last operation.
func (s *Session) IdleTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActivity)
}

// Close logs the end of the session.
func (s *Session) Close() {
	snap := s.Snapshot()
	s.logger.Info("session ended",
		"duration", s.Duration().Round(time.Second).String(),
		"turns", len(snap.Turns),
	)
}
