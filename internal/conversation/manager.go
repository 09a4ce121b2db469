// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jeranaias/casechat/internal/analysis"
	"github.com/jeranaias/casechat/internal/classify"
	"github.com/jeranaias/casechat/internal/document"
	"github.com/jeranaias/casechat/internal/logging"
	"github.com/jeranaias/casechat/internal/metrics"
)

// ErrConversationReset is returned by Ask when the document changed while
// the question was outstanding. The reply was dropped.
var ErrConversationReset = errors.New("conversation was reset while the question was pending")

// Manager owns the conversation about the current document.
//
// Questions are serialized: a second Ask waits until the first resolves, so
// replies always follow their own question in the log.
type Manager struct {
	mu         sync.Mutex
	sem        *semaphore.Weighted
	inquirer   analysis.Inquirer
	classifier *classify.Classifier
	logger     *logging.Logger
	metrics    *metrics.Metrics

	identity  *document.Identity
	epoch     uint64
	log       *Log
	pending   string
	lastError string

	onChange func()
}

// NewManager creates a manager with no active document.
func NewManager(inquirer analysis.Inquirer, classifier *classify.Classifier, logger *logging.Logger, m *metrics.Metrics) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	if classifier == nil {
		classifier = classify.New("", "", logger)
	}
	return &Manager{
		sem:        semaphore.NewWeighted(1),
		inquirer:   inquirer,
		classifier: classifier,
		logger:     logger,
		metrics:    m,
		log:        NewLog(),
	}
}

// SetChangeCallback sets a listener called after every state change,
// outside the lock.
func (m *Manager) SetChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Bind scopes the manager to id and starts a fresh log. A nil id leaves no
// active document. Bind does not fire the change callback; the caller that
// changed the document reports the change.
func (m *Manager) Bind(id *document.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != nil {
		copied := *id
		m.identity = &copied
	} else {
		m.identity = nil
	}
	m.epoch++
	m.log = NewLog()
}

// Ask sends text about the active document and records the exchange.
//
// Whitespace-only text is rejected with a ValidationError and the log is
// untouched. Otherwise the operator turn is appended before the network
// call and exactly one assistant turn after it: the reply, or the
// classified error message marked IsError.
func (m *Manager) Ask(ctx context.Context, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		verr := classify.Validation("question is empty")
		m.setLastError(verr.Message)
		return Turn{}, verr
	}

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return Turn{}, err
	}
	defer m.sem.Release(1)

	m.mu.Lock()
	if m.identity == nil {
		nerr := classify.NoActiveDocument()
		m.lastError = nerr.Message
		notify := m.onChange
		m.mu.Unlock()
		if notify != nil {
			notify()
		}
		return Turn{}, nerr
	}
	caseID := m.identity.CaseID
	epoch := m.epoch
	m.log.Append(newTurn(RoleOperator, text, false))
	m.pending = ""
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify()
	}

	reply, err := m.inquire(ctx, caseID, text)

	var (
		turn   Turn
		result error
	)
	if err != nil {
		ce := m.classifier.Classify(err)
		turn = newTurn(RoleAssistant, ce.Message, true)
		result = ce
		m.logger.Info("question failed", "case_id", caseID, "kind", ce.Kind.String(), "detail", ce.Detail)
	} else {
		turn = newTurn(RoleAssistant, reply, false)
	}
	m.metrics.ObserveInquiry(err == nil)

	m.mu.Lock()
	if m.epoch != epoch {
		notify = m.onChange
		m.mu.Unlock()
		m.logger.Debug("dropping reply for discarded conversation", "case_id", caseID)
		if notify != nil {
			notify()
		}
		return Turn{}, ErrConversationReset
	}
	m.log.Append(turn)
	if err != nil {
		m.lastError = turn.Content
	} else {
		m.lastError = ""
	}
	notify = m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify()
	}
	return turn, result
}

func (m *Manager) inquire(ctx context.Context, caseID, text string) (string, error) {
	if m.inquirer == nil {
		return "", classify.ServiceUnavailable("")
	}
	return m.inquirer.Chat(ctx, caseID, text)
}

// SubmitPending asks the pending input.
func (m *Manager) SubmitPending(ctx context.Context) (Turn, error) {
	return m.Ask(ctx, m.PendingInput())
}

// =============================================================================
// STATE ACCESSORS
// =============================================================================

// SetPendingInput stores the operator's in-progress text.
func (m *Manager) SetPendingInput(text string) {
	m.mu.Lock()
	m.pending = text
	notify := m.onChange
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// PendingInput returns the in-progress text.
func (m *Manager) PendingInput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Turns returns a copy of the log.
func (m *Manager) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.Turns()
}

// Identity returns the active document identity, or nil.
func (m *Manager) Identity() *document.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

// LastError returns the most recent question error message, or "".
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// ClearLastError dismisses the transient error message.
func (m *Manager) ClearLastError() {
	m.mu.Lock()
	m.lastError = ""
	notify := m.onChange
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}

func (m *Manager) setLastError(msg string) {
	m.mu.Lock()
	m.lastError = msg
	notify := m.onChange
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}
