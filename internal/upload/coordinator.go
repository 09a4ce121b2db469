// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"sync"

	"github.com/jeranaias/casechat/internal/analysis"
	"github.com/jeranaias/casechat/internal/classify"
	"github.com/jeranaias/casechat/internal/document"
	"github.com/jeranaias/casechat/internal/logging"
	"github.com/jeranaias/casechat/internal/metrics"
)

// =============================================================================
// STATE
// =============================================================================

// State is the coordinator's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateProbing
	StateUploading
	StateSucceeded
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProbing:
		return "probing"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status tags an Outcome.
type Status int

const (
	StatusNotAttempted Status = iota
	StatusInProgress
	StatusSucceeded
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNotAttempted:
		return "not attempted"
	case StatusInProgress:
		return "in progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of the current upload attempt. Identity and Summary
// are set only when Succeeded. Err is set only when Failed.
type Outcome struct {
	Status   Status
	Identity *document.Identity
	Summary  string
	Err      *classify.Error
}

// =============================================================================
// COORDINATOR
// =============================================================================

// IdentityFunc receives the document identity after a successful upload,
// and nil when a new document is selected.
type IdentityFunc func(id *document.Identity)

// Coordinator owns the single-document upload lifecycle.
//
// Only one attempt runs at a time. A new selection during an attempt does
// not abort the network call; the attempt's result is discarded when it
// resolves.
type Coordinator struct {
	mu         sync.Mutex
	prober     analysis.Prober
	uploader   analysis.Uploader
	classifier *classify.Classifier
	logger     *logging.Logger
	metrics    *metrics.Metrics

	state      State
	outcome    Outcome
	doc        *document.Document
	identity   *document.Identity
	inFlight   bool
	generation uint64

	onIdentity IdentityFunc
	onChange   func()
}

// NewCoordinator creates a coordinator in the Idle state.
func NewCoordinator(prober analysis.Prober, uploader analysis.Uploader, classifier *classify.Classifier, logger *logging.Logger, m *metrics.Metrics) *Coordinator {
	if logger == nil {
		logger = logging.Nop()
	}
	if classifier == nil {
		classifier = classify.New("", "", logger)
	}
	return &Coordinator{
		prober:     prober,
		uploader:   uploader,
		classifier: classifier,
		logger:     logger,
		metrics:    m,
		state:      StateIdle,
		outcome:    Outcome{Status: StatusNotAttempted},
	}
}

// SetIdentityCallback sets the identity listener. It is called with the
// coordinator lock held, so the listener must not call back into the
// coordinator.
func (c *Coordinator) SetIdentityCallback(fn IdentityFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onIdentity = fn
}

// SetChangeCallback sets a listener called after every state change,
// outside the lock.
func (c *Coordinator) SetChangeCallback(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SelectDocument replaces the selected document from any state. The
// outcome and identity are cleared and any in-flight attempt is
// superseded.
func (c *Coordinator) SelectDocument(doc *document.Document) {
	c.mu.Lock()
	c.doc = doc
	c.state = StateIdle
	c.outcome = Outcome{Status: StatusNotAttempted}
	c.identity = nil
	c.generation++
	if c.onIdentity != nil {
		c.onIdentity(nil)
	}
	notify := c.onChange
	c.mu.Unlock()

	name := ""
	if doc != nil {
		name = doc.Name
	}
	c.logger.Debug("document selected", "name", name)

	if notify != nil {
		notify()
	}
}

// Upload runs one attempt for the selected document and returns its
// outcome. While another attempt is outstanding it does nothing and
// returns the current outcome.
func (c *Coordinator) Upload(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.inFlight {
		current := c.outcome
		c.mu.Unlock()
		c.logger.Debug("upload already in flight, ignoring")
		return current
	}

	if c.doc == nil {
		c.state = StateFailed
		c.outcome = Outcome{Status: StatusFailed, Err: classify.Validation("no file selected")}
		result := c.outcome
		notify := c.onChange
		c.mu.Unlock()
		c.metrics.ObserveUpload(false)
		if notify != nil {
			notify()
		}
		return result
	}

	c.inFlight = true
	gen := c.generation
	doc := c.doc
	c.state = StateProbing
	c.outcome = Outcome{Status: StatusInProgress}
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify()
	}

	if !c.probe(ctx) {
		return c.finish(gen, Outcome{Status: StatusFailed, Err: c.classifier.ServiceUnavailable()}, nil)
	}

	if !c.advance(gen) {
		return c.finish(gen, Outcome{}, nil)
	}

	if c.uploader == nil {
		return c.finish(gen, Outcome{Status: StatusFailed, Err: c.classifier.ServiceUnavailable()}, nil)
	}
	result, err := c.uploader.Upload(ctx, doc)
	if err != nil {
		return c.finish(gen, Outcome{Status: StatusFailed, Err: c.classifier.Classify(err)}, nil)
	}

	filename := result.Filename
	if filename == "" {
		filename = doc.Name
	}
	identity := &document.Identity{CaseID: result.CaseID, Filename: filename}
	return c.finish(gen, Outcome{Status: StatusSucceeded, Identity: identity, Summary: result.Summary}, identity)
}

func (c *Coordinator) probe(ctx context.Context) bool {
	if c.prober == nil {
		return false
	}
	return c.prober.Probe(ctx)
}

// advance moves Probing to Uploading unless the attempt was superseded.
func (c *Coordinator) advance(gen uint64) bool {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.logger.Debug("upload superseded before submission")
		return false
	}
	c.state = StateUploading
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
	return true
}

// finish settles the attempt. A superseded attempt leaves the state that
// the newer selection established.
func (c *Coordinator) finish(gen uint64, out Outcome, identity *document.Identity) Outcome {
	c.mu.Lock()
	c.inFlight = false
	if c.generation != gen {
		current := c.outcome
		notify := c.onChange
		c.mu.Unlock()
		c.logger.Debug("discarding superseded upload result", "status", out.Status.String())
		if notify != nil {
			notify()
		}
		return current
	}

	c.outcome = out
	if out.Status == StatusSucceeded {
		c.state = StateSucceeded
		c.identity = identity
		if c.onIdentity != nil {
			c.onIdentity(identity)
		}
	} else {
		c.state = StateFailed
	}
	notify := c.onChange
	c.mu.Unlock()

	c.metrics.ObserveUpload(out.Status == StatusSucceeded)
	if out.Err != nil {
		c.logger.Info("upload failed", "kind", out.Err.Kind.String(), "detail", out.Err.Detail)
	} else if identity != nil {
		c.logger.Info("upload succeeded", "case_id", identity.CaseID)
	}

	if notify != nil {
		notify()
	}
	return out
}

// =============================================================================
// ACCESSORS
// =============================================================================

// View is a consistent copy of the coordinator's observable fields.
type View struct {
	Document *document.Document
	State    State
	Outcome  Outcome
	Identity *document.Identity
}

// View returns document, state, outcome and identity read under one lock.
func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{Document: c.doc, State: c.state, Outcome: c.outcome}
	if c.identity != nil {
		id := *c.identity
		v.Identity = &id
	}
	return v
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Outcome returns the current outcome.
func (c *Coordinator) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Document returns the selected document, or nil.
func (c *Coordinator) Document() *document.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// Identity returns the identity from the last successful upload of the
// current document, or nil.
func (c *Coordinator) Identity() *document.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

// InFlight reports whether an attempt is outstanding.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
