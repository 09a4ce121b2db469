// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleOperator  Role = "operator"
	RoleAssistant Role = "assistant"
)

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one role-tagged message in the exchange.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// IsError marks an assistant turn that stands in for a failed reply.
	IsError bool `json:"is_error,omitempty"`
}

func newTurn(role Role, content string, isError bool) Turn {
	return Turn{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		IsError:   isError,
	}
}

// =============================================================================
// LOG TYPE
// =============================================================================

// Log is an append-only ordered sequence of turns for one document.
// It is not safe for concurrent use; Manager guards it.
type Log struct {
	turns     []Turn
	createdAt time.Time
	updatedAt time.Time
}

// NewLog creates an empty log.
func NewLog() *Log {
	now := time.Now()
	return &Log{
		turns:     make([]Turn, 0),
		createdAt: now,
		updatedAt: now,
	}
}

// Append adds a turn at the end.
func (l *Log) Append(t Turn) {
	l.turns = append(l.turns, t)
	l.updatedAt = time.Now()
}

// Len returns the number of turns.
func (l *Log) Len() int {
	return len(l.turns)
}

// Turns returns a copy of the turns in order.
func (l *Log) Turns() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Last returns the most recent turn.
func (l *Log) Last() (Turn, bool) {
	if len(l.turns) == 0 {
		return Turn{}, false
	}
	return l.turns[len(l.turns)-1], true
}

// CountByRole returns how many turns have the given role.
func (l *Log) CountByRole(role Role) int {
	n := 0
	for _, t := range l.turns {
		if t.Role == role {
			n++
		}
	}
	return n
}

// UpdatedAt returns when the log last changed.
func (l *Log) UpdatedAt() time.Time {
	return l.updatedAt
}
