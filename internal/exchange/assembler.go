// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"strings"

	"github.com/jeranaias/docchat-tui/internal/store"
)

// Assembler reconstructs one bot message from stream fragments. The first
// fragment creates the streaming message in the conversation; every later
// fragment rewrites it with the full concatenation so far, so observers
// always see a consistent prefix of the final text.
//
// An Assembler that never receives a fragment leaves the conversation
// untouched: no empty bot message is created and Settle is a no-op.
type Assembler struct {
	store          *store.Store
	conversationID string
	acc            strings.Builder
	started        bool
	settled        bool
}

// NewAssembler creates an assembler targeting one conversation.
func NewAssembler(st *store.Store, conversationID string) *Assembler {
	return &Assembler{store: st, conversationID: conversationID}
}

// Apply folds one fragment into the running text and pushes the updated
// concatenation into the conversation.
func (a *Assembler) Apply(fragment string) error {
	if a.settled {
		return nil
	}
	a.acc.WriteString(fragment)
	a.started = true
	return a.store.UpsertTrailingBot(a.conversationID, a.acc.String())
}

// Text returns the concatenation accumulated so far.
func (a *Assembler) Text() string {
	return a.acc.String()
}

// Started reports whether at least one fragment has arrived.
func (a *Assembler) Started() bool {
	return a.started
}

// Settle marks the assembled message complete and immutable. Idempotent;
// a no-op when no fragment ever arrived.
func (a *Assembler) Settle() error {
	if a.settled {
		return nil
	}
	a.settled = true
	if !a.started {
		return nil
	}
	return a.store.SettleTrailing(a.conversationID)
}
