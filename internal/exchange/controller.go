// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/store"
)

// FailureNotice is the fixed bot message recorded when the transport fails
// mid-exchange. Partial text already streamed is kept alongside it.
const FailureNotice = "There was an error calling the API."

// ErrExchangeInFlight indicates a send was attempted while another
// exchange is still running.
var ErrExchangeInFlight = errors.New("an exchange is already in flight")

// State is the controller's lifecycle position.
type State int

// Controller states. The terminal states (Settled, Cancelled, Failed) are
// reported as the Outcome of a finished exchange; the controller itself
// returns to Idle.
const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateSettled
	StateCancelled
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateSettled:
		return "settled"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome describes how a finished exchange ended.
type Outcome struct {
	State State
	Text  string
	Err   error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives streaming exchanges against one store and one backend
// client. At most one exchange is in flight at a time; Send from a second
// goroutine while one runs is rejected.
type Controller struct {
	store  *store.Store
	client *api.Client

	mu    sync.Mutex
	state State

	cancelMgr cancelManager

	// OnFragment, when set, runs after each fragment is folded into the
	// conversation. It receives the exchange's conversation ID, not the
	// currently selected one: the user may switch conversations while a
	// reply streams in. Called from the exchange goroutine.
	OnFragment func(conversationID, text string)
}

// NewController wires a controller to its store and backend client.
func NewController(st *store.Store, client *api.Client) *Controller {
	return &Controller{store: st, client: client}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether an exchange is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateIdle
}

// Cancel aborts the in-flight exchange, if any. Before the first fragment
// this discards the exchange entirely; mid-stream it keeps the partial
// text. Safe to call at any time.
func (c *Controller) Cancel() {
	c.cancelMgr.cancel()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// begin transitions Idle -> Sending, rejecting a concurrent exchange.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrExchangeInFlight
	}
	c.state = StateSending
	return nil
}

// Send runs one full exchange synchronously: records the user message,
// streams the reply into the conversation, and settles it. It blocks until
// the exchange reaches a terminal state and returns how it ended; the
// controller is back to Idle when it returns. Run it on its own goroutine.
func (c *Controller) Send(ctx context.Context, conversationID, query string, doc *api.ActiveDoc) Outcome {
	if err := c.begin(); err != nil {
		return Outcome{State: StateFailed, Err: err}
	}

	streamCtx, cancel := context.WithCancel(ctx)
	c.cancelMgr.set(cancel)

	outcome := c.run(streamCtx, conversationID, query, doc)

	// RELIABILITY: The cancel function is always released, and the
	// controller always returns to Idle, regardless of how the exchange
	// ended.
	c.cancelMgr.cancel()
	c.setState(StateIdle)
	return outcome
}

func (c *Controller) run(ctx context.Context, conversationID, query string, doc *api.ActiveDoc) Outcome {
	if err := c.store.Append(conversationID, model.NewUserMessage(query)); err != nil {
		return Outcome{State: StateFailed, Err: err}
	}

	req := api.NewChatStreamRequest(query, c.store.SessionID(conversationID), doc)
	stream, err := c.client.ChatStream(ctx, req)
	if err != nil {
		// Cancelled before any reply arrived: discard silently.
		if ctx.Err() != nil {
			return Outcome{State: StateCancelled}
		}
		c.store.Append(conversationID, model.NewBotNotice(FailureNotice))
		return Outcome{State: StateFailed, Err: err}
	}
	defer stream.Close()

	if id := stream.SessionID(); id != "" {
		c.store.BindSession(conversationID, id)
	}

	c.setState(StateStreaming)
	asm := NewAssembler(c.store, conversationID)

	for {
		fragment, err := stream.Next()
		if err == io.EOF {
			asm.Settle()
			return Outcome{State: StateSettled, Text: asm.Text()}
		}
		if err != nil {
			asm.Settle()
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				// User cancellation: keep the partial text, no notice.
				return Outcome{State: StateCancelled, Text: asm.Text()}
			}
			c.store.Append(conversationID, model.NewBotNotice(FailureNotice))
			return Outcome{State: StateFailed, Text: asm.Text(), Err: err}
		}
		if err := asm.Apply(fragment); err != nil {
			asm.Settle()
			return Outcome{State: StateFailed, Text: asm.Text(), Err: err}
		}
		if c.OnFragment != nil {
			c.OnFragment(conversationID, asm.Text())
		}
	}
}
