package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from the peer.
	maxMessageSize = 4096
)

// State is the lifecycle state of a Channel.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// ErrNotReady is returned by Send when the channel is not open. The frame is
// dropped; callers are responsible for checking readiness first.
var ErrNotReady = errors.New("ws: channel is not open")

// Handler consumes inbound frames. Each channel delivers frames to exactly
// one handler, sequentially, from a single goroutine, so handlers never need
// their own locking for per-channel state.
type Handler func(model.Event)

// Channel owns one live connection scoped to a context id: a conversation,
// or a user's notification feed. It carries frames both ways and nothing
// else; reconciliation, presence and typing live above it.
//
// A channel is terminal once Closed or Errored: there is no reconnection or
// backoff, the owner opens a fresh channel by re-entering the view.
type Channel struct {
	contextID string

	conn    *websocket.Conn
	handler Handler    // fixed at Open, called only from the read loop
	writeMu sync.Mutex // serializes writes; gorilla allows one writer at a time

	mu    sync.Mutex
	state State
}

// Open dials the endpoint and starts the read loop. The returned channel is
// already Open; a handshake or transport failure is returned as a connection
// error and no channel is created.
//
// The handler is wired before the read loop starts, so even a frame the
// server pushes on upgrade reaches the consumer. A nil handler discards
// every inbound frame.
func Open(ctx context.Context, endpoint, contextID string, handler Handler) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: connect %s: %w", contextID, err)
	}
	conn.SetReadLimit(maxMessageSize)

	c := &Channel{
		contextID: contextID,
		conn:      conn,
		handler:   handler,
		state:     StateOpen,
	}
	go c.readLoop()
	return c, nil
}

// ContextID returns the conversation or feed id the channel is scoped to.
func (c *Channel) ContextID() string {
	return c.contextID
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send marshals v and writes it as a text frame. Returns ErrNotReady unless
// the channel is open; there is no outbound queue, a frame composed before
// the socket is ready is simply dropped by the caller.
func (c *Channel) Send(v any) error {
	if c.State() != StateOpen {
		return ErrNotReady
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ws: marshal frame: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears the channel down. It is idempotent and transitions to Closed
// regardless of prior state; owners must call it on every exit path or the
// connection leaks.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.mu.Unlock()

	// Best effort close handshake; the read loop exits when the conn dies.
	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	return c.conn.Close()
}

// readLoop delivers inbound frames to the handler in arrival order. It is
// the only reader of the connection and the only caller of the handler, so
// event processing per channel is strictly sequential.
func (c *Channel) readLoop() {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.state != StateClosed {
				c.state = StateErrored
				log.Printf("[ws] %s: read failed: %v", c.contextID, err)
			}
			c.mu.Unlock()
			c.conn.Close()
			return
		}

		var event model.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			// A malformed frame is dropped; the channel stays open.
			log.Printf("[ws] %s: dropping malformed frame: %v", c.contextID, err)
			continue
		}

		if c.handler != nil {
			c.handler(event)
		}
	}
}
