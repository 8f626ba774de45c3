package chat

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/abdulazizbumar270-eng/feedback/pkg/api"
	"github.com/abdulazizbumar270-eng/feedback/pkg/auth"
	"github.com/abdulazizbumar270-eng/feedback/pkg/config"
	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
	"github.com/abdulazizbumar270-eng/feedback/pkg/ws"
)

// Conversation drives the live view of one chat conversation. It owns the
// channel for its conversation id plus the reconciler, presence set and
// typing signal fed from that channel's frames, and it is the only thing
// that touches them.
//
// One Conversation per active conversation per view; never shared. Close it
// on every exit path; an abandoned Conversation leaks a live connection.
type Conversation struct {
	id        string
	localUser model.User
	rest      *api.Client
	channel   *ws.Channel

	reconciler *Reconciler
	presence   *PresenceSet
	typing     *TypingSignal

	mu       sync.Mutex
	partner  *model.User
	onChange func(model.Event)
}

// Open connects the conversation's channel and wires the frame dispatcher.
// The local user id comes out of the access token, the same token the server
// uses to authenticate the upgrade.
//
// The message list starts empty; call LoadHistory next. Frames arriving
// before the history resolves still reconcile correctly, since the history load
// replaces the list wholesale.
func Open(ctx context.Context, cfg config.Config, rest *api.Client, conversationID string) (*Conversation, error) {
	claims, err := auth.ParseToken(rest.Token())
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	if claims.Expired() {
		// The server would refuse the upgrade anyway; fail before dialing.
		return nil, fmt.Errorf("chat: access token expired")
	}

	endpoint, err := ws.ChatEndpoint(cfg, conversationID, rest.Token())
	if err != nil {
		return nil, err
	}

	c := &Conversation{
		id:         conversationID,
		localUser:  model.User{ID: claims.UserID},
		rest:       rest,
		reconciler: NewReconciler(),
		presence:   NewPresenceSet(),
		typing:     NewTypingSignal(claims.UserID),
	}

	channel, err := ws.Open(ctx, endpoint, conversationID, c.handleEvent)
	if err != nil {
		return nil, err
	}
	c.channel = channel
	return c, nil
}

// OnChange registers a callback invoked after each applied frame, from the
// channel's event goroutine. Views use it to re-render. Frames applied
// before registration are not replayed.
func (c *Conversation) OnChange(fn func(model.Event)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// LoadHistory fetches the conversation's history once and replaces the list
// with it, deriving the chat partner from the first message's participants.
// On failure the list stays empty and the error is surfaced for display;
// there is no retry.
func (c *Conversation) LoadHistory(ctx context.Context) error {
	messages, err := c.rest.Messages(ctx, c.id)
	if err != nil {
		return err
	}
	c.reconciler.LoadHistory(messages)

	if len(messages) > 0 {
		for _, p := range messages[0].Participants {
			if p.ID != c.localUser.ID {
				c.mu.Lock()
				partner := p
				c.partner = &partner
				c.mu.Unlock()
				break
			}
		}
	}
	return nil
}

// SendMessage appends the message optimistically and sends it with its
// correlation id. The optimistic entry stays pending until the server echo
// confirms it in place. Returns ws.ErrNotReady without touching the list
// when the channel is not open.
func (c *Conversation) SendMessage(content string) error {
	if c.channel.State() != ws.StateOpen {
		return ws.ErrNotReady
	}

	correlationID := c.reconciler.AppendOptimistic(content, c.localUser)
	return c.channel.Send(model.ChatMessageSend{
		Type:           model.EventChatMessage,
		Message:        content,
		TempID:         correlationID,
		ConversationID: c.id,
	})
}

// SendTyping notifies the chat partner that the local user is typing. A
// silent no-op unless the channel is open and a partner is known. There is
// no outbound throttle beyond what the caller applies.
func (c *Conversation) SendTyping() error {
	c.mu.Lock()
	partner := c.partner
	c.mu.Unlock()

	if partner == nil || c.channel.State() != ws.StateOpen {
		return nil
	}
	return c.channel.Send(model.TypingSend{
		Type:     model.EventTyping,
		User:     c.localUser.ID,
		Receiver: partner.ID,
	})
}

// DeleteMessage asks the backend to delete the message and removes it from
// the list only after the backend confirms. Not an optimistic delete.
func (c *Conversation) DeleteMessage(ctx context.Context, messageID int64) error {
	if err := c.rest.DeleteMessage(ctx, c.id, messageID); err != nil {
		return err
	}
	c.reconciler.DeleteConfirmed(messageID)
	return nil
}

// Close releases the channel and cancels the typing expiry timer. Idempotent.
func (c *Conversation) Close() error {
	c.typing.Stop()
	return c.channel.Close()
}

// Messages returns the rendered list in insertion order.
func (c *Conversation) Messages() []model.Message {
	return c.reconciler.Messages()
}

// Typist returns the remote participant currently typing, or nil.
func (c *Conversation) Typist() *model.User {
	return c.typing.Typist()
}

// OnlineUsers returns the channel's current presence set.
func (c *Conversation) OnlineUsers() []model.User {
	return c.presence.Users()
}

// Partner returns the other participant, once history has revealed them.
func (c *Conversation) Partner() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.partner == nil {
		return nil
	}
	p := *c.partner
	return &p
}

// handleEvent is the channel's single inbound consumer. Frames for one
// channel arrive strictly in order on one goroutine; the switch fans them
// out to the component that owns each frame type.
func (c *Conversation) handleEvent(event model.Event) {
	switch event.Type {
	case model.EventChatMessage:
		if event.User == nil {
			log.Printf("[chat] %s: chat_message frame without user, dropped", c.id)
			return
		}
		c.reconciler.ApplyIncoming(event)
		// The typist evidently sent their message.
		c.typing.ClearFor(event.User.ID)

	case model.EventTyping:
		if event.User != nil {
			c.typing.OnRemoteTyping(*event.User, event.Receiver)
		}

	case model.EventOnlineStatus:
		switch event.Status {
		case model.StatusOnline:
			c.presence.ApplyOnline(event.OnlineUsers)
		case model.StatusOffline:
			c.presence.ApplyOffline(event.OnlineUsers)
		}

	default:
		// Unknown frame types are ignored; the channel stays open.
		return
	}

	c.mu.Lock()
	onChange := c.onChange
	c.mu.Unlock()
	if onChange != nil {
		onChange(event)
	}
}
