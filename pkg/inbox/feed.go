package inbox

import (
	"context"
	"sync"

	"github.com/abdulazizbumar270-eng/feedback/pkg/config"
	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
	"github.com/abdulazizbumar270-eng/feedback/pkg/ws"
)

// Feed owns the notification channel for the current user and routes its
// feedback_update frames into a Relay. The server scopes the feed to the
// user behind the token; no context id goes in the path.
type Feed struct {
	channel *ws.Channel
	relay   *Relay

	mu       sync.Mutex
	onChange func(model.Feedback)
}

// Open connects the notification feed. Same lifecycle discipline as a chat
// channel: terminal on error, Close on every exit path.
func Open(ctx context.Context, cfg config.Config, token string) (*Feed, error) {
	endpoint := ws.NotificationsEndpoint(cfg, token)
	f := &Feed{relay: NewRelay()}

	channel, err := ws.Open(ctx, endpoint, "notifications", f.handleEvent)
	if err != nil {
		return nil, err
	}
	f.channel = channel
	return f, nil
}

// OnChange registers a callback invoked with each applied update, from the
// channel's event goroutine. Updates applied before registration are not
// replayed.
func (f *Feed) OnChange(fn func(model.Feedback)) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// Load seeds the relay with the REST-fetched feedback list.
func (f *Feed) Load(feedbacks []model.Feedback) {
	f.relay.Load(feedbacks)
}

// Feedbacks returns the current list.
func (f *Feed) Feedbacks() []model.Feedback {
	return f.relay.Feedbacks()
}

// Close releases the channel. Idempotent.
func (f *Feed) Close() error {
	return f.channel.Close()
}

func (f *Feed) handleEvent(event model.Event) {
	if event.Type != model.EventFeedbackUpdate || event.Feedback == nil {
		return
	}
	f.relay.ApplyUpdate(*event.Feedback)

	f.mu.Lock()
	onChange := f.onChange
	f.mu.Unlock()
	if onChange != nil {
		onChange(*event.Feedback)
	}
}
