package ws

import (
	"errors"
	"net/url"

	"github.com/abdulazizbumar270-eng/feedback/pkg/config"
)

// alternatePort is the backend's port. When no explicit socket host is
// configured the endpoint reuses the page hostname on this port.
const alternatePort = "8000"

// ErrNoContext is returned when an endpoint cannot be constructed because
// the context id is missing.
var ErrNoContext = errors.New("ws: missing context id")

// Endpoint derives the socket URL for a path: wss when the page is served
// over https, host from the explicit override or the page hostname on the
// backend port, and the access token as a query parameter so the server can
// authenticate the upgrade.
func Endpoint(cfg config.Config, path, token string) string {
	scheme := "ws"
	if cfg.Secure {
		scheme = "wss"
	}

	host := cfg.WSHost
	if host == "" {
		hostname := cfg.PageHost
		if hostname == "" {
			hostname = "localhost"
		}
		host = hostname + ":" + alternatePort
	}

	u := url.URL{Scheme: scheme, Host: host, Path: path}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// ChatEndpoint builds the endpoint for one conversation's channel.
func ChatEndpoint(cfg config.Config, conversationID, token string) (string, error) {
	if conversationID == "" {
		return "", ErrNoContext
	}
	return Endpoint(cfg, "/ws/chat/"+conversationID+"/", token), nil
}

// NotificationsEndpoint builds the endpoint for the current user's
// notification feed. The user is identified by the token, not the path.
func NotificationsEndpoint(cfg config.Config, token string) string {
	return Endpoint(cfg, "/ws/notifications/", token)
}
