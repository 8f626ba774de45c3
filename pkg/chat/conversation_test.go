package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/abdulazizbumar270-eng/feedback/pkg/api"
	"github.com/abdulazizbumar270-eng/feedback/pkg/auth"
	"github.com/abdulazizbumar270-eng/feedback/pkg/config"
	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

var testUpgrader = websocket.Upgrader{}

func testToken(t *testing.T, userID int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{UserID: userID})
	s, err := token.SignedString([]byte("backend secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// startBackend runs a fake collaborator: a REST endpoint serving history and
// deletes, and a socket endpoint that confirms chat messages and relays
// typing back at the client.
func startBackend(t *testing.T, history []model.Message) (restURL, wsHost string) {
	t.Helper()

	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/messages/"):
			json.NewEncoder(w).Encode(history)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(rest.Close)

	sock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		// The backend announces presence as soon as the upgrade completes.
		conn.WriteJSON(map[string]any{
			"type": model.EventOnlineStatus, "status": model.StatusOnline,
			"online_users": []map[string]any{{"id": 2, "username": "bea"}},
		})
		for {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			switch frame["type"] {
			case model.EventChatMessage:
				// Confirm the message the way the backend does: server
				// id, echoed content, the sender's full user record and
				// the client's temp_id.
				conn.WriteJSON(map[string]any{
					"type":      model.EventChatMessage,
					"id":        99,
					"message":   frame["message"],
					"user":      map[string]any{"id": 1, "username": "amy"},
					"timestamp": time.Now().Format(time.RFC3339Nano),
					"temp_id":   frame["temp_id"],
				})
			case model.EventTyping:
				// Relay a partner typing frame back at the local user.
				conn.WriteJSON(map[string]any{
					"type":     model.EventTyping,
					"user":     map[string]any{"id": 2, "username": "bea"},
					"receiver": 1,
				})
			}
		}
	}))
	t.Cleanup(sock.Close)

	return rest.URL, strings.TrimPrefix(sock.URL, "http://")
}

func openTestConversation(t *testing.T, history []model.Message) (*Conversation, <-chan model.Event) {
	t.Helper()
	restURL, wsHost := startBackend(t, history)

	cfg := config.Config{WSHost: wsHost}
	rest := api.NewClient(restURL, testToken(t, 1))

	conv, err := Open(context.Background(), cfg, rest, "42")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conv.Close() })

	events := make(chan model.Event, 16)
	conv.OnChange(func(e model.Event) { events <- e })

	if err := conv.LoadHistory(context.Background()); err != nil {
		t.Fatal(err)
	}
	return conv, events
}

func drainUntil(t *testing.T, events <-chan model.Event, eventType string) model.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Type == eventType {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", eventType)
		}
	}
}

func TestConversationOptimisticRoundTrip(t *testing.T) {
	conv, events := openTestConversation(t, nil)

	if err := conv.SendMessage("hello"); err != nil {
		t.Fatal(err)
	}

	// Optimistic entry is visible immediately, before the echo.
	list := conv.Messages()
	if len(list) != 1 || !list[0].Pending() || list[0].Content != "hello" {
		t.Fatalf("expected pending optimistic entry, got %+v", list)
	}

	drainUntil(t, events, model.EventChatMessage)

	list = conv.Messages()
	if len(list) != 1 {
		t.Fatalf("expected 1 message after echo, got %d", len(list))
	}
	m := list[0]
	if m.ID != 99 || m.Content != "hello" || m.Sender.ID != 1 || m.CorrelationID != "" {
		t.Fatalf("echo not reconciled: %+v", m)
	}
}

func TestConversationPartnerAndTyping(t *testing.T) {
	history := []model.Message{{
		ID:      1,
		Sender:  model.User{ID: 2, Username: "bea"},
		Content: "hi",
		Participants: []model.User{
			{ID: 1, Username: "amy"},
			{ID: 2, Username: "bea"},
		},
	}}
	conv, events := openTestConversation(t, history)

	partner := conv.Partner()
	if partner == nil || partner.ID != 2 {
		t.Fatalf("partner not derived from history: %+v", partner)
	}

	if err := conv.SendTyping(); err != nil {
		t.Fatal(err)
	}
	drainUntil(t, events, model.EventTyping)

	who := conv.Typist()
	if who == nil || who.ID != 2 {
		t.Fatalf("expected partner typing, got %+v", who)
	}
}

func TestConversationTypingClearedByMessage(t *testing.T) {
	history := []model.Message{{
		ID:     1,
		Sender: model.User{ID: 2, Username: "bea"},
		Participants: []model.User{
			{ID: 1, Username: "amy"},
			{ID: 2, Username: "bea"},
		},
	}}
	conv, events := openTestConversation(t, history)

	conv.SendTyping()
	drainUntil(t, events, model.EventTyping)
	if conv.Typist() == nil {
		t.Fatal("typing indicator not set")
	}

	// The fake backend confirms with sender id 1, a different participant
	// than the typist, so the indicator must survive.
	conv.SendMessage("unrelated")
	drainUntil(t, events, model.EventChatMessage)
	if conv.Typist() == nil {
		t.Fatal("indicator cleared by a message from a different sender")
	}
}

func TestConversationDeleteConfirmed(t *testing.T) {
	history := []model.Message{
		{ID: 1, Sender: model.User{ID: 2}, Content: "keep"},
		{ID: 2, Sender: model.User{ID: 2}, Content: "drop"},
	}
	conv, _ := openTestConversation(t, history)

	if err := conv.DeleteMessage(context.Background(), 2); err != nil {
		t.Fatal(err)
	}

	list := conv.Messages()
	if len(list) != 1 || list[0].ID != 1 {
		t.Fatalf("unexpected list after delete: %+v", list)
	}
}

func TestConversationInitialPresenceApplied(t *testing.T) {
	conv, _ := openTestConversation(t, nil)

	// The presence frame pushed at connect time must not be lost, even
	// though it arrives before the caller has done anything.
	deadline := time.Now().Add(2 * time.Second)
	for !conv.presence.Online(2) {
		if time.Now().After(deadline) {
			t.Fatalf("presence frame from connect lost: %+v", conv.OnlineUsers())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConversationOpenRejectsExpiredToken(t *testing.T) {
	restURL, wsHost := startBackend(t, nil)
	cfg := config.Config{WSHost: wsHost}

	claims := &auth.Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend secret"))
	if err != nil {
		t.Fatal(err)
	}

	rest := api.NewClient(restURL, signed)
	if _, err := Open(context.Background(), cfg, rest, "42"); err == nil {
		t.Fatal("expected expired token to be rejected before dialing")
	}
}

func TestConversationTypingGuardedWhenNoPartner(t *testing.T) {
	conv, _ := openTestConversation(t, nil)

	// Empty history means no known partner; typing is a silent no-op.
	if err := conv.SendTyping(); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if conv.Typist() != nil {
		t.Fatal("typist set without any typing frame")
	}
}
