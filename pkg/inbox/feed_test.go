package inbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abdulazizbumar270-eng/feedback/pkg/config"
	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

var testUpgrader = websocket.Upgrader{}

func TestFeedAppliesUpdates(t *testing.T) {
	update := map[string]any{
		"type": model.EventFeedbackUpdate,
		"feedback": map[string]any{
			"id":             2,
			"status":         "resolved",
			"admin_response": "shipped a fix",
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		// Re-send until the client hangs up; applying the same update
		// twice is idempotent, so the client can join at any time.
		for {
			if err := conn.WriteJSON(update); err != nil {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
	}))
	defer srv.Close()

	cfg := config.Config{WSHost: strings.TrimPrefix(srv.URL, "http://")}
	feed, err := Open(context.Background(), cfg, "tok")
	if err != nil {
		t.Fatal(err)
	}
	defer feed.Close()

	feed.Load([]model.Feedback{
		{ID: 1, Subject: "slow page", Status: model.StatusOpen},
		{ID: 2, Subject: "typo", Status: model.StatusOpen},
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		list := feed.Feedbacks()
		if len(list) == 2 && list[1].Status == model.StatusResolved {
			if list[1].Subject != "typo" || list[1].AdminResponse != "shipped a fix" {
				t.Fatalf("patch applied wrong: %+v", list[1])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("update never applied: %+v", list)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
