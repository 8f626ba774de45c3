package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/abdulazizbumar270-eng/feedback/pkg/api"
	"github.com/abdulazizbumar270-eng/feedback/pkg/chat"
	"github.com/abdulazizbumar270-eng/feedback/pkg/config"
	"github.com/abdulazizbumar270-eng/feedback/pkg/inbox"
	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

func main() {
	mode := flag.String("mode", "chat", "chat or inbox")
	username := flag.String("user", "", "username for login")
	password := flag.String("pass", "", "password for login")
	token := flag.String("token", "", "access token (skips login)")
	conversationID := flag.String("conversation", "", "conversation id (chat mode)")
	flag.Parse()

	cfg := config.Load()
	rest := api.NewClient(cfg.APIBaseURL, *token)

	ctx := context.Background()

	// 1. Authenticate
	if *token == "" {
		if *username == "" || *password == "" {
			log.Fatal("either -token or -user/-pass is required")
		}
		log.Printf("Logging in as %s...", *username)
		if _, err := rest.Login(ctx, *username, *password); err != nil {
			log.Fatal("Login failed: ", err)
		}
	}

	switch *mode {
	case "chat":
		runChat(ctx, cfg, rest, *conversationID)
	case "inbox":
		runInbox(ctx, cfg, rest)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runChat(ctx context.Context, cfg config.Config, rest *api.Client, conversationID string) {
	if conversationID == "" {
		// No conversation given: list the user's conversations and bail.
		conversations, err := rest.Conversations(ctx)
		if err != nil {
			log.Fatal("Failed to list conversations: ", err)
		}
		fmt.Println("Pick a conversation with -conversation:")
		for _, c := range conversations {
			names := make([]string, 0, len(c.Participants))
			for _, p := range c.Participants {
				names = append(names, p.Username)
			}
			fmt.Printf("  %d: %s\n", c.ID, strings.Join(names, ", "))
		}
		return
	}

	conv, err := chat.Open(ctx, cfg, rest, conversationID)
	if err != nil {
		log.Fatal("Failed to open conversation: ", err)
	}
	defer conv.Close()

	// 2. Render live frames as they are applied.
	conv.OnChange(func(event model.Event) {
		switch event.Type {
		case model.EventChatMessage:
			fmt.Printf("\r%s: %s\n> ", event.User.Username, event.Message)
		case model.EventTyping:
			if who := conv.Typist(); who != nil {
				fmt.Printf("\r%s is typing...\n> ", who.Username)
			}
		case model.EventOnlineStatus:
			online := conv.OnlineUsers()
			names := make([]string, 0, len(online))
			for _, u := range online {
				names = append(names, u.Username)
			}
			fmt.Printf("\ronline: %s\n> ", strings.Join(names, ", "))
		}
	})

	// 3. One-shot history load. A failure leaves the list empty but the
	// conversation stays live.
	if err := conv.LoadHistory(ctx); err != nil {
		log.Printf("Failed to load history: %v", err)
	}
	for _, m := range conv.Messages() {
		fmt.Printf("[%s] %s: %s\n",
			m.Timestamp.Format("15:04"), m.Sender.Username, m.Content)
	}
	if p := conv.Partner(); p != nil {
		fmt.Printf("Chatting with %s\n", p.Username)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	done := make(chan struct{})

	// 4. Read from stdin and send.
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			switch {
			case text == "":

			case text == "/quit":
				return

			case text == "/typing":
				if err := conv.SendTyping(); err != nil {
					log.Println("typing:", err)
				}

			case strings.HasPrefix(text, "/delete "):
				id, err := strconv.ParseInt(strings.TrimPrefix(text, "/delete "), 10, 64)
				if err != nil {
					fmt.Println("usage: /delete <message id>")
					break
				}
				if err := conv.DeleteMessage(ctx, id); err != nil {
					log.Println("delete:", err)
				}

			default:
				if err := conv.SendMessage(text); err != nil {
					log.Println("send:", err)
				}
			}
			fmt.Print("> ")
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("interrupt")
	}
	// Give the close handshake a moment before the process exits.
	conv.Close()
	time.Sleep(time.Second)
}

func runInbox(ctx context.Context, cfg config.Config, rest *api.Client) {
	if me, err := rest.CurrentUser(ctx); err == nil {
		fmt.Printf("Inbox for %s\n", me.Username)
	}

	feedbacks, err := rest.ListFeedbacks(ctx)
	if err != nil {
		log.Fatal("Failed to list feedbacks: ", err)
	}

	feed, err := inbox.Open(ctx, cfg, rest.Token())
	if err != nil {
		log.Fatal("Failed to open notification feed: ", err)
	}
	defer feed.Close()
	feed.Load(feedbacks)

	feed.OnChange(func(fb model.Feedback) {
		fmt.Printf("\rupdate: #%d %q is now %s", fb.ID, fb.Subject, fb.Status)
		if fb.AdminResponse != "" {
			fmt.Printf(" admin: %s", fb.AdminResponse)
		}
		fmt.Println()
	})

	for _, fb := range feed.Feedbacks() {
		fmt.Printf("#%d [%s] %s (%s)\n", fb.ID, fb.Status, fb.Subject, fb.Type)
		if fb.AdminResponse != "" {
			fmt.Printf("    admin: %s\n", fb.AdminResponse)
		}
	}
	fmt.Println("Waiting for updates, Ctrl-C to quit...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	log.Println("interrupt")
}
