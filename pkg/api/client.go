// Package api is the thin client for the collaborating REST backend. These
// are plain request/response calls with no invariants of their own; the
// real-time engine consumes them for the one-shot history load and for
// confirmed deletes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL. token may be empty
// until Login supplies one.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken replaces the bearer token attached to every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current access token.
func (c *Client) Token() string {
	return c.token
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login obtains an access token and installs it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/token/", loginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return "", err
	}
	c.token = resp.Access
	return resp.Access, nil
}

// CurrentUser returns the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, "/auth/me/", nil, &u)
	return u, err
}

// Conversations lists the current user's conversations.
func (c *Client) Conversations(ctx context.Context) ([]model.Conversation, error) {
	var out []model.Conversation
	err := c.do(ctx, http.MethodGet, "/conversations/", nil, &out)
	return out, err
}

// Messages returns a conversation's history in server order, participants
// embedded on each message.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var out []model.Message
	err := c.do(ctx, http.MethodGet, "/conversations/"+conversationID+"/messages/", nil, &out)
	return out, err
}

// DeleteMessage deletes one message. The backend signals success with a
// no-content status.
func (c *Client) DeleteMessage(ctx context.Context, conversationID string, messageID int64) error {
	path := fmt.Sprintf("/conversations/%s/messages/%d/", conversationID, messageID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SubmitFeedback creates a feedback entry.
func (c *Client) SubmitFeedback(ctx context.Context, fb model.Feedback) (model.Feedback, error) {
	var out model.Feedback
	err := c.do(ctx, http.MethodPost, "/feedback/", fb, &out)
	return out, err
}

// ListFeedbacks returns the current user's feedback entries.
func (c *Client) ListFeedbacks(ctx context.Context) ([]model.Feedback, error) {
	var out []model.Feedback
	err := c.do(ctx, http.MethodGet, "/feedback/", nil, &out)
	return out, err
}

// UpdateFeedback patches a feedback entry; admins use it to set status and
// admin_response.
func (c *Client) UpdateFeedback(ctx context.Context, id int64, patch model.Feedback) (model.Feedback, error) {
	var out model.Feedback
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/feedback/%d/", id), patch, &out)
	return out, err
}

// do runs one request, attaching the bearer token and decoding a JSON body
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("api: %s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s response: %w", path, err)
	}
	return nil
}
