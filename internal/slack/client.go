// Slack Web API client. Four calls are used: chat.postMessage,
// chat.postEphemeral, conversations.open (to address DMs), and users.info.
// All calls are fire-and-forget from the core's perspective: the caller gets
// call success/failure, never platform-side delivery confirmation.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holyguacamole/go-avocado-backend/internal/domain"
)

// ErrUserNotFound is returned by UserInfo when the platform does not know
// the account id.
var ErrUserNotFound = errors.New("slack: user not found")

// Attachment is the rich block attached to award and revocation DMs,
// carrying the original message text.
type Attachment struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Client talks to the Slack Web API with a bot token. The zero value is not
// usable; construct with NewClient.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient returns a Client for the given API base URL and bot token.
// Every call is bounded by a per-request timeout.
func NewClient(base, token string) *Client {
	return &Client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

// apiResponse is the common Web API result envelope.
type apiResponse struct {
	OK      bool     `json:"ok"`
	Error   string   `json:"error"`
	User    *Profile `json:"user"`
	Channel *struct {
		ID string `json:"id"`
	} `json:"channel"`
}

// PostMessage posts text (and optional attachments) to a channel.
func (c *Client) PostMessage(ctx context.Context, channel, text string, attachments ...Attachment) error {
	body := map[string]any{
		"channel": channel,
		"text":    text,
	}
	if len(attachments) > 0 {
		body["attachments"] = attachments
	}
	_, err := c.call(ctx, "chat.postMessage", body)
	return err
}

// PostEphemeral posts text visible only to user inside channel.
func (c *Client) PostEphemeral(ctx context.Context, channel, user, text string) error {
	_, err := c.call(ctx, "chat.postEphemeral", map[string]any{
		"channel": channel,
		"user":    user,
		"text":    text,
	})
	return err
}

// PostDirectMessage opens (or reuses) the DM conversation with user and
// posts text there.
func (c *Client) PostDirectMessage(ctx context.Context, user, text string, attachments ...Attachment) error {
	resp, err := c.call(ctx, "conversations.open", map[string]any{
		"users": user,
	})
	if err != nil {
		return err
	}
	if resp.Channel == nil || resp.Channel.ID == "" {
		return errors.New("slack: conversations.open returned no channel")
	}
	return c.PostMessage(ctx, resp.Channel.ID, text, attachments...)
}

// UserInfo resolves an account id to its identity, or ErrUserNotFound.
func (c *Client) UserInfo(ctx context.Context, userID string) (*domain.User, error) {
	u := fmt.Sprintf("%s/users.info?%s", c.base, url.Values{"user": {userID}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.do(req, "users.info")
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, ErrUserNotFound
	}
	user := resp.User.ToUser()
	return &user, nil
}

// call POSTs a JSON body to the named Web API method and decodes the result
// envelope, translating ok=false into an error.
func (c *Client) call(ctx context.Context, method string, body map[string]any) (*apiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(req, method)
}

func (c *Client) do(req *http.Request, method string) (*apiResponse, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("slack: %s: decode: %w", method, err)
	}
	if !out.OK {
		if out.Error == "user_not_found" || out.Error == "users_not_found" {
			return nil, ErrUserNotFound
		}
		log.Warn().Str("method", method).Str("error", out.Error).Msg("slack api call failed")
		return nil, fmt.Errorf("slack: %s: %s", method, out.Error)
	}
	return &out, nil
}
