// Package chatwebhook implements the Deliver-stage collaborator: a single
// PATCH-style edit against the chat platform's deferred-interaction
// endpoint, per spec.md §4.7/§6.
//
// Transport is github.com/slack-go/slack, modeled on the teacher's
// pkg/slack/client.go — a PATCH-style webhook edit is exactly chat.update
// semantics once a message already exists, so the dispatcher posts the
// deferred placeholder via chat.postMessage and encodes its channel+ts as
// the opaque interaction_token this client later edits.
package chatwebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goslack "github.com/slack-go/slack"
)

// DeliveryOutcome is the Deliver-stage result, per spec.md §4.7's contract:
// `deliver(token, payload) -> ok | token_expired | transient_error`.
type DeliveryOutcome string

const (
	OutcomeOK             DeliveryOutcome = "ok"
	OutcomeTokenExpired   DeliveryOutcome = "token_expired"
	OutcomeTransientError DeliveryOutcome = "transient_error"
)

// Payload is the opaque byte buffer constructed by the renderer outside
// the core; the core never inspects its shape beyond decoding it into
// Slack blocks for delivery. It carries a minimal embed-like structure.
type Payload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Footer      string   `json:"footer,omitempty"`
	Fields      []string `json:"fields,omitempty"`
}

// Client performs the single, non-retried PATCH delivery.
type Client struct {
	api     *goslack.Client
	timeout time.Duration
}

// NewClient constructs a chatwebhook.Client.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{api: goslack.New(token), timeout: timeout}
}

// Deliver edits the message identified by the opaque interaction_token
// (format "channel:ts", produced when the dispatcher posted the deferred
// placeholder) with payload's rendered content. It never retries: retries
// risk double-editing, per spec.md §4.7.
func (c *Client) Deliver(ctx context.Context, token string, payload []byte) (DeliveryOutcome, error) {
	channel, ts, err := decodeToken(token)
	if err != nil {
		return OutcomeTokenExpired, fmt.Errorf("decoding interaction token: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return OutcomeTransientError, fmt.Errorf("decoding delivery payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	block := goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType, renderText(p), false, false), nil, nil)
	_, _, _, err = c.api.UpdateMessageContext(ctx, channel, ts, goslack.MsgOptionBlocks(block))
	if err == nil {
		return OutcomeOK, nil
	}

	if isTokenExpired(err) {
		return OutcomeTokenExpired, nil
	}
	return OutcomeTransientError, fmt.Errorf("chat.update failed: %w", err)
}

func renderText(p Payload) string {
	var sb strings.Builder
	sb.WriteString("*" + p.Title + "*\n")
	sb.WriteString(p.Description)
	for _, f := range p.Fields {
		sb.WriteString("\n" + f)
	}
	if p.Footer != "" {
		sb.WriteString("\n_" + p.Footer + "_")
	}
	return sb.String()
}

func decodeToken(token string) (channel, ts string, err error) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed interaction token")
	}
	return parts[0], parts[1], nil
}

// EncodeToken builds the opaque interaction_token from a channel and
// message timestamp. The dispatcher calls this immediately after posting
// the deferred placeholder.
func EncodeToken(channel, ts string) string {
	return channel + ":" + ts
}

// isTokenExpired reports whether the Slack error indicates the message (or
// channel) is gone — the token_expired signal spec.md §4.7/§8 maps to
// webhook-PATCH HTTP 404.
func isTokenExpired(err error) bool {
	msg := err.Error()
	for _, s := range []string{"message_not_found", "channel_not_found", "thread_not_found", "not_in_channel"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
