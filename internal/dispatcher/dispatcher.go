// Package dispatcher implements spec.md §4.1: validating an inbound
// analysis command, posting the deferred-interaction placeholder, and
// enqueueing an AnalysisRequest — all synchronously, before the worker
// pool ever sees the request. Grounded on
// pkg/services/session_service.go's CreateSession validate-then-write
// shape.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	goslack "github.com/slack-go/slack"

	"github.com/matchmind/matchmind/internal/chatwebhook"
	"github.com/matchmind/matchmind/internal/core"
	"github.com/matchmind/matchmind/internal/store"
)

// Command is the inbound request shape the chat platform's slash command
// delivers, per spec.md §6.
type Command struct {
	MatchID       string         `json:"match_id"`
	Region        string         `json:"region"`
	RequesterID   string         `json:"requester_id"`
	ApplicationID string         `json:"application_id"`
	Channel       string         `json:"channel"`
	UserProfile   map[string]any `json:"user_profile,omitempty"`
}

// Ack is returned synchronously to the chat platform — the deferred-reply
// acknowledgement, per spec.md §4.1.
type Ack struct {
	RequestID string
}

// Dispatcher validates and enqueues analysis commands.
type Dispatcher struct {
	placeholder *goslack.Client
	queue       *store.QueueService
}

// New constructs a Dispatcher. token is the bot token used to post the
// deferred placeholder message that Deliver later edits.
func New(token string, queue *store.QueueService) *Dispatcher {
	return &Dispatcher{placeholder: goslack.New(token), queue: queue}
}

// Dispatch validates cmd, posts the deferred placeholder, and enqueues an
// AnalysisRequest keyed on a freshly minted request id. Returns a
// core.ValidationError (never enqueued) if cmd fails validation, per
// spec.md §4.1/§7's "surfaced synchronously, never enqueued" policy.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Ack, error) {
	if err := validate(cmd); err != nil {
		return Ack{}, err
	}

	_, ts, err := d.placeholder.PostMessageContext(ctx, cmd.Channel,
		goslack.MsgOptionText("Analyzing match "+cmd.MatchID+"...", false))
	if err != nil {
		return Ack{}, fmt.Errorf("posting deferred placeholder: %w", err)
	}

	req := core.AnalysisRequest{
		RequestID:        uuid.NewString(),
		MatchID:          cmd.MatchID,
		Region:           cmd.Region,
		RequesterID:      cmd.RequesterID,
		InteractionToken: chatwebhook.EncodeToken(cmd.Channel, ts),
		ApplicationID:    cmd.ApplicationID,
		RequestedAt:      time.Now(),
		UserProfile:      cmd.UserProfile,
	}
	if err := d.queue.Enqueue(ctx, req); err != nil {
		return Ack{}, fmt.Errorf("enqueueing analysis request: %w", err)
	}
	return Ack{RequestID: req.RequestID}, nil
}

func validate(cmd Command) error {
	if cmd.MatchID == "" {
		return core.NewValidationError("match_id", "required")
	}
	if cmd.Region == "" {
		return core.NewValidationError("region", "required")
	}
	if cmd.RequesterID == "" {
		return core.NewValidationError("requester_id", "required")
	}
	if cmd.Channel == "" {
		return core.NewValidationError("channel", "required")
	}
	return nil
}
