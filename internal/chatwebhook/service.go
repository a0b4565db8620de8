package chatwebhook

import (
	"context"
	"log/slog"
	"time"

	goslack "github.com/slack-go/slack"
)

// Service is a nil-safe ops-notification facade posting start/terminal
// events to an internal ops channel — distinct from Client.Deliver's
// user-facing stage-5 reply. Mirrors pkg/slack.Service.
// NotifySessionStarted/Completed: every method no-ops gracefully on a nil
// receiver or unconfigured token/channel, so callers never branch on
// whether notifications are enabled.
type Service struct {
	api     *goslack.Client
	channel string
}

// NewService returns nil if token or channel is empty, so call sites can
// always invoke methods on the result without a nil check.
func NewService(token, channel string) *Service {
	if token == "" || channel == "" {
		return nil
	}
	return &Service{api: goslack.New(token), channel: channel}
}

// NotifyStart posts a fire-and-log start notification for an analysis
// request. Never returns an error to the caller.
func (s *Service) NotifyStart(ctx context.Context, matchID, requesterID string) {
	if s == nil {
		return
	}
	s.post(ctx, "Analysis started for match "+matchID+" (requester "+requesterID+")")
}

// NotifyTerminal posts a fire-and-log terminal notification.
func (s *Service) NotifyTerminal(ctx context.Context, matchID string, status string, degraded bool) {
	if s == nil {
		return
	}
	msg := "Analysis " + status + " for match " + matchID
	if degraded {
		msg += " (degraded)"
	}
	s.post(ctx, msg)
}

func (s *Service) post(ctx context.Context, text string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, _, err := s.api.PostMessageContext(ctx, s.channel, goslack.MsgOptionText(text, false)); err != nil {
		slog.Default().Warn("chatwebhook ops notification failed", "error", err)
	}
}
