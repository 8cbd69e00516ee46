// Package slacknotify posts finished diagnoses to a Slack channel.
package slacknotify

import (
	"context"
	"fmt"

	"github.com/nakamasato/dagster-diagnosis-agent/pkg/diagnose"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// API is the subset of the Slack client the notifier consumes.
type API interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts diagnosis results to one Slack channel.
type Notifier struct {
	api     API
	channel string
	logger  *zap.Logger
}

// New creates a notifier for the given bot token and channel.
func New(token, channel string, logger *zap.Logger) *Notifier {
	return &Notifier{
		api:     slack.New(token),
		channel: channel,
		logger:  logger,
	}
}

// NewWithAPI creates a notifier with an injected Slack API. Used in tests.
func NewWithAPI(api API, channel string, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, channel: channel, logger: logger}
}

// NotifyResult posts the rendered diagnosis. The caller may treat an error
// here as non-fatal; the diagnosis has already been produced.
func (n *Notifier) NotifyResult(ctx context.Context, result *diagnose.Result) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(result.Text(), false))
	if err != nil {
		return fmt.Errorf("failed to post diagnosis to %s: %w", n.channel, err)
	}
	n.logger.Info("Posted diagnosis to Slack",
		zap.String("channel", n.channel),
		zap.String("run_id", result.RunID))
	return nil
}
