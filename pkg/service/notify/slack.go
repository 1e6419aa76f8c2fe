package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/secmon-lab/briareus/pkg/domain/model"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// levelColors maps a risk level to a Slack attachment color
var levelColors = map[types.RiskLevel]string{
	types.RiskLevelLow:      "#2eb67d",
	types.RiskLevelMedium:   "#ecb22e",
	types.RiskLevelHigh:     "#e01e5a",
	types.RiskLevelCritical: "#8b0000",
}

// slackNotifier posts to a single channel via the Slack Web API
type slackNotifier struct {
	api       *slack.Client
	channelID string
}

// Option is a functional option for the Slack notifier
type Option func(*slackNotifier)

// NewSlack creates a Slack-backed notification service
func NewSlack(token, channelID string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	n := &slackNotifier{
		api:       slack.New(token),
		channelID: channelID,
	}
	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

func (n *slackNotifier) post(ctx context.Context, text string, attachment *slack.Attachment) error {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if attachment != nil {
		options = append(options, slack.MsgOptionAttachments(*attachment))
	}

	if _, _, err := n.api.PostMessageContext(ctx, n.channelID, options...); err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("channel", n.channelID))
	}
	return nil
}

func (n *slackNotifier) NotifyRiskEscalated(ctx context.Context, risk *model.Risk) error {
	attachment := &slack.Attachment{
		Color: levelColors[risk.Level],
		Fields: []slack.AttachmentField{
			{Title: "Code", Value: risk.Code, Short: true},
			{Title: "Level", Value: risk.Level.String(), Short: true},
			{Title: "Score", Value: risk.Score.String(), Short: true},
			{Title: "Severity", Value: risk.Severity.String(), Short: true},
		},
	}
	return n.post(ctx, fmt.Sprintf(":rotating_light: Risk escalated: %s", risk.Title), attachment)
}

func (n *slackNotifier) NotifyAccountApproved(ctx context.Context, account *model.Account) error {
	text := fmt.Sprintf(":white_check_mark: Account approved: %s (%s) as %s",
		account.Name, account.Email, account.RoleID)
	return n.post(ctx, text, nil)
}

func (n *slackNotifier) NotifyReviewDue(ctx context.Context, risk *model.Risk) error {
	text := fmt.Sprintf(":calendar: Review due for %s: %s (owner: %s)",
		risk.Code, risk.Title, risk.OwnerID)
	return n.post(ctx, text, nil)
}
