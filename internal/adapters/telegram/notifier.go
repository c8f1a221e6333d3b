package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/metrics"
	"insideredge/pkg/logger"
)

// Broadcaster delivers one text to many chats
type Broadcaster interface {
	BroadcastMessage(ctx context.Context, chatIDs []int64, text string) error
}

// maxAlertClusters caps the clusters listed in one message
const maxAlertClusters = 5

// FlowNotifier alerts configured chats about INVESTIGATE clusters
type FlowNotifier struct {
	bot     Broadcaster
	chatIDs []int64
	log     *logger.Logger
}

// NewFlowNotifier creates a new flow notifier
func NewFlowNotifier(bot Broadcaster, chatIDs []int64, log *logger.Logger) *FlowNotifier {
	return &FlowNotifier{
		bot:     bot,
		chatIDs: chatIDs,
		log:     log.With("component", "flow_notifier"),
	}
}

// NotifyInvestigations sends one message per report holding at least one
// INVESTIGATE cluster. It reports whether a message was sent.
func (n *FlowNotifier) NotifyInvestigations(ctx context.Context, report *optionsflow.Report) (bool, error) {
	if report == nil || len(n.chatIDs) == 0 {
		return false, nil
	}

	text := FormatInvestigations(report)
	if text == "" {
		return false, nil
	}

	err := n.bot.BroadcastMessage(ctx, n.chatIDs, text)
	metrics.RecordNotification(err)
	if err != nil {
		return false, err
	}

	n.log.Infow("Flow alert sent", "ticker", report.Ticker, "chats", len(n.chatIDs))
	return true, nil
}

// FormatInvestigations renders the INVESTIGATE clusters of a report as
// Markdown, or returns "" when there are none
func FormatInvestigations(report *optionsflow.Report) string {
	var hits []optionsflow.ClusterAnalysis
	for _, c := range report.Clusters {
		if c.Action == optionsflow.ActionInvestigate {
			hits = append(hits, c)
		}
	}
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* options flow: %d cluster(s) to investigate\n",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, report.Ticker), len(hits))

	for i, c := range hits {
		if i == maxAlertClusters {
			fmt.Fprintf(&b, "\n_+%d more_\n", len(hits)-maxAlertClusters)
			break
		}

		b.WriteString("\n")
		b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, c.Label))
		if c.Tag != optionsflow.TagNone {
			fmt.Fprintf(&b, " `%s`", c.Tag)
		}
		fmt.Fprintf(&b, "\n$%s premium, %.0f%% at the ask, %s\n",
			humanize.Comma(int64(c.Cluster.PremiumTotal)),
			c.Cluster.AskRatio*100,
			tgbotapi.EscapeText(tgbotapi.ModeMarkdown, string(c.Intent)),
		)
		if c.Cluster.DaysToExpiry != nil {
			fmt.Fprintf(&b, "%dd to expiry\n", *c.Cluster.DaysToExpiry)
		}
	}

	b.WriteString("\n")
	b.WriteString(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, report.Summary))
	return b.String()
}
