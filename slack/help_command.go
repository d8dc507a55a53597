package bopmslack

import (
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

type HelpHandler struct{}

func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

func (h *HelpHandler) HandleCommand(evt *socketmode.Event, client *socketmode.Client) error {
	data := evt.Data.(slack.SlashCommand)
	helpText := "Available commands:\n" +
		"/help - Show this help message\n" +
		"/price <maturity_years> <strike> <spot|symbol> <volatility> <rate> <steps> - Price a European call/put on a CRR lattice\n" +
		"/heatmap <maturity_years> <strike> <spot|symbol> <volatility> <rate> <steps> - Price grid over spot/volatility ranges"

	_, _, err := client.PostMessage(data.ChannelID,
		slack.MsgOptionText(helpText, false))
	return err
}
