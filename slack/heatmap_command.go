package bopmslack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/bcdannyboy/bopm/models"
	"github.com/bcdannyboy/bopm/sweep"
)

const (
	heatmapUsage  = "Usage: /heatmap <maturity_years> <strike> <spot|symbol> <volatility> <rate> <steps>"
	heatmapPoints = 10
	spotSpread    = 0.2
	volSpread     = 0.5
)

type HeatmapHandler struct {
	tradierToken string
}

func NewHeatmapHandler(tradierToken string) *HeatmapHandler {
	return &HeatmapHandler{tradierToken: tradierToken}
}

func (h *HeatmapHandler) HandleCommand(evt *socketmode.Event, client *socketmode.Client) error {
	data := evt.Data.(slack.SlashCommand)
	args := strings.Fields(data.Text)

	if len(args) != 6 {
		_, _, err := client.PostMessage(data.ChannelID,
			slack.MsgOptionText("Invalid number of arguments. "+heatmapUsage, false))
		return err
	}

	params, err := NewPriceHandler(h.tradierToken).parseParams(args)
	if err != nil {
		_, _, perr := client.PostMessage(data.ChannelID,
			slack.MsgOptionText(fmt.Sprintf("%s\n%s", err.Error(), heatmapUsage), false))
		return perr
	}

	_, ts, err := client.PostMessage(data.ChannelID,
		slack.MsgOptionText("Computing price heatmap...", false))
	if err != nil {
		return err
	}

	go runSweepWithProgress(client, data.ChannelID, ts, params)

	return nil
}

func runSweepWithProgress(client *socketmode.Client, channelID, timestamp string, params models.BinomialParams) {
	cfg := sweep.Config{
		TimeToMaturity: params.TimeToMaturity,
		Strike:         params.Strike,
		RiskFreeRate:   params.RiskFreeRate,
		Steps:          params.Steps,
		SpotRange:      sweep.RangeAround(params.Spot, spotSpread, heatmapPoints),
		VolRange:       sweep.RangeAround(params.Volatility, volSpread, heatmapPoints),
	}

	// The grid is assembled row by row so progress can be reported between
	// rows, each row being an independent single-volatility sweep.
	grid := &sweep.Grid{SpotRange: cfg.SpotRange, VolRange: cfg.VolRange}
	for i, vol := range cfg.VolRange {
		rowCfg := cfg
		rowCfg.VolRange = []float64{vol}
		row, err := sweep.Compute(rowCfg)
		if err != nil {
			client.PostMessage(channelID,
				slack.MsgOptionText(fmt.Sprintf("Heatmap failed: %s", err.Error()), false),
				slack.MsgOptionTS(timestamp))
			return
		}
		grid.Calls = append(grid.Calls, row.Calls[0])
		grid.Puts = append(grid.Puts, row.Puts[0])

		progress := (i + 1) * 100 / len(cfg.VolRange)
		if progress == 25 || progress == 50 || progress == 75 {
			client.PostMessage(channelID,
				slack.MsgOptionText(fmt.Sprintf("Heatmap %d%% complete...", progress), false),
				slack.MsgOptionTS(timestamp))
		}
	}

	client.PostMessage(channelID,
		slack.MsgOptionText(FormatGrid(grid), false),
		slack.MsgOptionTS(timestamp))
}

// FormatGrid renders the call-price grid as a fixed-width table,
// volatility rows by spot columns.
func FormatGrid(grid *sweep.Grid) string {
	var b strings.Builder
	b.WriteString("Call prices (rows: volatility, cols: spot)\n```\n")

	b.WriteString("  vol\\spot")
	for _, spot := range grid.SpotRange {
		fmt.Fprintf(&b, " %8.2f", spot)
	}
	b.WriteString("\n")

	for i, vol := range grid.VolRange {
		fmt.Fprintf(&b, "  %8.2f", vol)
		for _, call := range grid.Calls[i] {
			fmt.Fprintf(&b, " %8.2f", call)
		}
		b.WriteString("\n")
	}

	b.WriteString("```")
	return b.String()
}
