package bopmslack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/bcdannyboy/bopm/models"
	"github.com/bcdannyboy/bopm/tradier"
)

const priceUsage = "Usage: /price <maturity_years> <strike> <spot|symbol> <volatility> <rate> <steps>"

type PriceHandler struct {
	tradierToken string
}

func NewPriceHandler(tradierToken string) *PriceHandler {
	return &PriceHandler{tradierToken: tradierToken}
}

func (h *PriceHandler) HandleCommand(evt *socketmode.Event, client *socketmode.Client) error {
	data := evt.Data.(slack.SlashCommand)
	args := strings.Fields(data.Text)

	if len(args) != 6 {
		_, _, err := client.PostMessage(data.ChannelID,
			slack.MsgOptionText("Invalid number of arguments. "+priceUsage, false))
		return err
	}

	params, err := h.parseParams(args)
	if err != nil {
		_, _, perr := client.PostMessage(data.ChannelID,
			slack.MsgOptionText(fmt.Sprintf("%s\n%s", err.Error(), priceUsage), false))
		return perr
	}

	result, err := models.PriceBinomial(params)
	if err != nil {
		_, _, perr := client.PostMessage(data.ChannelID,
			slack.MsgOptionText(fmt.Sprintf("Pricing failed: %s", err.Error()), false))
		return perr
	}

	_, _, err = client.PostMessage(data.ChannelID,
		slack.MsgOptionText(FormatResult(params, result), false))
	return err
}

// parseParams reads the six command arguments. The spot argument may be a
// ticker symbol, resolved to its last close through Tradier.
func (h *PriceHandler) parseParams(args []string) (models.BinomialParams, error) {
	var params models.BinomialParams
	var err error

	params.TimeToMaturity, err = strconv.ParseFloat(args[0], 64)
	if err != nil {
		return params, fmt.Errorf("invalid maturity %q", args[0])
	}
	params.Strike, err = strconv.ParseFloat(args[1], 64)
	if err != nil {
		return params, fmt.Errorf("invalid strike %q", args[1])
	}

	params.Spot, err = strconv.ParseFloat(args[2], 64)
	if err != nil {
		if h.tradierToken == "" {
			return params, fmt.Errorf("invalid spot %q and no TRADIER_KEY configured for symbol lookup", args[2])
		}
		params.Spot, err = tradier.GET_LAST_CLOSE(strings.ToUpper(args[2]), h.tradierToken)
		if err != nil {
			return params, fmt.Errorf("failed to resolve spot for %q: %s", args[2], err.Error())
		}
	}

	params.Volatility, err = strconv.ParseFloat(args[3], 64)
	if err != nil {
		return params, fmt.Errorf("invalid volatility %q", args[3])
	}
	params.RiskFreeRate, err = strconv.ParseFloat(args[4], 64)
	if err != nil {
		return params, fmt.Errorf("invalid rate %q", args[4])
	}
	params.Steps, err = strconv.Atoi(args[5])
	if err != nil {
		return params, fmt.Errorf("invalid steps %q", args[5])
	}

	return params, nil
}

func FormatResult(params models.BinomialParams, result models.BinomialResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CRR lattice (%d steps, spot %.2f, strike %.2f):\n", params.Steps, params.Spot, params.Strike)
	fmt.Fprintf(&b, "Call Price: %.4f\n", result.CallPrice)
	fmt.Fprintf(&b, "Put Price: %.4f\n", result.PutPrice)
	fmt.Fprintf(&b, "Call Delta: %.4f\n", result.CallDelta)
	fmt.Fprintf(&b, "Put Delta: %.4f\n", result.PutDelta)
	fmt.Fprintf(&b, "Gamma: %.6f", result.CallGamma)
	if result.ArbitrageWarning {
		fmt.Fprintf(&b, "\n:warning: risk-neutral probability %.4f is outside [0,1]; lattice admits arbitrage", result.RiskNeutralProb)
	}
	return b.String()
}
