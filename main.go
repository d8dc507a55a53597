package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"

	"github.com/bcdannyboy/bopm/models"
	bopmslack "github.com/bcdannyboy/bopm/slack"
	"github.com/bcdannyboy/bopm/sweep"
)

const (
	defaultMaturity   = 2.0
	defaultStrike     = 90.0
	defaultSpot       = 100.0
	defaultVolatility = 0.2
	defaultRate       = 0.05
	defaultSteps      = 100

	heatmapPoints = 10
	spotSpread    = 0.2
	volSpread     = 0.5

	heatmapFile = "heatmaps.json"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file loaded, using environment and defaults")
	}

	if len(os.Args) > 1 && os.Args[1] == "slack" {
		runSlackBot()
		return
	}

	params := models.BinomialParams{
		TimeToMaturity: envFloat("BOPM_MATURITY", defaultMaturity),
		Strike:         envFloat("BOPM_STRIKE", defaultStrike),
		Spot:           envFloat("BOPM_SPOT", defaultSpot),
		Volatility:     envFloat("BOPM_VOLATILITY", defaultVolatility),
		RiskFreeRate:   envFloat("BOPM_RATE", defaultRate),
		Steps:          envInt("BOPM_STEPS", defaultSteps),
	}

	result, err := models.PriceBinomial(params)
	if err != nil {
		log.Fatalf("Pricing failed: %s", err)
	}

	fmt.Printf("CRR lattice with %d steps (u=%.6f, d=%.6f, q=%.6f)\n",
		params.Steps, result.Up, result.Down, result.RiskNeutralProb)
	fmt.Printf("Call Option Price: %f\n", result.CallPrice)
	fmt.Printf("Put Option Price: %f\n", result.PutPrice)
	fmt.Printf("Call Delta: %f\n", result.CallDelta)
	fmt.Printf("Put Delta: %f\n", result.PutDelta)
	fmt.Printf("Call Gamma: %f\n", result.CallGamma)
	fmt.Printf("Put Gamma: %f\n", result.PutGamma)
	if result.ArbitrageWarning {
		fmt.Printf("Warning: risk-neutral probability %.6f is outside [0,1]\n", result.RiskNeutralProb)
	}

	bsCall := models.BlackScholesCall(params.Spot, params.Strike, params.TimeToMaturity, params.RiskFreeRate, params.Volatility)
	bsPut := models.BlackScholesPut(params.Spot, params.Strike, params.TimeToMaturity, params.RiskFreeRate, params.Volatility)
	fmt.Printf("Black-Scholes reference: call %f, put %f\n", bsCall, bsPut)

	runHeatmap(params)
}

func runHeatmap(params models.BinomialParams) {
	cfg := sweep.Config{
		TimeToMaturity: params.TimeToMaturity,
		Strike:         params.Strike,
		RiskFreeRate:   params.RiskFreeRate,
		Steps:          params.Steps,
		SpotRange:      sweep.RangeAround(params.Spot, spotSpread, heatmapPoints),
		VolRange:       sweep.RangeAround(params.Volatility, volSpread, heatmapPoints),
	}

	numCPU := runtime.NumCPU()
	fmt.Printf("\nComputing %dx%d heatmap grids using %d CPUs\n", len(cfg.VolRange), len(cfg.SpotRange), numCPU)

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(cfg.VolRange)*len(cfg.SpotRange)),
		mpb.PrependDecorators(
			decor.Name("Progress"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	done := make(chan struct{})
	go sweep.MonitorCPUUsage(5*time.Second, done)

	start := time.Now()
	grid, err := sweep.ComputeParallel(cfg, numCPU, bar)
	close(done)
	if err != nil {
		log.Fatalf("Heatmap sweep failed: %s", err)
	}

	p.Wait()
	fmt.Printf("\nSweep complete. Total time: %v\n", time.Since(start))

	jgrid, err := json.Marshal(grid)
	if err != nil {
		fmt.Printf("Error marshalling heatmap grids: %s\n", err.Error())
		return
	}

	err = ioutil.WriteFile(heatmapFile, jgrid, 0644)
	if err != nil {
		fmt.Printf("Error writing to file %s: %s\n", heatmapFile, err.Error())
		return
	}

	fmt.Printf("Successfully wrote heatmap grids to %s\n", heatmapFile)
}

func runSlackBot() {
	appToken := os.Getenv("SLACK_APP_TOKEN")
	botToken := os.Getenv("SLACK_BOT_TOKEN")
	if appToken == "" || botToken == "" {
		log.Fatal("SLACK_APP_TOKEN and SLACK_BOT_TOKEN must be set for slack mode")
	}

	bot := bopmslack.NewSlackBot(appToken, botToken, os.Getenv("TRADIER_KEY"))
	if err := bot.Start(); err != nil {
		log.Fatalf("Slack bot stopped: %s", err)
	}
}

func envFloat(name string, fallback float64) float64 {
	if v := os.Getenv(name); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("invalid %s=%q: %s", name, v, err)
		}
		return f
	}
	return fallback
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid %s=%q: %s", name, v, err)
		}
		return i
	}
	return fallback
}
