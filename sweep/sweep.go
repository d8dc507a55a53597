package sweep

import (
	"fmt"
	"sync"

	mpb "github.com/vbauerster/mpb/v7"

	"github.com/bcdannyboy/bopm/models"
)

// Config describes a heatmap sweep: the spot and volatility axes vary per
// cell, everything else is held fixed across the grid.
type Config struct {
	TimeToMaturity float64
	Strike         float64
	RiskFreeRate   float64
	Steps          int
	SpotRange      []float64 // Column axis, ordered
	VolRange       []float64 // Row axis, ordered
}

// Grid holds the sweep output, row-major by volatility then spot:
// Calls[i][j] prices VolRange[i] against SpotRange[j].
type Grid struct {
	SpotRange []float64
	VolRange  []float64
	Calls     [][]float64
	Puts      [][]float64
}

type cell struct {
	row, col  int
	vol, spot float64
}

func (c Config) validate() error {
	if len(c.SpotRange) == 0 || len(c.VolRange) == 0 {
		return fmt.Errorf("%w: sweep requires non-empty spot and volatility ranges", models.ErrInvalidParams)
	}
	return nil
}

func (c Config) cellParams(vol, spot float64) models.BinomialParams {
	return models.BinomialParams{
		TimeToMaturity: c.TimeToMaturity,
		Strike:         c.Strike,
		Spot:           spot,
		Volatility:     vol,
		RiskFreeRate:   c.RiskFreeRate,
		Steps:          c.Steps,
	}
}

// Compute runs the sweep sequentially, one independent pricing call per
// cell. No state is shared across cells.
func Compute(cfg Config) (*Grid, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	grid := newGrid(cfg)
	for i, vol := range cfg.VolRange {
		for j, spot := range cfg.SpotRange {
			res, err := models.PriceBinomial(cfg.cellParams(vol, spot))
			if err != nil {
				return nil, fmt.Errorf("sweep cell vol=%v spot=%v: %w", vol, spot, err)
			}
			grid.Calls[i][j] = res.CallPrice
			grid.Puts[i][j] = res.PutPrice
		}
	}
	return grid, nil
}

// ComputeParallel runs the same sweep over a worker pool. Cells are
// independent and each worker writes its own grid slot by index, so the
// output is identical to Compute. bar may be nil; when set it is
// incremented once per finished cell.
func ComputeParallel(cfg Config, numWorkers int, bar *mpb.Bar) (*Grid, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	grid := newGrid(cfg)
	cells := make(chan cell, len(cfg.VolRange)*len(cfg.SpotRange))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range cells {
				res, err := models.PriceBinomial(cfg.cellParams(c.vol, c.spot))
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("sweep cell vol=%v spot=%v: %w", c.vol, c.spot, err)
					}
					mu.Unlock()
					continue
				}
				grid.Calls[c.row][c.col] = res.CallPrice
				grid.Puts[c.row][c.col] = res.PutPrice
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}

	for i, vol := range cfg.VolRange {
		for j, spot := range cfg.SpotRange {
			cells <- cell{row: i, col: j, vol: vol, spot: spot}
		}
	}
	close(cells)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return grid, nil
}

// RangeAround builds an n-point linear range spanning center*(1-fraction)
// to center*(1+fraction), the default heatmap axes (spot +-20%, vol +-50%).
func RangeAround(center, fraction float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	lo := center * (1 - fraction)
	hi := center * (1 + fraction)
	if n == 1 {
		return []float64{center}
	}

	points := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range points {
		points[i] = lo + float64(i)*step
	}
	return points
}

func newGrid(cfg Config) *Grid {
	grid := &Grid{
		SpotRange: cfg.SpotRange,
		VolRange:  cfg.VolRange,
		Calls:     make([][]float64, len(cfg.VolRange)),
		Puts:      make([][]float64, len(cfg.VolRange)),
	}
	for i := range cfg.VolRange {
		grid.Calls[i] = make([]float64, len(cfg.SpotRange))
		grid.Puts[i] = make([]float64, len(cfg.SpotRange))
	}
	return grid
}
