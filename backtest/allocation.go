package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/strategies"
)

// ErrBadAllocation is returned when allocation percentages do not sum to 100.
var ErrBadAllocation = errors.New("allocation percentages must sum to 100")

// allocationTolerance absorbs float rounding on percentage sums.
const allocationTolerance = 0.01

// Allocation assigns a slice of the total capital to one strategy.
type Allocation struct {
	Strategy string             `json:"strategy" yaml:"strategy"`
	Percent  float64            `json:"percent" yaml:"percent"`
	Params   map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// AllocationResult is the outcome of a multi-strategy run: one independent
// sub-run per allocation plus portfolio-level aggregates.
type AllocationResult struct {
	InitialCash float64
	FinalCash   float64
	TotalReturn float64
	ReturnPct   float64
	Runs        []*Result
}

// Allocator splits capital across strategies and runs each slice as an
// isolated backtest. Sub-runs share nothing: separate ledgers, separate
// engines, and each records under its own run id.
type Allocator struct {
	cfg      Config
	repo     market.BarRepository
	registry *strategies.Registry
	journal  journal.Journal
	log      *slog.Logger
}

// NewAllocator creates an Allocator. The journal may be nil for unpersisted
// runs.
func NewAllocator(cfg Config, repo market.BarRepository, registry *strategies.Registry, j journal.Journal, log *slog.Logger) *Allocator {
	if j == nil {
		j = journal.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Allocator{cfg: cfg, repo: repo, registry: registry, journal: j, log: log}
}

// ValidateAllocations checks that every percentage is positive and the total
// is 100 within tolerance.
func ValidateAllocations(allocs []Allocation) error {
	if len(allocs) == 0 {
		return fmt.Errorf("no allocations: %w", ErrBadAllocation)
	}
	total := 0.0
	for _, a := range allocs {
		if a.Percent <= 0 {
			return fmt.Errorf("%s: percent %.2f must be positive: %w", a.Strategy, a.Percent, ErrBadAllocation)
		}
		total += a.Percent
	}
	if math.Abs(total-100) > allocationTolerance {
		return fmt.Errorf("got %.2f: %w", total, ErrBadAllocation)
	}
	return nil
}

// Run validates the split, runs every slice concurrently and aggregates.
// A failing sub-run fails the whole allocation; completed siblings are still
// reported through their own journal records.
func (a *Allocator) Run(ctx context.Context, allocs []Allocation) (*AllocationResult, error) {
	if err := ValidateAllocations(allocs); err != nil {
		return nil, err
	}

	results := make([]*Result, len(allocs))
	errs := make([]error, len(allocs))

	var wg sync.WaitGroup
	for i, alloc := range allocs {
		wg.Add(1)
		go func(i int, alloc Allocation) {
			defer wg.Done()

			strat, err := a.registry.New(alloc.Strategy, alloc.Params)
			if err != nil {
				errs[i] = fmt.Errorf("allocation %s: %w", alloc.Strategy, err)
				return
			}

			cfg := a.cfg
			cfg.InitialCash = a.cfg.InitialCash * alloc.Percent / 100
			engine := New(cfg, a.repo, strat,
				WithJournal(a.journal),
				WithLogger(a.log.With("strategy", alloc.Strategy)))

			res, err := engine.Run(ctx)
			if err != nil {
				errs[i] = fmt.Errorf("allocation %s: %w", alloc.Strategy, err)
				return
			}
			results[i] = res
		}(i, alloc)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	agg := &AllocationResult{
		InitialCash: a.cfg.InitialCash,
		Runs:        results,
	}
	for _, r := range results {
		agg.FinalCash += r.FinalCash
	}
	agg.TotalReturn = agg.FinalCash - agg.InitialCash
	if agg.InitialCash > 0 {
		agg.ReturnPct = agg.TotalReturn / agg.InitialCash * 100
	}

	// Stable report order regardless of goroutine completion.
	sort.SliceStable(agg.Runs, func(i, j int) bool {
		return agg.Runs[i].Strategy < agg.Runs[j].Strategy
	})
	return agg, nil
}
