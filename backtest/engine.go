package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/pkg/id"
	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

// ErrNoData is returned when the repository has no bars for the requested
// symbols and date range. It is raised before the simulation loop starts.
var ErrNoData = errors.New("no historical bars for requested symbols/range")

// ErrRunFinished is returned when Run is called on an engine that already
// ran: engines are single-use, one per run.
var ErrRunFinished = errors.New("engine has already run")

// Status is the run lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Config describes one backtest run.
type Config struct {
	Symbols     []string       `json:"symbols" yaml:"symbols"`
	Start       time.Time      `json:"start" yaml:"start"`
	End         time.Time      `json:"end" yaml:"end"`
	InitialCash float64        `json:"initial-cash" yaml:"initial-cash"`
	Exec        sim.ExecConfig `json:"execution" yaml:"execution"`
	Risk        risk.Config    `json:"risk" yaml:"risk"`
}

// Engine runs one backtest. It is single-use and not safe for concurrent
// calls; independent runs each get their own engine and may then execute in
// parallel.
type Engine struct {
	cfg      Config
	repo     market.BarRepository
	strategy strategies.Strategy
	journal  journal.Journal
	log      *slog.Logger

	runID  string
	status Status
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal sets the persistence sink. Without it the run is not
// persisted.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine in the PENDING state. Nothing is fetched until Run.
func New(cfg Config, repo market.BarRepository, strategy strategies.Strategy, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		repo:     repo,
		strategy: strategy,
		journal:  journal.Nop{},
		log:      slog.Default(),
		runID:    id.New(),
		status:   StatusPending,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunID returns the run's identifier.
func (e *Engine) RunID() string { return e.runID }

// Status returns the current lifecycle state.
func (e *Engine) Status() Status { return e.status }

// Run executes the simulation loop and returns the frozen result.
//
// Fatal conditions (no data, persistence failure, cancellation) transition
// the run to FAILED exactly once and are returned to the caller. A strategy
// error on a single day is recovered: that day contributes no proposals and
// the loop continues.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.status != StatusPending {
		return nil, ErrRunFinished
	}
	e.status = StatusRunning

	if err := e.journal.RunStarted(e.runID, e.strategy.Name(), e.cfg.Symbols); err != nil {
		return nil, e.fail(fmt.Errorf("journal run start: %w", err))
	}

	bars, err := e.repo.Query(e.cfg.Symbols, e.cfg.Start, e.cfg.End)
	if err != nil {
		return nil, e.fail(fmt.Errorf("load bars: %w", err))
	}
	if len(bars) == 0 {
		return nil, e.fail(fmt.Errorf("%v %s..%s: %w",
			e.cfg.Symbols, e.cfg.Start.Format("2006-01-02"), e.cfg.End.Format("2006-01-02"), ErrNoData))
	}
	market.SortBars(bars)
	dates, byDate := market.GroupByDate(bars)

	riskCfg := e.cfg.Risk
	if override, ok := e.strategy.(strategies.RiskOverride); ok {
		riskCfg = override.RiskConfig()
	}
	riskMgr := risk.NewManager(riskCfg)

	ledger := sim.NewLedger(e.cfg.InitialCash)
	executor := sim.NewExecutor(ledger, e.cfg.Exec)
	history := market.NewHistory()

	var (
		trades    []sim.Trade
		values    []float64
		returns   []float64
		prevValue = e.cfg.InitialCash
	)

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(fmt.Errorf("run cancelled: %w", err))
		}

		dayBars := make(map[string]market.Bar, len(byDate[date]))
		closes := make(map[string]float64, len(byDate[date]))
		for _, b := range byDate[date] {
			history.Append(b)
			dayBars[b.Symbol] = b
			closes[b.Symbol] = b.Close
		}

		ledger.MarkToMarket(closes)

		// Risk manager runs first; a forced exit silences the strategy's
		// own signal for that symbol today.
		suppressed := make(map[string]bool)
		for _, exit := range riskMgr.Check(ledger.Positions(), closes) {
			suppressed[exit.Symbol] = true
			if err := e.apply(executor, exit, date, &trades); err != nil {
				return nil, e.fail(err)
			}
		}

		proposals := e.decide(strategies.Context{
			Date:      date,
			Bars:      dayBars,
			Cash:      ledger.Cash(),
			Positions: ledger.Positions(),
			History:   history,
		})

		for _, p := range proposals {
			if suppressed[p.Symbol] {
				e.log.Debug("signal suppressed by forced exit",
					"run", e.runID, "symbol", p.Symbol, "date", date)
				continue
			}
			if err := sim.Validate(p, e.cfg.Exec, ledger.Cash(), ledger.Positions()); err != nil {
				e.log.Debug("trade rejected", "run", e.runID, "reason", err)
				continue
			}
			if err := e.apply(executor, p, date, &trades); err != nil {
				return nil, e.fail(err)
			}
		}

		value := ledger.Value()
		dailyReturn := 0.0
		if prevValue > 0 {
			dailyReturn = (value - prevValue) / prevValue
		}
		values = append(values, value)
		returns = append(returns, dailyReturn)
		prevValue = value

		if err := e.journal.RecordEquity(journal.EquitySnapshot{
			RunID:       e.runID,
			Date:        date,
			Cash:        ledger.Cash(),
			Value:       value,
			DailyReturn: dailyReturn,
		}); err != nil {
			return nil, e.fail(fmt.Errorf("journal equity: %w", err))
		}
	}

	result := e.summarize(dates, trades, values, returns, ledger)

	if err := e.journal.RunCompleted(runRecord(result)); err != nil {
		return nil, e.fail(fmt.Errorf("journal run complete: %w", err))
	}

	e.status = StatusCompleted
	return result, nil
}

// apply executes one proposal against the ledger, appends the fill to the
// trade log and journals it. An execution rejection is recovered; only
// journal failures are fatal.
func (e *Engine) apply(executor *sim.Executor, p sim.Proposed, date time.Time, trades *[]sim.Trade) error {
	trade, err := executor.Execute(p, date)
	if err != nil {
		e.log.Debug("execution rejected", "run", e.runID, "reason", err)
		return nil
	}

	*trades = append(*trades, trade)
	if err := e.journal.RecordTrade(journal.TradeRecord{
		RunID:      e.runID,
		Seq:        len(*trades) - 1,
		Symbol:     trade.Symbol,
		Side:       string(trade.Side),
		Quantity:   trade.Quantity,
		Price:      trade.Price,
		Date:       trade.Date,
		Commission: trade.Commission,
		Reason:     trade.Reason,
	}); err != nil {
		return fmt.Errorf("journal trade: %w", err)
	}
	return nil
}

// decide isolates the strategy call: an error or panic inside Decide is
// logged and treated as "no proposals today".
func (e *Engine) decide(ctx strategies.Context) (proposals []sim.Proposed) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("strategy panicked",
				"run", e.runID, "strategy", e.strategy.Name(), "date", ctx.Date, "panic", r)
			proposals = nil
		}
	}()

	proposals, err := e.strategy.Decide(ctx)
	if err != nil {
		e.log.Warn("strategy error",
			"run", e.runID, "strategy", e.strategy.Name(), "date", ctx.Date, "err", err)
		return nil
	}
	return proposals
}

func (e *Engine) summarize(dates []time.Time, trades []sim.Trade, values, returns []float64, ledger *sim.Ledger) *Result {
	final := ledger.Value()
	totalReturn := final - e.cfg.InitialCash
	returnPct := 0.0
	if e.cfg.InitialCash > 0 {
		returnPct = totalReturn / e.cfg.InitialCash * 100
	}

	stats := computeTradeStats(trades)

	return &Result{
		RunID:    e.runID,
		Strategy: e.strategy.Name(),
		Symbols:  e.cfg.Symbols,
		Start:    dates[0],
		End:      dates[len(dates)-1],

		InitialCash:        e.cfg.InitialCash,
		FinalCash:          final,
		TotalReturn:        totalReturn,
		TotalReturnPercent: returnPct,

		MaxDrawdown:   MaxDrawdown(values),
		SharpeRatio:   SharpeRatio(returns),
		WinRate:       stats.winRate,
		TotalTrades:   len(trades),
		WinningTrades: stats.winning,
		LosingTrades:  stats.losing,
		AvgWin:        stats.avgWin,
		AvgLoss:       stats.avgLoss,
		ProfitFactor:  stats.profitFactor,

		Trades:          trades,
		DailyReturns:    returns,
		PortfolioValues: values,
	}
}

// fail transitions to FAILED exactly once, best-effort notifies the sink
// and returns the cause for the caller.
func (e *Engine) fail(cause error) error {
	if e.status != StatusFailed {
		e.status = StatusFailed
		if err := e.journal.RunFailed(e.runID, cause.Error()); err != nil {
			e.log.Warn("journal run failed notification", "run", e.runID, "err", err)
		}
	}
	e.log.Error("backtest failed", "run", e.runID, "err", cause)
	return cause
}

func runRecord(r *Result) journal.RunRecord {
	return journal.RunRecord{
		RunID:          r.RunID,
		Status:         journal.StatusCompleted,
		Strategy:       r.Strategy,
		Symbols:        strings.Join(r.Symbols, ","),
		Start:          r.Start,
		End:            r.End,
		InitialCash:    r.InitialCash,
		FinalCash:      r.FinalCash,
		TotalReturn:    r.TotalReturn,
		TotalReturnPct: r.TotalReturnPercent,
		MaxDrawdown:    r.MaxDrawdown,
		SharpeRatio:    r.SharpeRatio,
		WinRate:        r.WinRate,
		TotalTrades:    r.TotalTrades,
		WinningTrades:  r.WinningTrades,
		LosingTrades:   r.LosingTrades,
		AvgWin:         r.AvgWin,
		AvgLoss:        r.AvgLoss,
		ProfitFactor:   r.ProfitFactor,
	}
}
