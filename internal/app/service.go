package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/mitchellsummers5280-alt/spx-algo-app/config"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/candles"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/entry"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/exit"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/journal"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/ports"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/sessions"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/sweeps"
	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/trend"
)

const reseedInterval = time.Hour

// Service orchestrates the signal engine: it polls the market data feed,
// maintains candle buffers, and runs the evaluation pipeline
// (levels -> sweeps -> trend -> entry -> exit) on a fixed cadence.
// All mutable state lives behind a single mutex; the evaluation loop is the
// only writer of trade state.
type Service struct {
	cfg     *config.Config
	logger  ports.Logger
	feed    ports.MarketDataClient
	journal ports.JournalRepository

	clock         *sessions.Clock
	levelEngine   *sessions.Engine
	tradingWindow sessions.Window
	agg           *candles.Aggregator
	machine       *entry.Machine
	exitEval      *exit.Evaluator
	trendCfg      trend.Config

	mu            sync.Mutex
	ticker        string // resolved futures contract
	lastPrice     *float64
	position      *domain.LiveTrade
	pending       *domain.PendingEntry
	cooldownUntil time.Time
	tradesToday   int
	dayKey        string
	lastSeed      time.Time
	evalRunning   bool
	snapshot      domain.Snapshot
}

// New creates the application service.
func New(
	cfg *config.Config,
	logger ports.Logger,
	feed ports.MarketDataClient,
	journal ports.JournalRepository,
) (*Service, error) {
	if cfg == nil || logger == nil || feed == nil || journal == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}

	clock, err := sessions.NewClock(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	windows, err := buildWindows(cfg)
	if err != nil {
		return nil, err
	}
	tradingWindow, err := buildWindow(cfg.TradingStart, cfg.TradingEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid trading window: %w", err)
	}

	return &Service{
		cfg:           cfg,
		logger:        logger,
		feed:          feed,
		journal:       journal,
		clock:         clock,
		levelEngine:   sessions.NewEngine(clock, windows, time.Duration(cfg.HistoryHours)*time.Hour),
		tradingWindow: tradingWindow,
		agg:           candles.New(),
		machine: entry.New(entry.Config{
			ArmTimeout:      time.Duration(cfg.ArmTimeoutMinutes) * time.Minute,
			MaxTradesPerDay: cfg.MaxTradesPerDay,
		}),
		exitEval: exit.New(exit.Config{
			TakeProfitPoints: cfg.TakeProfitPoints,
			StopLossPoints:   cfg.StopLossPoints,
			MaxHoldDuration:  time.Duration(cfg.MaxHoldMinutes) * time.Minute,
		}),
		trendCfg: trend.Config{
			ShortPeriod:  cfg.EMAShortPeriod,
			LongPeriod:   cfg.EMALongPeriod,
			ATHTolerance: cfg.ATHTolerance,
		},
	}, nil
}

func buildWindows(cfg *config.Config) (sessions.Windows, error) {
	asia, err := buildWindow(cfg.SessionAsiaStart, cfg.SessionAsiaEnd)
	if err != nil {
		return sessions.Windows{}, fmt.Errorf("invalid asia window: %w", err)
	}
	london, err := buildWindow(cfg.SessionLondonStart, cfg.SessionLondonEnd)
	if err != nil {
		return sessions.Windows{}, fmt.Errorf("invalid london window: %w", err)
	}
	ny, err := buildWindow(cfg.SessionNYStart, cfg.SessionNYEnd)
	if err != nil {
		return sessions.Windows{}, fmt.Errorf("invalid new york window: %w", err)
	}
	return sessions.Windows{Asia: asia, London: london, NY: ny}, nil
}

func buildWindow(start, end string) (sessions.Window, error) {
	startMin, err := sessions.MinutesOfDay(start)
	if err != nil {
		return sessions.Window{}, err
	}
	endMin, err := sessions.MinutesOfDay(end)
	if err != nil {
		return sessions.Window{}, err
	}
	return sessions.Window{StartMin: startMin, EndMin: endMin}, nil
}

// Start runs the engine until the context is canceled or a termination
// signal arrives.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting signal engine", map[string]interface{}{
		"symbol": s.cfg.Symbol, "productCode": s.cfg.ProductCode,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	// Initial contract resolution and history seed are fatal: the engine
	// cannot evaluate anything without them.
	if err := s.seedHistory(ctx); err != nil {
		s.logger.Error(ctx, err, "Initial history seed failed")
		return fmt.Errorf("initial history seed failed: %w", err)
	}

	tradesCount, err := s.journal.CountToday(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to count today's journal entries")
		return fmt.Errorf("failed to count today's trades: %w", err)
	}
	s.mu.Lock()
	s.tradesToday = tradesCount
	s.mu.Unlock()
	s.logger.Info(ctx, "Initial state synchronized", map[string]interface{}{"tradesToday": tradesCount})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.pollLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.evalLoop(ctx)
	}()

	<-ctx.Done()
	wg.Wait()

	if stats, err := s.Stats(context.Background()); err == nil && stats.TotalTrades > 0 {
		s.logger.Info(context.Background(), "Session summary", map[string]interface{}{
			"trades": stats.TotalTrades, "winRate": stats.WinRate, "totalPnLPoints": stats.TotalPnLPoints,
		})
	}
	s.logger.Info(context.Background(), "Signal engine stopped")
	return nil
}

// pollLoop fetches the last price on a fixed interval and re-seeds candle
// history periodically. Feed failures keep the last known good price.
func (s *Service) pollLoop(ctx context.Context) {
	tick := time.NewTicker(s.cfg.PollInterval)
	defer tick.Stop()

	// Prime the price immediately rather than waiting one interval.
	s.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.pollOnce(ctx)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	s.mu.Lock()
	ticker := s.ticker
	needSeed := time.Since(s.lastSeed) >= reseedInterval
	s.mu.Unlock()

	if needSeed {
		if err := s.seedHistory(ctx); err != nil {
			s.logger.Warn(ctx, "History re-seed failed, keeping current buffers", map[string]interface{}{"error": err.Error()})
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FeedTimeout)
	defer cancel()

	price, err := s.feed.LastPrice(fetchCtx, ticker)
	if err != nil {
		s.logger.Warn(ctx, "Price poll failed, keeping last known price", map[string]interface{}{
			"ticker": ticker, "error": err.Error(),
		})
		return
	}

	now := time.Now()
	s.agg.UpdateFromTick(price, now)

	s.mu.Lock()
	s.lastPrice = &price
	s.mu.Unlock()

	s.logger.Debug(ctx, "Price updated", map[string]interface{}{"ticker": ticker, "price": price})
}

// seedHistory resolves the active contract for today and bulk-loads candle
// buffers for every timeframe from a 1-minute history fetch.
func (s *Service) seedHistory(ctx context.Context) error {
	now := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FeedTimeout)
	defer cancel()

	ticker, err := s.feed.ResolveContract(fetchCtx, s.cfg.ProductCode, now)
	if err != nil {
		return fmt.Errorf("contract resolution failed: %w", err)
	}

	from := now.Add(-time.Duration(s.cfg.HistoryHours) * time.Hour)
	bars, err := s.feed.Bars(fetchCtx, ticker, from, now)
	if err != nil {
		return fmt.Errorf("history fetch failed: %w", err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("history fetch for %s: %w", ticker, ports.ErrNoData)
	}

	s.agg.SeedHistory(domain.TF1m, bars, now)
	for _, tf := range domain.Timeframes {
		if tf == domain.TF1m {
			continue
		}
		s.agg.SeedHistory(tf, candles.Resample(bars, tf), now)
	}

	s.mu.Lock()
	s.ticker = ticker
	s.lastSeed = now
	s.mu.Unlock()

	s.logger.Info(ctx, "Candle history seeded", map[string]interface{}{
		"ticker": ticker, "bars": len(bars), "from": from, "to": now,
	})
	return nil
}

// evalLoop runs the evaluation pipeline on a fixed cadence. Ticks never
// overlap: if the previous evaluation is still running the tick is skipped.
func (s *Service) evalLoop(ctx context.Context) {
	tick := time.NewTicker(s.cfg.EvalInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.mu.Lock()
			if s.evalRunning {
				s.mu.Unlock()
				s.logger.Debug(ctx, "Skipping evaluation tick, previous still running")
				continue
			}
			s.evalRunning = true
			s.mu.Unlock()

			s.evaluate(ctx, time.Now())

			s.mu.Lock()
			s.evalRunning = false
			s.mu.Unlock()
		}
	}
}

// evaluate runs one full pipeline pass and publishes a new snapshot. All
// state mutations happen in a single critical section so readers never see
// a partial update.
func (s *Service) evaluate(ctx context.Context, now time.Time) {
	oneMin := s.agg.Candles(domain.TF1m)
	primary := s.agg.Candles(domain.TF5m)

	levels := s.levelEngine.BuildLevels(oneMin, now)
	flags := sweeps.Flags(levels, oneMin)
	trendState := trend.Compute(s.trendCfg, primary)
	session := s.levelEngine.CurrentSession(now)
	inWindow := s.clock.InWindow(now, s.tradingWindow)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Day rollover: stale setups from the prior day never carry over, and
	// the daily trade count starts fresh.
	if levels.DayKey != "" && levels.DayKey != s.dayKey {
		if s.dayKey != "" {
			s.logger.Info(ctx, "Trading day rolled over", map[string]interface{}{
				"from": s.dayKey, "to": levels.DayKey,
			})
			s.pending = nil
			s.tradesToday = 0
		}
		s.dayKey = levels.DayKey
	}

	snap := domain.Snapshot{
		TakenAt:       now,
		LastPrice:     s.lastPrice,
		Session:       session,
		Bias:          trendState.Bias,
		EMA20:         trendState.EMA20,
		EMA200:        trendState.EMA200,
		AtAllTimeHigh: trendState.AtAllTimeHigh,
		Levels:        levels,
		Sweeps:        flags,
	}

	if s.position != nil && s.lastPrice != nil {
		decision := s.exitEval.Evaluate(s.position, *s.lastPrice, trendState.Bias, inWindow, now)
		snap.Exit = &decision
		if decision.ShouldExit {
			if err := s.closeLocked(ctx, *s.lastPrice, decision.Reason, now); err != nil {
				s.logger.Error(ctx, err, "Failed to close position", map[string]interface{}{
					"reason": decision.Reason,
				})
			} else {
				snap.Notes = append(snap.Notes, decision.Message)
			}
		}
	}

	entryDecision := s.machine.Evaluate(entry.Input{
		Price:         s.lastPrice,
		InWindow:      inWindow,
		Bias:          trendState.Bias,
		AtHigh:        trendState.AtAllTimeHigh,
		Sweeps:        flags,
		OneMin:        oneMin,
		OpenTrade:     s.position,
		Pending:       s.pending,
		CooldownUntil: s.cooldownUntil,
		TradesToday:   s.tradesToday,
		Now:           now,
	})
	s.pending = entryDecision.Armed
	snap.Entry = entryDecision

	if entryDecision.ShouldEnter && s.lastPrice != nil {
		trade := s.openLocked(ctx, entryDecision.Direction, *s.lastPrice, now, "")
		snap.Notes = append(snap.Notes, fmt.Sprintf("entered %s at %.2f", trade.Direction, trade.EntryPrice))
	}

	if s.lastPrice != nil {
		snap.Notes = append(snap.Notes, instantNotes(*s.lastPrice, levels)...)
	}
	if s.position != nil {
		cp := *s.position
		snap.OpenTrade = &cp
	}
	s.snapshot = snap
}

// instantNotes flags price trading beyond a session level right now.
// Display only; entries key off the candle-pattern sweep flags instead.
func instantNotes(price float64, levels domain.SessionLevels) []string {
	var notes []string
	for _, s := range []struct {
		name string
		rng  domain.SessionRange
	}{
		{"asia", levels.Asia},
		{"london", levels.London},
		{"new york", levels.NY},
	} {
		high, low := sweeps.Instant(price, s.rng)
		if high {
			notes = append(notes, fmt.Sprintf("price above %s high", s.name))
		}
		if low {
			notes = append(notes, fmt.Sprintf("price below %s low", s.name))
		}
	}
	return notes
}

// openLocked opens a position. Caller holds the mutex.
func (s *Service) openLocked(ctx context.Context, dir domain.Direction, price float64, now time.Time, notes string) *domain.LiveTrade {
	trade := &domain.LiveTrade{
		ID:         uuid.NewString(),
		Symbol:     s.cfg.Symbol,
		Direction:  dir,
		EntryPrice: price,
		Size:       s.cfg.Contracts,
		OpenedAt:   now,
		Notes:      notes,
	}
	s.position = trade
	s.pending = nil
	s.tradesToday++

	s.logger.Info(ctx, "Position opened", map[string]interface{}{
		"tradeID": trade.ID, "direction": dir, "entryPrice": price, "tradesToday": s.tradesToday,
	})
	return trade
}

// closeLocked closes the current position, journals it, and starts the
// cooldown. Caller holds the mutex. On journal failure the position stays
// open so the next evaluation retries the close.
func (s *Service) closeLocked(ctx context.Context, exitPrice float64, reason domain.CloseReason, now time.Time) error {
	if s.position == nil {
		return ports.ErrNoOpenPosition
	}

	pos := s.position
	pnl := pos.PnLPoints(exitPrice)
	record := &domain.JournalEntry{
		TradeID:     pos.ID,
		Symbol:      pos.Symbol,
		Direction:   pos.Direction,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   exitPrice,
		Contracts:   pos.Size,
		OpenedAt:    pos.OpenedAt,
		ClosedAt:    now,
		Notes:       pos.Notes,
		PnLPoints:   pnl,
		Result:      domain.ResultFromPnL(pnl),
		CloseReason: reason,
	}

	if _, err := s.journal.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to journal closed trade %s: %w", pos.ID, err)
	}

	s.position = nil
	s.cooldownUntil = now.Add(time.Duration(s.cfg.CooldownSeconds) * time.Second)

	s.logger.Info(ctx, "Position closed", map[string]interface{}{
		"tradeID": pos.ID, "reason": reason, "exitPrice": exitPrice, "pnlPoints": pnl,
	})
	return nil
}

// Stats computes aggregate statistics over the recent journal.
func (s *Service) Stats(ctx context.Context) (journal.Stats, error) {
	entries, err := s.journal.FindRecent(ctx, s.cfg.Symbol, 500)
	if err != nil {
		return journal.Stats{}, fmt.Errorf("failed to load journal for stats: %w", err)
	}
	values := make([]domain.JournalEntry, len(entries))
	for i, e := range entries {
		values[i] = *e
	}
	return journal.Compute(values), nil
}

// Snapshot returns the most recently published evaluation snapshot.
func (s *Service) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// OpenManualTrade opens a position outside the entry machine, subject to
// the same single-position constraint. Price falls back to the last polled
// price when zero.
func (s *Service) OpenManualTrade(ctx context.Context, dir domain.Direction, price float64, notes string) (*domain.LiveTrade, error) {
	if dir != domain.Call && dir != domain.Put {
		return nil, fmt.Errorf("invalid direction %q: %w", dir, ports.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.position != nil {
		return nil, ports.ErrPositionOpen
	}
	if price <= 0 {
		if s.lastPrice == nil {
			return nil, fmt.Errorf("no price available: %w", ports.ErrNoData)
		}
		price = *s.lastPrice
	}

	trade := s.openLocked(ctx, dir, price, time.Now(), notes)
	cp := *trade
	return &cp, nil
}

// CloseManualTrade closes the current position at the last polled price.
func (s *Service) CloseManualTrade(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.position == nil {
		return ports.ErrNoOpenPosition
	}
	if s.lastPrice == nil {
		return fmt.Errorf("no price available to close trade: %w", ports.ErrNoData)
	}
	return s.closeLocked(ctx, *s.lastPrice, domain.CloseReasonManual, time.Now())
}
