package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/royen99/cryptobot-monitor/internal/domain"
	"github.com/royen99/cryptobot-monitor/internal/format"
)

// fallbackSymbol populates the selector when the backend reports no
// trading state yet.
const fallbackSymbol = "USDC-EUR"

// MonitorConfig tunes the refresh schedule. Zero values fall back to the
// backend dashboard's defaults.
type MonitorConfig struct {
	Symbol       string
	TradesLimit  int
	HistoryHours int
	GracePeriod  time.Duration
	StatusEvery  time.Duration
	TradesEvery  time.Duration
	BadgesEvery  time.Duration
	SummaryEvery time.Duration
	PollEvery    time.Duration
}

func (c *MonitorConfig) setDefaults() {
	if c.TradesLimit <= 0 {
		c.TradesLimit = 20
	}
	if c.HistoryHours <= 0 {
		c.HistoryHours = 24
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	if c.StatusEvery <= 0 {
		c.StatusEvery = 5 * time.Second
	}
	if c.TradesEvery <= 0 {
		c.TradesEvery = 3 * time.Second
	}
	if c.BadgesEvery <= 0 {
		c.BadgesEvery = 5 * time.Second
	}
	if c.SummaryEvery <= 0 {
		c.SummaryEvery = 10 * time.Second
	}
	if c.PollEvery <= 0 {
		c.PollEvery = 2 * time.Second
	}
}

// Monitor reconciles the push feed and the polled endpoints into one
// coherent dashboard state. All mutations run on the event loop goroutine
// inside Run; the mutex only shields concurrent readers (the view server).
type Monitor struct {
	backend domain.Backend
	engine  *BadgeEngine
	fresh   *Freshness
	sched   *Coordinator
	logger  *zap.Logger
	cfg     MonitorConfig
	now     func() time.Time

	feed   domain.FeedSubscriber
	events chan domain.Tick

	mu             sync.RWMutex
	snapshots      map[string]domain.MarketSnapshot
	balances       map[string]float64
	summary        domain.PortfolioSummary
	trades         []domain.Trade
	symbols        []string
	enabled        []string
	history        domain.PriceSeries
	selected       string
	lastTradeStamp string
}

func NewMonitor(backend domain.Backend, cfg MonitorConfig, logger *zap.Logger) *Monitor {
	cfg.setDefaults()

	m := &Monitor{
		backend:   backend,
		engine:    NewBadgeEngine(),
		fresh:     NewFreshness(cfg.GracePeriod),
		sched:     NewCoordinator(),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		events:    make(chan domain.Tick, 16),
		snapshots: make(map[string]domain.MarketSnapshot),
		balances:  make(map[string]float64),
		selected:  cfg.Symbol,
	}

	m.sched.Register(ChannelStatus, cfg.StatusEvery, m.refreshStatus)
	m.sched.Register(ChannelTrades, cfg.TradesEvery, m.refreshTrades)
	m.sched.Register(ChannelBadges, cfg.BadgesEvery, m.refreshBadges)
	m.sched.Register(ChannelSummary, cfg.SummaryEvery, m.refreshSummary)

	return m
}

// SetFeed attaches the live feed so symbol changes re-send the
// subscription.
func (m *Monitor) SetFeed(f domain.FeedSubscriber) {
	m.feed = f
}

// Enqueue hands a live-feed tick to the event loop. When the buffer is
// full the tick is dropped: a changed trade stamp is still caught by the
// next processed tick, because the stamp only advances when a tick is
// actually handled.
func (m *Monitor) Enqueue(tick domain.Tick) {
	select {
	case m.events <- tick:
	default:
		m.logger.Debug("live tick dropped, event loop busy")
	}
}

// Run bootstraps the state and then serves the event loop until ctx is
// cancelled. Refreshes execute inline, so triggers for a channel are
// strictly serialized in arrival order.
func (m *Monitor) Run(ctx context.Context) error {
	m.Bootstrap(ctx)

	ticker := time.NewTicker(m.cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick := <-m.events:
			m.handleTick(ctx, tick)
		case <-ticker.C:
			m.handlePoll(ctx)
		}
	}
}

// Bootstrap performs the initial full load. Every step is best-effort: a
// failed fetch logs and leaves that slice of state empty until the next
// scheduled refresh.
func (m *Monitor) Bootstrap(ctx context.Context) {
	now := m.now()

	if info, err := m.backend.ConfigInfo(ctx); err != nil {
		m.logger.Warn("config info unavailable", zap.Error(err))
	} else {
		coins := make([]string, 0, len(info.Coins))
		for _, c := range info.Coins {
			coins = append(coins, strings.ToUpper(c))
		}
		m.mu.Lock()
		m.enabled = coins
		m.mu.Unlock()
	}

	m.runChannel(ctx, ChannelSummary, now, true)
	m.runChannel(ctx, ChannelBadges, now, true)

	if items, err := m.backend.Balances(ctx); err != nil {
		m.logger.Warn("balances unavailable", zap.Error(err))
	} else {
		m.applyBalances(items)
	}

	m.loadSymbols(ctx)
	if m.feed != nil {
		// The configured symbol may have been replaced by the resolved one.
		m.feed.Subscribe(m.Selected())
	}
	m.loadHistory(ctx)

	m.runChannel(ctx, ChannelStatus, now, true)
	m.runChannel(ctx, ChannelTrades, now, true)
}

func (m *Monitor) handlePoll(ctx context.Context) {
	now := m.now()
	m.runChannel(ctx, ChannelStatus, now, false)
	m.runChannel(ctx, ChannelSummary, now, false)
}

func (m *Monitor) handleTick(ctx context.Context, tick domain.Tick) {
	now := m.now()

	forceTrades := false
	if tick.Status != nil {
		m.mu.Lock()
		m.fresh.Observe(now, tick.Status.Heartbeat(), tick.Status.LastTrade)
		if stamp := tick.Status.LastTrade; stamp != "" && stamp != m.lastTradeStamp {
			// New trade identifier: surface it immediately, throttle or not.
			m.lastTradeStamp = stamp
			forceTrades = true
		}
		m.mu.Unlock()
	}

	m.runChannel(ctx, ChannelTrades, now, forceTrades)

	if tick.Balances != nil {
		m.applyBalances(tick.Balances)
		m.runChannel(ctx, ChannelBadges, now, false)
	}

	m.runChannel(ctx, ChannelSummary, now, false)
	m.runChannel(ctx, ChannelStatus, now, false)
}

func (m *Monitor) runChannel(ctx context.Context, ch Channel, now time.Time, force bool) bool {
	ran, err := m.sched.MaybeRun(ctx, ch, now, force)
	if err != nil {
		m.logger.Warn("refresh failed", zap.String("channel", string(ch)), zap.Error(err))
	}
	return ran
}

// --- refresh actions, one per channel ---

func (m *Monitor) refreshStatus(ctx context.Context) error {
	st, err := m.backend.Status(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch status")
	}

	text := "No trades yet"
	if secs, ok := st.SecondsSinceUpdate.Float(); ok {
		text = fmt.Sprintf("Last update: %.0f seconds ago", secs)
	}

	m.mu.Lock()
	m.fresh.Observe(m.now(), st.Heartbeat(), text)
	m.mu.Unlock()
	return nil
}

func (m *Monitor) refreshTrades(ctx context.Context) error {
	trades, err := m.backend.Trades(ctx, m.cfg.TradesLimit)
	if err != nil {
		return errors.Wrap(err, "fetch trades")
	}

	m.mu.Lock()
	m.trades = trades
	m.mu.Unlock()
	return nil
}

func (m *Monitor) refreshBadges(ctx context.Context) error {
	rows, err := m.backend.Badges(ctx)
	if err != nil {
		// Degrade to no badges rather than keep stale classifications.
		m.mu.Lock()
		m.snapshots = make(map[string]domain.MarketSnapshot)
		m.mu.Unlock()
		return errors.Wrap(err, "fetch badges")
	}

	next := make(map[string]domain.MarketSnapshot, len(rows))
	for _, row := range rows {
		if row.Coin == "" {
			continue
		}
		next[strings.ToUpper(row.Coin)] = row
	}

	m.mu.Lock()
	m.snapshots = next
	m.mu.Unlock()
	return nil
}

func (m *Monitor) refreshSummary(ctx context.Context) error {
	s, err := m.backend.Summary(ctx)
	if err != nil {
		m.mu.Lock()
		m.summary = domain.PortfolioSummary{}
		m.mu.Unlock()
		return errors.Wrap(err, "fetch summary")
	}

	m.mu.Lock()
	m.summary = s
	m.mu.Unlock()
	return nil
}

// --- bootstrap helpers ---

func (m *Monitor) applyBalances(items []domain.BalanceEntry) {
	next := make(map[string]float64, len(items))
	for _, b := range items {
		if b.Currency == "" {
			continue
		}
		// Duplicate currencies after normalization: latest wins.
		next[strings.ToUpper(b.Currency)] = b.Available.Or(0)
	}

	m.mu.Lock()
	m.balances = next
	m.mu.Unlock()
}

func (m *Monitor) loadSymbols(ctx context.Context) {
	states, err := m.backend.States(ctx)
	if err != nil {
		m.logger.Warn("trading state unavailable", zap.Error(err))
	}

	seen := make(map[string]bool, len(states))
	symbols := make([]string, 0, len(states))
	for _, s := range states {
		if s.Symbol == "" || seen[s.Symbol] {
			continue
		}
		seen[s.Symbol] = true
		symbols = append(symbols, s.Symbol)
	}
	sort.Strings(symbols)
	if len(symbols) == 0 {
		symbols = []string{fallbackSymbol}
	}

	m.mu.Lock()
	m.symbols = symbols
	if m.selected == "" || !seen[m.selected] {
		m.selected = symbols[0]
	}
	m.mu.Unlock()
}

func (m *Monitor) loadHistory(ctx context.Context) {
	series, err := m.backend.PriceHistory(ctx, m.Selected(), m.cfg.HistoryHours)
	if err != nil {
		m.logger.Warn("price history unavailable", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.history = series
	m.mu.Unlock()
}

// --- user-facing operations ---

// Selected returns the currently subscribed symbol.
func (m *Monitor) Selected() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

// SelectSymbol switches the chart symbol: it re-sends the feed
// subscription in place (no reconnect) and reloads the price series.
func (m *Monitor) SelectSymbol(ctx context.Context, symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return errors.New("empty symbol")
	}

	m.mu.Lock()
	m.selected = symbol
	m.mu.Unlock()

	if m.feed != nil {
		m.feed.Subscribe(symbol)
	}

	series, err := m.backend.PriceHistory(ctx, symbol, m.cfg.HistoryHours)
	if err != nil {
		return errors.Wrap(err, "fetch price history")
	}

	m.mu.Lock()
	m.history = series
	m.mu.Unlock()
	return nil
}

// Command submits a manual order command. This is the only error path
// surfaced to the user: the backend's response detail comes back verbatim.
func (m *Monitor) Command(ctx context.Context, cmd domain.ManualCommand) error {
	switch cmd.Action {
	case domain.ActionBuy, domain.ActionSell, domain.ActionCancel:
	default:
		return errors.Errorf("unsupported action %q", cmd.Action)
	}
	if cmd.Symbol == "" {
		return errors.New("empty symbol")
	}

	if err := m.backend.SubmitCommand(ctx, cmd); err != nil {
		m.logger.Warn("manual command rejected",
			zap.String("symbol", cmd.Symbol),
			zap.String("action", string(cmd.Action)),
			zap.Error(err))
		return err
	}

	m.logger.Info("manual command accepted",
		zap.String("symbol", cmd.Symbol),
		zap.String("action", string(cmd.Action)))
	return nil
}

// View assembles the reconciled dashboard snapshot: one row per enabled
// coin (USDC excluded), highest value first, with the full signal set.
func (m *Monitor) View() domain.DashboardView {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	view := domain.DashboardView{
		GeneratedAt:    now,
		Alive:          m.fresh.Alive(now),
		StatusLine:     m.fresh.StatusLine(now),
		Summary:        m.summary,
		Trades:         m.trades,
		Symbols:        append([]string(nil), m.symbols...),
		SelectedSymbol: m.selected,
		History:        m.history,
	}

	rows := make([]domain.CoinRow, 0, len(m.enabled))
	for _, coin := range m.enabled {
		if coin == "USDC" {
			continue
		}

		snap := m.snapshots[coin] // zero snapshot classifies to no-signal everywhere
		amount := m.balances[coin]
		value := snap.ValueUSDC.Or(amount * snap.Price.Or(0))
		hasHoldings := value >= 1

		set := m.engine.Classify(snap, amount, hasHoldings)

		row := domain.CoinRow{
			Coin:        coin,
			Amount:      amount,
			Value:       value,
			HasHoldings: hasHoldings,
			Signals:     set,
			ValueLabel:  "$ " + format.Float(value, 2) + " (" + format.Float(amount, 6) + " " + coin + ")",
			PriceLabel:  format.Num(snap.Price, 6),
		}
		if set.Target.Present {
			left := format.Missing
			if set.Target.HasCurrent {
				left = format.SignedPct(set.Target.CurrentPct)
			}
			row.TargetLabel = fmt.Sprintf("Target %s%% / %s%%", left, format.SignedPct(set.Target.TargetPct))
		}

		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	view.Rows = rows

	return view
}
