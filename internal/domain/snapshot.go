package domain

// MarketSnapshot is one row of the badges payload for a single coin. Each
// refresh replaces the previous snapshot for that coin wholesale; there is
// no partial merge.
type MarketSnapshot struct {
	Coin              string `json:"coin"`
	Amount            Num    `json:"amount"`
	Price             Num    `json:"price_usdc"`
	Change24hPct      Num    `json:"change_24h_pct"`
	DCAAvg            Num    `json:"dca_avg"`
	SellPct           Num    `json:"sell_pct"`
	SellTarget        Num    `json:"sell_target"`
	BuyPct            Num    `json:"buy_pct"`
	BuyTarget         Num    `json:"buy_target"`
	RebuyDiscount     Num    `json:"rebuy_discount"`
	RebuyLevel        Num    `json:"rebuy_level"`
	ValueUSDC         Num    `json:"value_usdc"`
	TotalProfit       Num    `json:"total_profit"`
	DistancePct       Num    `json:"distance_pct"`
	RefKind           string `json:"ref_kind"`
	CurrentPctFromRef Num    `json:"current_pct_from_ref"`
	Eligible          bool   `json:"eligible"`
}

// BalanceEntry is a single wallet balance. Currency keys are normalized to
// upper case by the consumer; duplicates after normalization are
// latest-wins.
type BalanceEntry struct {
	Currency  string `json:"currency"`
	Available Num    `json:"available_balance"`
}

// BotStatus is the polled heartbeat payload.
type BotStatus struct {
	Active             *bool `json:"active"`
	SecondsSinceUpdate Num   `json:"seconds_since_update"`
}

func (s BotStatus) Heartbeat() Heartbeat {
	return HeartbeatFromBoolPtr(s.Active)
}

type Trade struct {
	Timestamp string `json:"timestamp"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Amount    Num    `json:"amount"`
	Price     Num    `json:"price"`
}

type PricePoint struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
}

type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

type PortfolioSummary struct {
	USDCAvailable     Num `json:"usdc_available"`
	HoldingsValueUSDC Num `json:"holdings_value_usdc"`
	TotalUSDC         Num `json:"total_usdc"`
}

// TradingState is one row of /api/state; only Symbol feeds the symbol
// selector, the rest is carried for completeness.
type TradingState struct {
	Symbol       string `json:"symbol"`
	InitialPrice Num    `json:"initial_price"`
	TotalTrades  int    `json:"total_trades"`
	TotalProfit  Num    `json:"total_profit"`
}

type ConfigInfo struct {
	Name  string   `json:"name"`
	Coins []string `json:"coins"`
}

type CommandAction string

const (
	ActionBuy    CommandAction = "BUY"
	ActionSell   CommandAction = "SELL"
	ActionCancel CommandAction = "CANCEL"
)

type ManualCommand struct {
	Symbol string        `json:"symbol"`
	Action CommandAction `json:"action"`
}

// TickStatus is the status fragment of a live-feed tick. LastTrade doubles
// as the trade-change identifier: when it differs from the last one seen,
// the trade channel refreshes immediately regardless of its throttle.
type TickStatus struct {
	Active    *bool  `json:"active"`
	LastTrade string `json:"last_trade"`
}

func (s *TickStatus) Heartbeat() Heartbeat {
	if s == nil {
		return HeartbeatUnknown
	}
	return HeartbeatFromBoolPtr(s.Active)
}

// Tick is the payload of a recognized live-feed message.
type Tick struct {
	Status   *TickStatus    `json:"status"`
	Balances []BalanceEntry `json:"balances"`
}
