package domain

import "time"

// CoinRow is one reconciled dashboard row: balance, valuation and the full
// signal set for a coin.
type CoinRow struct {
	Coin        string    `json:"coin"`
	Amount      float64   `json:"amount"`
	Value       float64   `json:"value_usdc"`
	HasHoldings bool      `json:"has_holdings"`
	Signals     SignalSet `json:"signals"`

	// Pre-rendered labels for the display layer.
	ValueLabel  string `json:"value_label"`
	PriceLabel  string `json:"price_label"`
	TargetLabel string `json:"target_label,omitempty"`
}

// DashboardView is the single coherent snapshot handed to the rendering
// layer. It is assembled on demand and never mutated afterwards.
type DashboardView struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	Alive          bool             `json:"alive"`
	StatusLine     string           `json:"status_line"`
	Summary        PortfolioSummary `json:"summary"`
	Rows           []CoinRow        `json:"rows"`
	Trades         []Trade          `json:"trades"`
	Symbols        []string         `json:"symbols"`
	SelectedSymbol string           `json:"selected_symbol"`
	History        PriceSeries      `json:"history"`
}
