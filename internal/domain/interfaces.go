package domain

import "context"

// Backend is the read/command contract of the monitor backend. The shapes
// are owned by the remote service; this client only consumes them.
type Backend interface {
	Status(ctx context.Context) (BotStatus, error)
	Badges(ctx context.Context) ([]MarketSnapshot, error)
	Balances(ctx context.Context) ([]BalanceEntry, error)
	Summary(ctx context.Context) (PortfolioSummary, error)
	Trades(ctx context.Context, limit int) ([]Trade, error)
	States(ctx context.Context) ([]TradingState, error)
	PriceHistory(ctx context.Context, symbol string, hours int) (PriceSeries, error)
	ConfigInfo(ctx context.Context) (ConfigInfo, error)
	SubmitCommand(ctx context.Context, cmd ManualCommand) error
}

// FeedSubscriber lets the monitor switch the live-feed symbol without the
// feed exposing its connection internals.
type FeedSubscriber interface {
	Subscribe(symbol string)
}
