package usecase

import (
	"math"

	"github.com/royen99/cryptobot-monitor/internal/domain"
)

// DefaultValueTiers are the USDC cut lines for the value badge, lowest
// first.
var DefaultValueTiers = [4]float64{10, 100, 250, 500}

// BadgeEngine maps a market snapshot to the discrete signal bands shown on
// the dashboard. Every method is pure and total: missing or non-finite
// inputs yield a no-signal result for that badge, never an error.
type BadgeEngine struct {
	ValueTiers [4]float64
}

func NewBadgeEngine() *BadgeEngine {
	return &BadgeEngine{ValueTiers: DefaultValueTiers}
}

// Classify computes the full signal set for one coin. amount is the wallet
// balance; hasHoldings selects between the buy and rebuy/sell framings.
func (e *BadgeEngine) Classify(snap domain.MarketSnapshot, amount float64, hasHoldings bool) domain.SignalSet {
	return domain.SignalSet{
		Buy:    e.Buy(snap, hasHoldings),
		Rebuy:  e.Rebuy(snap, hasHoldings),
		Sell:   e.Sell(snap),
		Target: e.TargetDistance(snap, hasHoldings),
		Profit: e.Profit(snap),
		Price:  e.PriceChange(snap),
		Value:  e.Value(snap, amount),
	}
}

// proximityBand is the shared buy/rebuy rule: met at or below target, near
// within +1% above it, far otherwise.
func proximityBand(price, target float64) domain.Band {
	switch {
	case price <= target:
		return domain.BandMet
	case price <= target*1.01:
		return domain.BandNear
	default:
		return domain.BandFar
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Buy is active only while not holding. The explicit backend target wins;
// otherwise the target derives from the live price and buy_pct.
func (e *BadgeEngine) Buy(snap domain.MarketSnapshot, hasHoldings bool) domain.BuySignal {
	if hasHoldings {
		return domain.BuySignal{}
	}
	price, ok := snap.Price.Float()
	if !ok {
		return domain.BuySignal{}
	}

	target, ok := snap.BuyTarget.Float()
	if !ok {
		pct, pctOK := snap.BuyPct.Float()
		if !pctOK {
			return domain.BuySignal{}
		}
		target = price * (1 + pct/100)
	}
	if !finite(target) {
		return domain.BuySignal{}
	}

	return domain.BuySignal{Band: proximityBand(price, target), Target: target}
}

// Rebuy replaces the buy badge while holding, using the rebuy level as the
// target.
func (e *BadgeEngine) Rebuy(snap domain.MarketSnapshot, hasHoldings bool) domain.BuySignal {
	if !hasHoldings {
		return domain.BuySignal{}
	}
	price, ok := snap.Price.Float()
	if !ok {
		return domain.BuySignal{}
	}
	level, ok := snap.RebuyLevel.Float()
	if !ok {
		return domain.BuySignal{}
	}

	return domain.BuySignal{Band: proximityBand(price, level), Target: level}
}

// Sell requires an eligible position and a sell target. Bands by distance
// from the target, most favorable first; glow within ±1%.
func (e *BadgeEngine) Sell(snap domain.MarketSnapshot) domain.SellSignal {
	if !snap.Eligible {
		return domain.SellSignal{}
	}
	price, ok := snap.Price.Float()
	if !ok {
		return domain.SellSignal{}
	}
	target, ok := snap.SellTarget.Float()
	if !ok || target == 0 {
		return domain.SellSignal{}
	}

	dist := (price - target) / target * 100

	var band domain.Band
	switch {
	case dist >= 2:
		band = domain.BandStrong
	case dist >= 0:
		band = domain.BandMet
	case dist >= -2:
		band = domain.BandNear
	case dist >= -5:
		band = domain.BandWarning
	default:
		band = domain.BandFar
	}

	return domain.SellSignal{
		Band:        band,
		Target:      target,
		DistancePct: dist,
		Glow:        math.Abs(dist) <= 1,
	}
}

// TargetDistance frames buy and sell the same way: signed percentages from
// the reference price. The target side is sell_pct while holding, buy_pct
// otherwise. With no current percentage the badge stays neutral (BandNone)
// but still carries the target side.
func (e *BadgeEngine) TargetDistance(snap domain.MarketSnapshot, hasHoldings bool) domain.TargetSignal {
	targetNum := snap.BuyPct
	if hasHoldings {
		targetNum = snap.SellPct
	}
	targetPct, ok := targetNum.Float()
	if !ok {
		return domain.TargetSignal{}
	}

	sig := domain.TargetSignal{Present: true, TargetPct: targetPct}

	currentPct, ok := snap.CurrentPctFromRef.Float()
	if !ok {
		return sig
	}
	sig.CurrentPct = currentPct
	sig.HasCurrent = true

	// gap > 0 means the adverse side of the target.
	var met bool
	var gap float64
	if hasHoldings {
		met = currentPct >= targetPct
		gap = targetPct - currentPct
	} else {
		met = currentPct <= targetPct
		gap = currentPct - targetPct
	}

	switch {
	case met:
		sig.Band = domain.BandMet
	case gap <= 1:
		sig.Band = domain.BandNear
	case gap <= 3:
		sig.Band = domain.BandWarning
	default:
		sig.Band = domain.BandFar
	}

	sig.Glow = math.Abs(currentPct-targetPct) <= 1
	return sig
}

// Profit classifies PnL by sign only; the amount rides along for display.
func (e *BadgeEngine) Profit(snap domain.MarketSnapshot) domain.ProfitSignal {
	pnl, ok := snap.TotalProfit.Float()
	if !ok {
		return domain.ProfitSignal{}
	}

	sign := domain.ProfitNeutral
	switch {
	case pnl > 0:
		sign = domain.ProfitPositive
	case pnl < 0:
		sign = domain.ProfitNegative
	}

	return domain.ProfitSignal{Present: true, Sign: sign, Amount: pnl}
}

// PriceChange classifies the 24h move by sign. A price without a change
// percentage still yields a flat signal carrying the price.
func (e *BadgeEngine) PriceChange(snap domain.MarketSnapshot) domain.PriceSignal {
	price, ok := snap.Price.Float()
	if !ok {
		return domain.PriceSignal{}
	}

	sig := domain.PriceSignal{Present: true, Price: price}

	pct, ok := snap.Change24hPct.Float()
	if !ok {
		return sig
	}
	sig.ChangePct = pct
	sig.HasChange = true
	switch {
	case pct > 0:
		sig.Direction = domain.PriceUp
	case pct < 0:
		sig.Direction = domain.PriceDown
	}

	return sig
}

// Value bands the position's USDC value by absolute magnitude. The
// explicit backend value wins over price*amount.
func (e *BadgeEngine) Value(snap domain.MarketSnapshot, amount float64) domain.ValueSignal {
	value, ok := snap.ValueUSDC.Float()
	if !ok {
		price, priceOK := snap.Price.Float()
		if !priceOK || !finite(amount) {
			return domain.ValueSignal{}
		}
		value = price * amount
	}
	if !finite(value) {
		return domain.ValueSignal{}
	}

	tier := domain.TierBase
	switch {
	case value >= e.ValueTiers[3]:
		tier = domain.TierGold
	case value >= e.ValueTiers[2]:
		tier = domain.TierGreen
	case value >= e.ValueTiers[1]:
		tier = domain.TierBlue
	case value >= e.ValueTiers[0]:
		tier = domain.TierIndigo
	}

	return domain.ValueSignal{Present: true, Value: value, Amount: amount, Tier: tier}
}
