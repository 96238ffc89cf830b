package domain

// Band is how close a live value sits to its reference target. Ordered
// from worst to best so comparisons read naturally in tests.
type Band int

const (
	BandNone Band = iota // no signal for this badge
	BandFar
	BandWarning
	BandNear
	BandMet
	BandStrong
)

func (b Band) String() string {
	switch b {
	case BandFar:
		return "far"
	case BandWarning:
		return "warning"
	case BandNear:
		return "near"
	case BandMet:
		return "met"
	case BandStrong:
		return "strong"
	default:
		return "none"
	}
}

func (b Band) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

// ProfitSign classifies PnL by sign only; magnitude is display data.
type ProfitSign int

const (
	ProfitNeutral ProfitSign = iota
	ProfitPositive
	ProfitNegative
)

func (s ProfitSign) String() string {
	switch s {
	case ProfitPositive:
		return "positive"
	case ProfitNegative:
		return "negative"
	default:
		return "neutral"
	}
}

func (s ProfitSign) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// PriceDirection classifies the 24h change by sign only.
type PriceDirection int

const (
	PriceFlat PriceDirection = iota
	PriceUp
	PriceDown
)

func (d PriceDirection) String() string {
	switch d {
	case PriceUp:
		return "up"
	case PriceDown:
		return "down"
	default:
		return "flat"
	}
}

func (d PriceDirection) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// BuySignal covers both the buy and the rebuy badge; they share the same
// three-band rule and differ only in which target applies.
type BuySignal struct {
	Band   Band    `json:"band"`
	Target float64 `json:"target,omitempty"`
}

func (s BuySignal) Present() bool { return s.Band != BandNone }

type SellSignal struct {
	Band        Band    `json:"band"`
	Target      float64 `json:"target,omitempty"`
	DistancePct float64 `json:"distance_pct,omitempty"`
	Glow        bool    `json:"glow,omitempty"`
}

func (s SellSignal) Present() bool { return s.Band != BandNone }

// TargetSignal unifies the buy/sell framing as signed percentages from the
// reference price. HasCurrent is false when the current percentage is
// unknown; the badge still renders neutrally with just the target side.
type TargetSignal struct {
	Present    bool    `json:"present"`
	Band       Band    `json:"band"`
	CurrentPct float64 `json:"current_pct,omitempty"`
	HasCurrent bool    `json:"has_current"`
	TargetPct  float64 `json:"target_pct"`
	Glow       bool    `json:"glow,omitempty"`
}

type ProfitSignal struct {
	Present bool       `json:"present"`
	Sign    ProfitSign `json:"sign"`
	Amount  float64    `json:"amount"`
}

type PriceSignal struct {
	Present   bool           `json:"present"`
	Price     float64        `json:"price"`
	Direction PriceDirection `json:"direction"`
	ChangePct float64        `json:"change_pct,omitempty"`
	HasChange bool           `json:"has_change"`
}

// ValueTier is the absolute-magnitude banding of a position's USDC value.
type ValueTier int

const (
	TierBase ValueTier = iota
	TierIndigo
	TierBlue
	TierGreen
	TierGold
)

func (t ValueTier) String() string {
	switch t {
	case TierIndigo:
		return "indigo"
	case TierBlue:
		return "blue"
	case TierGreen:
		return "green"
	case TierGold:
		return "gold"
	default:
		return "base"
	}
}

func (t ValueTier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

type ValueSignal struct {
	Present bool      `json:"present"`
	Value   float64   `json:"value"`
	Amount  float64   `json:"amount"`
	Tier    ValueTier `json:"tier"`
}

// SignalSet is the full classification for one coin.
type SignalSet struct {
	Buy    BuySignal    `json:"buy"`
	Rebuy  BuySignal    `json:"rebuy"`
	Sell   SellSignal   `json:"sell"`
	Target TargetSignal `json:"target"`
	Profit ProfitSignal `json:"profit"`
	Price  PriceSignal  `json:"price"`
	Value  ValueSignal  `json:"value"`
}
