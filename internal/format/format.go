// Package format holds the numeric display helpers shared by the view
// assembly and the web layer. Everything degrades to a placeholder instead
// of erroring so a partially populated dashboard still renders.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/royen99/cryptobot-monitor/internal/domain"
)

// Missing is rendered wherever a numeric value is absent or non-finite.
const Missing = "—"

var printer = message.NewPrinter(language.English)

// Float renders x with thousands grouping and exactly `decimals` fraction
// digits.
func Float(x float64, decimals int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Missing
	}
	return printer.Sprint(number.Decimal(x,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals)))
}

// Num renders an optional backend numeric, falling back to Missing.
func Num(n domain.Num, decimals int) string {
	v, ok := n.Float()
	if !ok {
		return Missing
	}
	return Float(v, decimals)
}

// SignedPct renders a percentage with an explicit leading sign, one
// decimal: "+4.0", "-2.5".
func SignedPct(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Missing
	}
	if x >= 0 {
		return fmt.Sprintf("+%.1f", x)
	}
	return fmt.Sprintf("%.1f", x)
}
