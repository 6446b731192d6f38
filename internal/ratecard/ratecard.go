// Package ratecard implements the pure calculation functions for the
// standard component catalog. Every function has the api.CalcFunc shape,
// performs no I/O, and reads upstream figures only through the supplied
// CalculationContext.
//
// Totals convention: Annual is Monthly x 12; ThreeYear is OneTime plus
// Monthly x 36. Contract components override Monthly with the effective
// average over their own term.
package ratecard

import (
	"github.com/shopspring/decimal"

	"netquote/pkg/api"
)

var (
	twelve    = decimal.NewFromInt(12)
	thirtySix = decimal.NewFromInt(36)
	hundred   = decimal.NewFromInt(100)
)

// standardTotals applies the package totals convention.
func standardTotals(oneTime, monthly decimal.Decimal) api.Totals {
	monthly = monthly.Round(2)
	oneTime = oneTime.Round(2)
	return api.Totals{
		OneTime:   oneTime,
		Monthly:   monthly,
		Annual:    monthly.Mul(twelve),
		ThreeYear: oneTime.Add(monthly.Mul(thirtySix)),
	}
}

// percentOf returns value * pct/100.
func percentOf(value decimal.Decimal, pct float64) decimal.Decimal {
	return value.Mul(decimal.NewFromFloat(pct)).Div(hundred)
}
