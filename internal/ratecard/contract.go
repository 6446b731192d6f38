package ratecard

import (
	"github.com/shopspring/decimal"

	"netquote/pkg/api"
)

// volumeTier is one row of the contract-value discount table.
type volumeTier struct {
	minValueGBP float64
	discountPct float64
}

// Evaluated highest tier first.
var volumeTiers = []volumeTier{
	{500000, 15},
	{250000, 10},
	{100000, 5},
}

// ContractTerm builds the calculation function for a fixed-term contract
// price. Contract components carry the all-enabled dependency: the context
// holds every enabled component's result, and fallback results contribute
// zero by construction.
//
// Per-year recurring spend escalates by escalationPercent (default 3 CPI),
// then the whole-contract recurring value earns a volume discount by tier.
// Monthly in the returned totals is the effective average over the term.
//
// Params:
//
//	escalationPercent (float) annual CPI uplift, default 3
func ContractTerm(years int) api.CalcFunc {
	return func(params api.ComponentParams, ctx api.CalculationContext) (api.CalculationResult, error) {
		baseMonthly := decimal.Zero
		oneTime := decimal.Zero
		for _, r := range ctx {
			baseMonthly = baseMonthly.Add(r.Totals.Monthly)
			oneTime = oneTime.Add(r.Totals.OneTime)
		}

		escalation := params.Float("escalationPercent", 3)
		factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(escalation).Div(hundred))

		recurring := decimal.Zero
		yearCost := baseMonthly.Mul(twelve)
		for y := 0; y < years; y++ {
			recurring = recurring.Add(yearCost)
			yearCost = yearCost.Mul(factor)
		}

		discountPct := 0.0
		for _, tier := range volumeTiers {
			if recurring.GreaterThanOrEqual(decimal.NewFromFloat(tier.minValueGBP)) {
				discountPct = tier.discountPct
				break
			}
		}
		discount := percentOf(recurring, discountPct)
		discounted := recurring.Sub(discount)

		months := decimal.NewFromInt(int64(years) * 12)
		effectiveMonthly := discounted.Div(months)

		return api.CalculationResult{
			Totals: standardTotals(oneTime, effectiveMonthly),
			Breakdown: map[string]decimal.Decimal{
				"term_years":       decimal.NewFromInt(int64(years)),
				"base_monthly":     baseMonthly.Round(2),
				"contract_value":   discounted.Add(oneTime).Round(2),
				"volume_discount":  discount.Round(2),
				"discount_percent": decimal.NewFromFloat(discountPct),
			},
		}, nil
	}
}
