package ratecard

import (
	"fmt"

	"github.com/shopspring/decimal"

	"netquote/pkg/api"
)

// CapitalEquipment prices financed hardware: line items are summed and
// amortized over the financing term as a standard annuity.
//
// Params:
//
//	items        ([]object) line items: {description, unitCost, quantity}
//	termMonths   (int)      financing term, default 36
//	aprPercent   (float)    annual interest rate, default 8.5
//	installFee   (float)    one-time installation charge, default 0
//
// Breakdown exposes device_count, which downstream support pricing
// consumes.
func CapitalEquipment(params api.ComponentParams, _ api.CalculationContext) (api.CalculationResult, error) {
	termMonths := params.Int("termMonths", 36)
	if termMonths <= 0 {
		return api.CalculationResult{}, fmt.Errorf("financing term must be positive, got %d months", termMonths)
	}

	hardwareTotal := decimal.Zero
	deviceCount := 0
	for i, raw := range params.Slice("items") {
		item, ok := raw.(map[string]interface{})
		if !ok {
			return api.CalculationResult{}, fmt.Errorf("equipment item %d is not an object", i)
		}
		line := api.ComponentParams(item)
		qty := line.Int("quantity", 1)
		if qty < 0 {
			return api.CalculationResult{}, fmt.Errorf("equipment item %d has negative quantity", i)
		}
		if cost := line.Float("unitCost", 0); cost < 0 {
			return api.CalculationResult{}, fmt.Errorf("equipment item %d has negative unit cost", i)
		}
		unitCost := decimal.NewFromFloat(line.Float("unitCost", 0))
		hardwareTotal = hardwareTotal.Add(unitCost.Mul(decimal.NewFromInt(int64(qty))))
		deviceCount += qty
	}

	installFee := params.Float("installFee", 0)
	if installFee < 0 {
		return api.CalculationResult{}, fmt.Errorf("install fee must not be negative, got %v", installFee)
	}

	monthly := amortize(hardwareTotal, params.Float("aprPercent", 8.5), termMonths)
	oneTime := decimal.NewFromFloat(installFee)

	return api.CalculationResult{
		Totals: standardTotals(oneTime, monthly),
		Breakdown: map[string]decimal.Decimal{
			"device_count":    decimal.NewFromInt(int64(deviceCount)),
			"hardware_total":  hardwareTotal.Round(2),
			"monthly_payment": monthly.Round(2),
		},
	}, nil
}

// amortize computes the monthly annuity payment for principal at the
// given APR over termMonths. Zero APR degrades to straight division.
func amortize(principal decimal.Decimal, aprPercent float64, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if principal.IsZero() {
		return decimal.Zero
	}
	if aprPercent == 0 {
		return principal.Div(n)
	}

	// payment = P * r * (1+r)^n / ((1+r)^n - 1)
	r := decimal.NewFromFloat(aprPercent).Div(hundred).Div(twelve)
	growth := decimal.NewFromInt(1).Add(r).Pow(n)
	return principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
}
