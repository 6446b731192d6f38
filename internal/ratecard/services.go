package ratecard

import (
	"fmt"

	"github.com/shopspring/decimal"

	"netquote/pkg/api"
)

// supportLevels maps support level to (base monthly, per-device monthly).
var supportLevels = map[string][2]float64{
	"standard": {295, 9.50},
	"enhanced": {495, 14.00},
	"premium":  {795, 21.50},
}

// SupportServices prices managed support off the capital equipment device
// count. A capital result that fell back contributes zero devices, so
// support still settles rather than failing alongside it.
//
// Params:
//
//	level (string) standard | enhanced | premium, default standard
//
// Context: reads "capital" breakdown device_count.
func SupportServices(params api.ComponentParams, ctx api.CalculationContext) (api.CalculationResult, error) {
	level := params.String("level", "standard")
	rates, ok := supportLevels[level]
	if !ok {
		return api.CalculationResult{}, fmt.Errorf("unknown support level %q", level)
	}

	devices := decimal.Zero
	if capital, ok := ctx["capital"]; ok && !capital.Failed() {
		if d, ok := capital.Breakdown["device_count"]; ok {
			devices = d
		}
	}

	base := decimal.NewFromFloat(rates[0])
	perDevice := decimal.NewFromFloat(rates[1]).Mul(devices)
	monthly := base.Add(perDevice)

	return api.CalculationResult{
		Totals: standardTotals(decimal.Zero, monthly),
		Breakdown: map[string]decimal.Decimal{
			"device_count":   devices,
			"base_monthly":   base,
			"device_monthly": perDevice.Round(2),
		},
	}, nil
}

// bearerRates maps circuit bearer size (Mbps) to price per committed Mbps
// per month. Larger bearers price the committed rate cheaper.
var bearerRates = map[int]float64{
	100:   3.80,
	1000:  1.95,
	10000: 1.10,
}

// Connectivity prices leased-line circuits.
//
// Params:
//
//	circuits ([]object) {bearerMbps, cdrMbps, installFee}
func Connectivity(params api.ComponentParams, _ api.CalculationContext) (api.CalculationResult, error) {
	monthly := decimal.Zero
	oneTime := decimal.Zero
	count := 0

	for i, raw := range params.Slice("circuits") {
		circuit, ok := raw.(map[string]interface{})
		if !ok {
			return api.CalculationResult{}, fmt.Errorf("circuit %d is not an object", i)
		}
		line := api.ComponentParams(circuit)
		bearer := line.Int("bearerMbps", 1000)
		rate, ok := bearerRates[bearer]
		if !ok {
			return api.CalculationResult{}, fmt.Errorf("circuit %d has unsupported bearer %dMbps", i, bearer)
		}
		cdr := line.Float("cdrMbps", float64(bearer)/10)
		if cdr < 0 {
			return api.CalculationResult{}, fmt.Errorf("circuit %d has negative committed rate", i)
		}
		installFee := line.Float("installFee", 0)
		if installFee < 0 {
			return api.CalculationResult{}, fmt.Errorf("circuit %d has negative install fee", i)
		}
		monthly = monthly.Add(decimal.NewFromFloat(cdr).Mul(decimal.NewFromFloat(rate)))
		oneTime = oneTime.Add(decimal.NewFromFloat(installFee))
		count++
	}

	return api.CalculationResult{
		Totals: standardTotals(oneTime, monthly),
		Breakdown: map[string]decimal.Decimal{
			"circuit_count":   decimal.NewFromInt(int64(count)),
			"monthly_rental":  monthly.Round(2),
			"install_charges": oneTime.Round(2),
		},
	}, nil
}

// Onboarding prices one-time professional services for service take-on.
//
// Params:
//
//	projectDays (float) engineering days, default 0
//	dayRate     (float) default 850
func Onboarding(params api.ComponentParams, _ api.CalculationContext) (api.CalculationResult, error) {
	days := params.Float("projectDays", 0)
	if days < 0 {
		return api.CalculationResult{}, fmt.Errorf("project days must not be negative, got %v", days)
	}
	if r := params.Float("dayRate", 850); r < 0 {
		return api.CalculationResult{}, fmt.Errorf("day rate must not be negative, got %v", r)
	}
	rate := decimal.NewFromFloat(params.Float("dayRate", 850))
	oneTime := decimal.NewFromFloat(days).Mul(rate)

	return api.CalculationResult{
		Totals: standardTotals(oneTime, decimal.Zero),
		Breakdown: map[string]decimal.Decimal{
			"project_days": decimal.NewFromFloat(days),
			"day_rate":     rate,
		},
	}, nil
}
