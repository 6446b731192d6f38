package ratecard

import (
	"fmt"

	"github.com/shopspring/decimal"

	"netquote/pkg/api"
)

// sensorTier is one row of the PRTG annual licence price table.
type sensorTier struct {
	maxSensors int // -1 = unlimited
	annualGBP  float64
}

var prtgTiers = []sensorTier{
	{500, 1899},
	{1000, 3599},
	{2500, 7399},
	{5000, 12999},
	{-1, 16899}, // XL, unlimited sensors
}

// PRTGMonitoring prices PRTG sensor-based monitoring.
//
// Params:
//
//	sensors       (int)     number of monitored sensors, required > 0
//	marginPercent (float)   service margin applied on the licence, default 25
//	setupFee      (float)   one-time onboarding fee, default 0
func PRTGMonitoring(params api.ComponentParams, _ api.CalculationContext) (api.CalculationResult, error) {
	sensors := params.Int("sensors", 0)
	if sensors < 0 {
		return api.CalculationResult{}, fmt.Errorf("sensor count must not be negative, got %d", sensors)
	}
	marginPct := params.Float("marginPercent", 25)
	if marginPct < 0 {
		return api.CalculationResult{}, fmt.Errorf("service margin must not be negative, got %v", marginPct)
	}
	setupFee := params.Float("setupFee", 0)
	if setupFee < 0 {
		return api.CalculationResult{}, fmt.Errorf("setup fee must not be negative, got %v", setupFee)
	}

	tier := prtgTiers[len(prtgTiers)-1]
	for _, t := range prtgTiers {
		if t.maxSensors != -1 && sensors <= t.maxSensors {
			tier = t
			break
		}
	}

	annualLicence := decimal.NewFromFloat(tier.annualGBP)
	monthlyLicence := annualLicence.Div(twelve)
	margin := percentOf(monthlyLicence, marginPct)
	monthly := monthlyLicence.Add(margin)
	oneTime := decimal.NewFromFloat(setupFee)

	return api.CalculationResult{
		Totals: standardTotals(oneTime, monthly),
		Breakdown: map[string]decimal.Decimal{
			"sensors":         decimal.NewFromInt(int64(sensors)),
			"annual_licence":  annualLicence,
			"monthly_licence": monthlyLicence.Round(2),
			"service_margin":  margin.Round(2),
		},
	}, nil
}
