package ratecard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netquote/pkg/api"
)

func TestPRTGTierSelection(t *testing.T) {
	cases := []struct {
		sensors    int
		wantAnnual float64
	}{
		{0, 1899},
		{500, 1899},
		{501, 3599},
		{2500, 7399},
		{4999, 12999},
		{50000, 16899}, // unlimited tier
	}
	for _, tc := range cases {
		result, err := PRTGMonitoring(api.ComponentParams{"sensors": float64(tc.sensors)}, nil)
		require.NoError(t, err, "sensors=%d", tc.sensors)
		assert.True(t, result.Breakdown["annual_licence"].Equal(decimal.NewFromFloat(tc.wantAnnual)),
			"sensors=%d got %s", tc.sensors, result.Breakdown["annual_licence"])
	}
}

func TestPRTGMarginAndNegativeSensors(t *testing.T) {
	result, err := PRTGMonitoring(api.ComponentParams{"sensors": 100.0, "marginPercent": 0.0}, nil)
	require.NoError(t, err)
	// With zero margin the monthly price is exactly licence/12.
	want := decimal.NewFromInt(1899).Div(decimal.NewFromInt(12)).Round(2)
	assert.True(t, result.Totals.Monthly.Equal(want), "got %s", result.Totals.Monthly)

	_, err = PRTGMonitoring(api.ComponentParams{"sensors": -1.0}, nil)
	assert.Error(t, err)
}

func TestCapitalEquipmentAmortization(t *testing.T) {
	params := api.ComponentParams{
		"items": []interface{}{
			map[string]interface{}{"description": "switch", "unitCost": 2400.0, "quantity": 5.0},
			map[string]interface{}{"description": "firewall", "unitCost": 3000.0, "quantity": 2.0},
		},
		"termMonths": 36.0,
		"aprPercent": 0.0,
		"installFee": 500.0,
	}
	result, err := CapitalEquipment(params, nil)
	require.NoError(t, err)

	assert.True(t, result.Breakdown["device_count"].Equal(decimal.NewFromInt(7)))
	assert.True(t, result.Breakdown["hardware_total"].Equal(decimal.NewFromInt(18000)))
	// Zero APR: 18000 / 36 = 500/month.
	assert.True(t, result.Totals.Monthly.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.Totals.OneTime.Equal(decimal.NewFromInt(500)))
	// ThreeYear = one-time + 36 months.
	assert.True(t, result.Totals.ThreeYear.Equal(decimal.NewFromInt(18500)))
}

func TestCapitalEquipmentInterestRaisesPayment(t *testing.T) {
	base := api.ComponentParams{
		"items": []interface{}{
			map[string]interface{}{"unitCost": 36000.0, "quantity": 1.0},
		},
		"termMonths": 36.0,
	}
	withInterest, err := CapitalEquipment(base, nil)
	require.NoError(t, err)
	// Default 8.5% APR must beat interest-free 1000/month.
	assert.True(t, withInterest.Totals.Monthly.GreaterThan(decimal.NewFromInt(1000)),
		"got %s", withInterest.Totals.Monthly)

	_, err = CapitalEquipment(api.ComponentParams{"termMonths": 0.0}, nil)
	assert.Error(t, err)
}

// Negative costs and fees must error rather than settle into a successful
// result with negative totals.
func TestNegativeMoneyInputsAreRejected(t *testing.T) {
	cases := []struct {
		name   string
		fn     api.CalcFunc
		params api.ComponentParams
	}{
		{"capital negative unit cost", CapitalEquipment, api.ComponentParams{
			"items": []interface{}{
				map[string]interface{}{"unitCost": -2400.0, "quantity": 2.0},
			},
		}},
		{"capital negative install fee", CapitalEquipment, api.ComponentParams{
			"items": []interface{}{
				map[string]interface{}{"unitCost": 2400.0, "quantity": 2.0},
			},
			"installFee": -500.0,
		}},
		{"prtg negative setup fee", PRTGMonitoring, api.ComponentParams{
			"sensors": 100.0, "setupFee": -50.0,
		}},
		{"prtg negative margin", PRTGMonitoring, api.ComponentParams{
			"sensors": 100.0, "marginPercent": -200.0,
		}},
		{"connectivity negative cdr", Connectivity, api.ComponentParams{
			"circuits": []interface{}{
				map[string]interface{}{"bearerMbps": 1000.0, "cdrMbps": -200.0},
			},
		}},
		{"connectivity negative install fee", Connectivity, api.ComponentParams{
			"circuits": []interface{}{
				map[string]interface{}{"bearerMbps": 1000.0, "installFee": -350.0},
			},
		}},
		{"onboarding negative day rate", Onboarding, api.ComponentParams{
			"projectDays": 5.0, "dayRate": -900.0,
		}},
	}
	for _, tc := range cases {
		result, err := tc.fn(tc.params, nil)
		require.Error(t, err, tc.name)
		assert.False(t, result.Totals.Monthly.IsNegative(), tc.name)
		assert.False(t, result.Totals.OneTime.IsNegative(), tc.name)
	}
}

func TestSupportPricesOffCapitalDeviceCount(t *testing.T) {
	ctx := api.CalculationContext{
		"capital": {
			Totals: api.ZeroTotals(),
			Breakdown: map[string]decimal.Decimal{
				"device_count": decimal.NewFromInt(10),
			},
		},
	}
	result, err := SupportServices(api.ComponentParams{"level": "standard"}, ctx)
	require.NoError(t, err)
	// 295 base + 10 * 9.50.
	assert.True(t, result.Totals.Monthly.Equal(decimal.NewFromFloat(390)), "got %s", result.Totals.Monthly)
}

func TestSupportIgnoresFailedCapitalResult(t *testing.T) {
	ctx := api.CalculationContext{
		"capital": api.FallbackResult("boom"),
	}
	result, err := SupportServices(api.ComponentParams{}, ctx)
	require.NoError(t, err)
	// Base charge only: the fallback contributes zero devices.
	assert.True(t, result.Totals.Monthly.Equal(decimal.NewFromFloat(295)))

	_, err = SupportServices(api.ComponentParams{"level": "platinum"}, nil)
	assert.Error(t, err)
}

func TestConnectivityCircuits(t *testing.T) {
	params := api.ComponentParams{
		"circuits": []interface{}{
			map[string]interface{}{"bearerMbps": 1000.0, "cdrMbps": 200.0, "installFee": 350.0},
			map[string]interface{}{"bearerMbps": 100.0, "cdrMbps": 50.0},
		},
	}
	result, err := Connectivity(params, nil)
	require.NoError(t, err)
	// 200*1.95 + 50*3.80 = 390 + 190 = 580.
	assert.True(t, result.Totals.Monthly.Equal(decimal.NewFromInt(580)), "got %s", result.Totals.Monthly)
	assert.True(t, result.Totals.OneTime.Equal(decimal.NewFromInt(350)))

	_, err = Connectivity(api.ComponentParams{
		"circuits": []interface{}{map[string]interface{}{"bearerMbps": 333.0}},
	}, nil)
	assert.Error(t, err)
}

func TestOnboarding(t *testing.T) {
	result, err := Onboarding(api.ComponentParams{"projectDays": 12.0, "dayRate": 900.0}, nil)
	require.NoError(t, err)
	assert.True(t, result.Totals.OneTime.Equal(decimal.NewFromInt(10800)))
	assert.True(t, result.Totals.Monthly.IsZero())

	_, err = Onboarding(api.ComponentParams{"projectDays": -1.0}, nil)
	assert.Error(t, err)
}

func TestContractTermEscalation(t *testing.T) {
	ctx := api.CalculationContext{
		"capital": {Totals: api.Totals{Monthly: decimal.NewFromInt(1000)}},
	}

	fn := ContractTerm(3)
	result, err := fn(api.ComponentParams{"escalationPercent": 10.0}, ctx)
	require.NoError(t, err)

	// 12000 + 13200 + 14520 = 39720, under every discount tier.
	assert.True(t, result.Breakdown["volume_discount"].IsZero())
	wantMonthly := decimal.NewFromInt(39720).Div(decimal.NewFromInt(36)).Round(2)
	assert.True(t, result.Totals.Monthly.Equal(wantMonthly), "got %s", result.Totals.Monthly)
}

func TestContractTermVolumeDiscount(t *testing.T) {
	ctx := api.CalculationContext{
		"capital": {Totals: api.Totals{Monthly: decimal.NewFromInt(10000)}},
	}

	fn := ContractTerm(1)
	result, err := fn(api.ComponentParams{"escalationPercent": 0.0}, ctx)
	require.NoError(t, err)

	// 120000 recurring crosses the 100k tier: 5% off.
	assert.True(t, result.Breakdown["discount_percent"].Equal(decimal.NewFromInt(5)))
	wantMonthly := decimal.NewFromInt(114000).Div(decimal.NewFromInt(12)).Round(2)
	assert.True(t, result.Totals.Monthly.Equal(wantMonthly), "got %s", result.Totals.Monthly)
}

func TestContractTermSumsFallbacksAsZero(t *testing.T) {
	ctx := api.CalculationContext{
		"capital": {Totals: api.Totals{Monthly: decimal.NewFromInt(500)}},
		"support": api.FallbackResult("support blew up"),
	}

	fn := ContractTerm(1)
	result, err := fn(api.ComponentParams{"escalationPercent": 0.0}, ctx)
	require.NoError(t, err)
	assert.True(t, result.Breakdown["base_monthly"].Equal(decimal.NewFromInt(500)))
}
