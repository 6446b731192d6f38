// Package api defines the shared contracts between the calculation core
// and its external collaborators (params provider, calculation functions,
// result subscribers).
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComponentParams holds the input fields for one pricing component.
// The orchestrator reads it and never mutates it; ownership stays with
// whoever supplies the ParamsProvider.
type ComponentParams map[string]interface{}

// Totals is the standard set of price totals every component produces.
type Totals struct {
	OneTime   decimal.Decimal `json:"one_time"`
	Monthly   decimal.Decimal `json:"monthly"`
	Annual    decimal.Decimal `json:"annual"`
	ThreeYear decimal.Decimal `json:"three_year"`
}

// ZeroTotals returns totals with every figure at zero.
func ZeroTotals() Totals {
	return Totals{
		OneTime:   decimal.Zero,
		Monthly:   decimal.Zero,
		Annual:    decimal.Zero,
		ThreeYear: decimal.Zero,
	}
}

// CalculationResult is the output of one component calculation. A result
// with Error set is a fallback: all totals are zero and downstream
// components treat the component as contributing nothing, which is
// distinguishable from a component that genuinely priced to zero.
type CalculationResult struct {
	Totals    Totals                     `json:"totals"`
	Breakdown map[string]decimal.Decimal `json:"breakdown,omitempty"`
	Error     string                     `json:"error,omitempty"`
}

// Failed reports whether this result is an error fallback.
func (r CalculationResult) Failed() bool { return r.Error != "" }

// FallbackResult builds the zero-valued result substituted when a
// calculation function fails.
func FallbackResult(reason string) CalculationResult {
	return CalculationResult{
		Totals: ZeroTotals(),
		Error:  reason,
	}
}

// CalculationContext maps each already-resolved dependency's component id
// to its most recent result. A component only ever sees its declared
// dependencies here, never siblings or components scheduled after it.
type CalculationContext map[string]CalculationResult

// Result returns the context entry for a dependency, or a zero-valued
// result when the dependency has never been calculated.
func (c CalculationContext) Result(componentID string) CalculationResult {
	if r, ok := c[componentID]; ok {
		return r
	}
	return CalculationResult{Totals: ZeroTotals()}
}

// CalcFunc is a pure calculation function for one component type. It must
// not perform I/O. Returning an error (or panicking) is handled by the
// orchestrator: the component gets a fallback result and the batch
// continues.
type CalcFunc func(params ComponentParams, ctx CalculationContext) (CalculationResult, error)

// ParamsProvider supplies live component state. The orchestrator calls it
// synchronously at batch start and must tolerate defaults for components
// that were never configured.
type ParamsProvider interface {
	ComponentParams(componentID string) ComponentParams
	IsEnabled(componentID string) bool
}

// ResultEvent is published after a single component's result settles,
// whether the calculation succeeded or fell back.
type ResultEvent struct {
	ComponentID string            `json:"component_id"`
	Result      CalculationResult `json:"result"`
}

// BatchEvent is published once per debounce-triggered batch. Results
// contains every component in the batch closure, including ones whose
// calculation failed (with their fallback result).
type BatchEvent struct {
	BatchID  uuid.UUID                    `json:"batch_id"`
	Results  map[string]CalculationResult `json:"results"`
	Duration time.Duration                `json:"duration"`
}
