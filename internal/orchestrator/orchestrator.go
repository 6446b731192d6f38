// Package orchestrator coordinates dependency-aware recalculation: it
// resolves the affected closure for a changed component, coalesces bursts
// through the debouncer, walks the closure in topological order, and
// publishes results.
package orchestrator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"netquote/internal/graph"
	"netquote/internal/history"
	"netquote/internal/schedule"
	"netquote/pkg/api"
)

// Orchestrator is the sole owner of the calculation pipeline. Batches are
// serialized: no two closures ever execute concurrently, so the result
// store sees one writer at a time.
type Orchestrator struct {
	graph    *graph.Graph
	registry map[string]api.CalcFunc
	params   api.ParamsProvider
	store    *history.Store
	deb      *schedule.Debouncer
	log      *slog.Logger

	onResult []func(api.ResultEvent)
	onBatch  []func(api.BatchEvent)

	runMu sync.Mutex
}

// New builds an orchestrator over a validated graph. The registry maps
// component ids to their pure calculation functions; a component missing
// from it settles to a fallback result rather than aborting the batch.
func New(g *graph.Graph, registry map[string]api.CalcFunc, params api.ParamsProvider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		graph:    g,
		registry: registry,
		params:   params,
		store:    history.NewStore(0),
		log:      logger,
	}
	o.deb = schedule.NewDebouncer(0, 0, o.runBatch)
	return o
}

// WithDebounce overrides the debounce window and the maximum coalescing
// window.
func (o *Orchestrator) WithDebounce(window, maxWindow time.Duration) *Orchestrator {
	o.deb.Stop()
	o.deb = schedule.NewDebouncer(window, maxWindow, o.runBatch)
	return o
}

// WithHistoryCap overrides the rolling execution history size.
func (o *Orchestrator) WithHistoryCap(n int) *Orchestrator {
	o.store = history.NewStore(n)
	return o
}

// OnResult subscribes to per-component settle events. Registration is
// serialized against batch execution, so subscribing while batches are
// firing is safe; the new subscriber sees the next batch onward.
func (o *Orchestrator) OnResult(fn func(api.ResultEvent)) *Orchestrator {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	o.onResult = append(o.onResult, fn)
	return o
}

// OnBatch subscribes to batch-complete events. Serialized like OnResult.
func (o *Orchestrator) OnBatch(fn func(api.BatchEvent)) *Orchestrator {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	o.onBatch = append(o.onBatch, fn)
	return o
}

// ScheduleCalculation requests recalculation of a component and everything
// transitively depending on it. Repeated calls within the debounce window
// coalesce to one execution per component. Unknown ids fail fast with
// *api.UnknownComponentError.
func (o *Orchestrator) ScheduleCalculation(componentID string, delay time.Duration, sourceTag string) error {
	closure, err := o.graph.AffectedClosure(componentID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, id := range closure {
		o.deb.Enqueue(schedule.Task{
			ComponentID: id,
			RequestedAt: now,
			SourceTag:   sourceTag,
		}, delay)
	}
	o.log.Debug("recalculation scheduled",
		"component", componentID,
		"closure_size", len(closure),
		"source", sourceTag)
	return nil
}

// Flush forces any pending batch to execute immediately.
func (o *Orchestrator) Flush() { o.deb.Flush() }

// Stop discards pending work and disables further scheduling.
func (o *Orchestrator) Stop() { o.deb.Stop() }

// Result returns the last settled result for a component.
func (o *Orchestrator) Result(componentID string) (api.CalculationResult, bool) {
	return o.store.Result(componentID)
}

// Results returns a snapshot of every settled result.
func (o *Orchestrator) Results() map[string]api.CalculationResult {
	return o.store.Results()
}

// History returns the rolling execution history, oldest first.
func (o *Orchestrator) History() []history.ExecutionRecord {
	return o.store.History()
}

// SeedResult preloads a component's last known result, e.g. restored from
// a local snapshot. Seeded results feed contexts exactly like calculated
// ones until the component is next recalculated.
func (o *Orchestrator) SeedResult(componentID string, result api.CalculationResult) {
	o.store.SetResult(componentID, result)
}

// runBatch executes one debounce-triggered batch. The closure is
// recomputed from live state here, not reused from schedule time:
// components enabled or disabled while the batch was pending are picked
// up or dropped.
func (o *Orchestrator) runBatch(tasks []schedule.Task) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	started := time.Now()
	batchID := uuid.New()

	closure := o.liveClosure(tasks)
	if len(closure) == 0 {
		o.log.Debug("batch skipped, no enabled components in closure", "batch", batchID)
		return
	}

	order, err := o.graph.TopologicalOrder(closure)
	if err != nil {
		// Only reachable if a task id escaped graph validation.
		o.log.Error("batch ordering failed", "batch", batchID, "error", err)
		return
	}

	enabled := o.enabledNonWildcard()
	produced := make(map[string]api.CalculationResult, len(order))

	for _, id := range order {
		ctx := o.buildContext(id, produced, enabled)
		result := o.executeOne(id, ctx)
		produced[id] = result
		for _, fn := range o.onResult {
			fn(api.ResultEvent{ComponentID: id, Result: result})
		}
	}

	elapsed := time.Since(started)
	event := api.BatchEvent{BatchID: batchID, Results: produced, Duration: elapsed}
	for _, fn := range o.onBatch {
		fn(event)
	}
	o.log.Info("batch settled",
		"batch", batchID,
		"components", len(order),
		"duration_ms", elapsed.Milliseconds())
}

// liveClosure re-expands the affected closure of every pending task and
// filters it to components enabled right now.
func (o *Orchestrator) liveClosure(tasks []schedule.Task) []string {
	affected := make(map[string]bool)
	for _, t := range tasks {
		closure, err := o.graph.AffectedClosure(t.ComponentID)
		if err != nil {
			continue
		}
		for _, id := range closure {
			affected[id] = true
		}
	}

	var out []string
	for _, id := range o.graph.IDs() {
		if affected[id] && o.params.IsEnabled(id) {
			out = append(out, id)
		}
	}
	return out
}

// enabledNonWildcard lists the components a wildcard context draws from,
// as read at batch start.
func (o *Orchestrator) enabledNonWildcard() []string {
	var out []string
	for _, id := range o.graph.IDs() {
		if !o.graph.IsWildcard(id) && o.params.IsEnabled(id) {
			out = append(out, id)
		}
	}
	return out
}

// buildContext assembles a component's dependency results: in-batch
// results win over the stored last-known ones, and dependencies never
// calculated are simply absent.
func (o *Orchestrator) buildContext(id string, produced map[string]api.CalculationResult, enabled []string) api.CalculationContext {
	ctx := make(api.CalculationContext)

	resolve := func(depID string) {
		if r, ok := produced[depID]; ok {
			ctx[depID] = r
			return
		}
		if r, ok := o.store.Result(depID); ok {
			ctx[depID] = r
		}
	}

	if o.graph.IsWildcard(id) {
		for _, depID := range enabled {
			resolve(depID)
		}
	}
	fixed, _ := o.graph.FixedDependencies(id)
	for _, depID := range fixed {
		resolve(depID)
	}
	return ctx
}

// executeOne runs a single component calculation, converting any failure
// into a fallback result so sibling components are untouched.
func (o *Orchestrator) executeOne(id string, ctx api.CalculationContext) api.CalculationResult {
	fn, ok := o.registry[id]
	if !ok {
		result := api.FallbackResult(fmt.Sprintf("no calculation function registered for %q", id))
		o.store.SetResult(id, result)
		o.store.RecordExecution(id, 0, false)
		o.log.Warn("component has no calculation function", "component", id)
		return result
	}

	started := time.Now()
	result, err := safeCall(fn, o.params.ComponentParams(id), ctx)
	elapsed := time.Since(started)

	if err != nil {
		result = api.FallbackResult(err.Error())
		o.log.Warn("calculation failed, using fallback",
			"component", id,
			"error", err,
			"duration_ms", elapsed.Milliseconds())
	}

	o.store.SetResult(id, result)
	o.store.RecordExecution(id, elapsed, err == nil)
	return result
}

// safeCall invokes a calculation function, converting panics into errors
// so one component's failure cannot take down the batch.
func safeCall(fn api.CalcFunc, params api.ComponentParams, ctx api.CalculationContext) (result api.CalculationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calculation panicked: %v", r)
		}
	}()
	return fn(params, ctx)
}
