// Package schedule provides the execution queue that coalesces rapid
// recalculation requests into single batches.
package schedule

import (
	"sync"
	"time"
)

// Task is one queued recalculation request. SourceTag records who asked
// for the recalculation and is diagnostic only.
type Task struct {
	ComponentID string    `json:"component_id"`
	RequestedAt time.Time `json:"requested_at"`
	SourceTag   string    `json:"source_tag"`
}

// FlushFunc receives the deduplicated batch when the debounce window
// expires. It runs on the timer goroutine.
type FlushFunc func(batch []Task)

// State is the debouncer's lifecycle phase.
type State int

const (
	// StateIdle means no requests are pending.
	StateIdle State = iota
	// StatePending means a batch is accumulating behind a timer.
	StatePending
)

const (
	// DefaultWindow is the debounce window restarted on every request.
	DefaultWindow = 30 * time.Millisecond
	// DefaultMaxWindow bounds how long sustained requests can defer a
	// batch. Without it, continuous input could starve execution forever.
	DefaultMaxWindow = 250 * time.Millisecond
)

// Debouncer coalesces recalculation requests. Each request restarts the
// debounce window; the batch-open time plus the maximum window is a hard
// deadline that no restart can push past. Requests for a component already
// pending replace the earlier entry, keeping only the latest metadata.
type Debouncer struct {
	window    time.Duration
	maxWindow time.Duration
	flush     FlushFunc

	mu       sync.Mutex
	state    State
	pending  map[string]Task
	queued   []string // insertion order of pending component ids
	openedAt time.Time
	deadline time.Time
	timer    *time.Timer
	gen      uint64 // invalidates stale timer callbacks
	stopped  bool
}

// NewDebouncer builds a debouncer. Non-positive window or maxWindow fall
// back to the defaults.
func NewDebouncer(window, maxWindow time.Duration, flush FlushFunc) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxWindow <= 0 {
		maxWindow = DefaultMaxWindow
	}
	if maxWindow < window {
		maxWindow = window
	}
	return &Debouncer{
		window:    window,
		maxWindow: maxWindow,
		flush:     flush,
		pending:   make(map[string]Task),
	}
}

// Enqueue queues a task and restarts the debounce window. A zero delay
// uses the configured window. The effective deadline never exceeds the
// batch-open time plus the maximum window.
func (d *Debouncer) Enqueue(task Task, delay time.Duration) {
	if delay <= 0 {
		delay = d.window
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	now := time.Now()
	if task.RequestedAt.IsZero() {
		task.RequestedAt = now
	}

	if _, exists := d.pending[task.ComponentID]; !exists {
		d.queued = append(d.queued, task.ComponentID)
	}
	d.pending[task.ComponentID] = task

	if d.state == StateIdle {
		d.state = StatePending
		d.openedAt = now
	}

	deadline := now.Add(delay)
	if hardCap := d.openedAt.Add(d.maxWindow); deadline.After(hardCap) {
		deadline = hardCap
	}
	d.deadline = deadline
	d.resetTimerLocked(time.Until(deadline))
}

// resetTimerLocked re-arms the timer for the current generation.
func (d *Debouncer) resetTimerLocked(wait time.Duration) {
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	if wait < 0 {
		wait = 0
	}
	d.timer = time.AfterFunc(wait, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.state != StatePending {
		d.mu.Unlock()
		return
	}
	batch := d.drainLocked()
	d.mu.Unlock()

	if len(batch) > 0 {
		d.flush(batch)
	}
}

// drainLocked snapshots and clears the pending set, returning tasks in
// first-queued order.
func (d *Debouncer) drainLocked() []Task {
	batch := make([]Task, 0, len(d.pending))
	for _, id := range d.queued {
		batch = append(batch, d.pending[id])
	}
	d.pending = make(map[string]Task)
	d.queued = nil
	d.state = StateIdle
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	return batch
}

// Flush executes any pending batch immediately, bypassing the window.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.state != StatePending {
		d.mu.Unlock()
		return
	}
	batch := d.drainLocked()
	d.mu.Unlock()

	if len(batch) > 0 {
		d.flush(batch)
	}
}

// State returns the current lifecycle phase.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Pending returns the component ids currently queued, in queue order.
func (d *Debouncer) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.queued))
	copy(out, d.queued)
	return out
}

// Deadline returns the scheduled flush time; the zero time when idle.
func (d *Debouncer) Deadline() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StatePending {
		return time.Time{}
	}
	return d.deadline
}

// Stop discards any pending batch and disables further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.state = StateIdle
	d.pending = make(map[string]Task)
	d.queued = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
}
