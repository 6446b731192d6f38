// Package history keeps the last calculation result per component and a
// bounded rolling record of executions for diagnostics.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"netquote/pkg/api"
)

// DefaultCap is the default rolling history size.
const DefaultCap = 200

// ExecutionRecord is one diagnostic entry: which component ran, how long
// it took, and whether it succeeded. Never consulted by scheduling.
type ExecutionRecord struct {
	ID          uuid.UUID     `json:"id"`
	ComponentID string        `json:"component_id"`
	Duration    time.Duration `json:"duration"`
	Success     bool          `json:"success"`
	At          time.Time     `json:"at"`
}

// Store holds per-component results plus the execution history. Results
// are only ever replaced whole, never partially updated.
type Store struct {
	mu      sync.RWMutex
	results map[string]api.CalculationResult
	history []ExecutionRecord
	cap     int
}

// NewStore builds a store with the given history cap (DefaultCap when
// non-positive).
func NewStore(historyCap int) *Store {
	if historyCap <= 0 {
		historyCap = DefaultCap
	}
	return &Store{
		results: make(map[string]api.CalculationResult),
		cap:     historyCap,
	}
}

// Result returns the last stored result for a component.
func (s *Store) Result(componentID string) (api.CalculationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[componentID]
	return r, ok
}

// SetResult overwrites a component's stored result.
func (s *Store) SetResult(componentID string, result api.CalculationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[componentID] = result
}

// Results returns a snapshot of every stored result.
func (s *Store) Results() map[string]api.CalculationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]api.CalculationResult, len(s.results))
	for id, r := range s.results {
		out[id] = r
	}
	return out
}

// RecordExecution appends a diagnostic entry, evicting the oldest past
// the cap.
func (s *Store) RecordExecution(componentID string, duration time.Duration, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, ExecutionRecord{
		ID:          uuid.New(),
		ComponentID: componentID,
		Duration:    duration,
		Success:     success,
		At:          time.Now(),
	})
	if over := len(s.history) - s.cap; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// History returns the execution records, oldest first.
func (s *Store) History() []ExecutionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ExecutionRecord, len(s.history))
	copy(out, s.history)
	return out
}
