package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netquote/internal/graph"
	"netquote/internal/orchestrator"
	"netquote/pkg/api"
)

type stubReloader struct {
	mu      sync.Mutex
	changed []string
	err     error
	calls   int
}

func (s *stubReloader) Reload() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.changed, s.err
}

func (s *stubReloader) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type alwaysEnabled struct{}

func (alwaysEnabled) ComponentParams(string) api.ComponentParams { return api.ComponentParams{} }
func (alwaysEnabled) IsEnabled(string) bool                      { return true }

func TestFileEditTriggersRecalculation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quote.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	g, err := graph.New([]graph.Definition{{ID: "capital"}})
	require.NoError(t, err)

	settled := make(chan api.BatchEvent, 4)
	orch := orchestrator.New(g, map[string]api.CalcFunc{
		"capital": func(api.ComponentParams, api.CalculationContext) (api.CalculationResult, error) {
			return api.CalculationResult{Totals: api.ZeroTotals()}, nil
		},
	}, alwaysEnabled{}, nil).
		WithDebounce(10*time.Millisecond, 100*time.Millisecond).
		OnBatch(func(e api.BatchEvent) { settled <- e })
	defer orch.Stop()

	reloader := &stubReloader{changed: []string{"capital"}}
	w := New(path, reloader, orch, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Give the watcher time to register before editing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"edited":true}`), 0o644))

	select {
	case event := <-settled:
		assert.Contains(t, event.Results, "capital")
	case <-time.After(3 * time.Second):
		t.Fatal("edit never produced a batch")
	}
	assert.GreaterOrEqual(t, reloader.callCount(), 1)
}

func TestUnrelatedFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quote.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	g, err := graph.New([]graph.Definition{{ID: "capital"}})
	require.NoError(t, err)
	orch := orchestrator.New(g, nil, alwaysEnabled{}, nil)
	defer orch.Stop()

	reloader := &stubReloader{}
	w := New(path, reloader, orch, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, 0, reloader.callCount())
}
