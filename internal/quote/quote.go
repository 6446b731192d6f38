// Package quote supplies component params from a quote document on disk.
// It is the calculator's stand-in for the interactive form layer: editing
// the file is editing the quote.
package quote

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sync"

	"netquote/pkg/api"
)

// ComponentState is one component's slice of the quote document.
type ComponentState struct {
	Enabled bool                `json:"enabled"`
	Params  api.ComponentParams `json:"params,omitempty"`
}

// Document is the on-disk quote format.
type Document struct {
	Name       string                    `json:"name,omitempty"`
	Components map[string]ComponentState `json:"components"`
}

// FileProvider implements api.ParamsProvider backed by a quote file.
// Components absent from the document are disabled with empty params.
type FileProvider struct {
	path string

	mu  sync.RWMutex
	doc Document
}

// LoadFile reads and parses a quote document.
func LoadFile(path string) (*FileProvider, error) {
	p := &FileProvider{path: path}
	if _, err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// ComponentParams returns the component's params, or empty params for a
// never-configured component.
func (p *FileProvider) ComponentParams(componentID string) api.ComponentParams {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if state, ok := p.doc.Components[componentID]; ok && state.Params != nil {
		return state.Params
	}
	return api.ComponentParams{}
}

// IsEnabled reports whether the quote includes the component.
func (p *FileProvider) IsEnabled(componentID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state, ok := p.doc.Components[componentID]
	return ok && state.Enabled
}

// Name returns the quote's display name.
func (p *FileProvider) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc.Name
}

// ComponentIDs returns every component id the document mentions.
func (p *FileProvider) ComponentIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.doc.Components))
	for id := range p.doc.Components {
		out = append(out, id)
	}
	return out
}

// Reload re-reads the quote file and returns the ids of components whose
// enabled state or params changed, so callers can schedule exactly the
// affected recalculations.
func (p *FileProvider) Reload() ([]string, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read quote %s: %w", p.path, err)
	}
	var next Document
	if err := json.Unmarshal(raw, &next); err != nil {
		return nil, fmt.Errorf("parse quote %s: %w", p.path, err)
	}
	if next.Components == nil {
		next.Components = make(map[string]ComponentState)
	}

	p.mu.Lock()
	prev := p.doc
	p.doc = next
	p.mu.Unlock()

	return changedComponents(prev, next), nil
}

func changedComponents(prev, next Document) []string {
	var changed []string
	seen := make(map[string]bool)
	for id, state := range next.Components {
		seen[id] = true
		old, existed := prev.Components[id]
		if !existed || old.Enabled != state.Enabled || !reflect.DeepEqual(old.Params, state.Params) {
			changed = append(changed, id)
		}
	}
	for id := range prev.Components {
		if !seen[id] {
			changed = append(changed, id)
		}
	}
	return changed
}
