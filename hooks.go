package sheetsync

import (
	"sync"

	syncpkg "github.com/agentstation/sheetsync/pkg/sync"
)

// Hook function types for import events
type (
	// ImportedHook is called after an import emitted its outputs
	ImportedHook func(result *syncpkg.Result)

	// DegradedHook is called when an import continues past a soft failure
	DegradedHook func(err error)
)

// Hooks registers callbacks for import events.
type Hooks interface {
	OnImported(ImportedHook)
	OnDegraded(DegradedHook)
}

// hooks manages event callbacks for imports
type hooks struct {
	mu         sync.RWMutex
	onImported []ImportedHook
	onDegraded []DegradedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnImported registers a callback for finished imports
func (h *hooks) OnImported(fn ImportedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onImported = append(h.onImported, fn)
}

// OnDegraded registers a callback for soft failures
func (h *hooks) OnDegraded(fn DegradedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDegraded = append(h.onDegraded, fn)
}

func (h *hooks) triggerImported(result *syncpkg.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onImported {
		hook(result)
	}
}

func (h *hooks) triggerDegraded(err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onDegraded {
		hook(err)
	}
}
