package detect

import (
	"fmt"
	"sync"

	"github.com/zjrosen/texdup/internal/log"
)

// Registry is an ordered set of detectors. Detectors run in registration order.
type Registry struct {
	mu        sync.RWMutex
	detectors []Detector
}

// NewRegistry creates a registry holding ds in order. A detector whose name is
// already taken is logged and left out; the first one registered wins.
func NewRegistry(ds ...Detector) *Registry {
	r := &Registry{}
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			log.Warn(log.CatDetect, "detector skipped", "detector", d.Name(), "error", err)
		}
	}
	return r
}

// Register appends d. Names must be unique.
func (r *Registry) Register(d Detector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.detectors {
		if existing.Name() == d.Name() {
			return fmt.Errorf("detector %q already registered", d.Name())
		}
	}
	r.detectors = append(r.detectors, d)
	return nil
}

// Replace swaps the detector with d's name for d, or appends it.
func (r *Registry) Replace(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.detectors {
		if existing.Name() == d.Name() {
			r.detectors[i] = d
			return
		}
	}
	r.detectors = append(r.detectors, d)
}

// Detectors returns a copy of the registered detectors in order.
func (r *Registry) Detectors() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Detector, len(r.detectors))
	copy(out, r.detectors)
	return out
}

// Len returns the number of registered detectors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.detectors)
}
