// Package analyzer inspects matched market groups for pricing
// inconsistencies. Each detector consumes a group with its pre-aligned
// outcome comparisons and emits at most one finding; a single pass over a
// group can therefore yield zero to three findings.
package analyzer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/quantcluster/marketlens/internal/domain"
)

// Detector is one independent opportunity analyzer.
type Detector interface {
	// Name returns the detector identifier, matching the opportunity type
	// it produces.
	Name() string
	// Detect inspects the group and its aligned outcome comparisons and
	// returns a finding, or false when the group shows nothing notable.
	Detect(group domain.MarketGroup, comparisons map[string]domain.OutcomeComparison) (domain.Opportunity, bool)
}

// Registry holds named detectors for selection by config.
type Registry struct {
	detectors map[string]Detector
	mu        sync.RWMutex
}

// NewRegistry returns an empty registry. Call Register to add detectors.
func NewRegistry() *Registry {
	return &Registry{detectors: make(map[string]Detector)}
}

// Register adds a detector under its own name.
func (r *Registry) Register(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectors[d.Name()] = d
}

// Get returns the detector by name, or an error if not found.
func (r *Registry) Get(name string) (Detector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.detectors[name]
	if !ok {
		return nil, fmt.Errorf("detector %q not found", name)
	}
	return d, nil
}

// All returns every registered detector, ordered by name for deterministic
// detection passes.
func (r *Registry) All() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.detectors))
	for n := range r.detectors {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Detector, 0, len(names))
	for _, n := range names {
		out = append(out, r.detectors[n])
	}
	return out
}
