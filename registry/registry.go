// Package registry holds the process-wide set of tradable indices.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/comodofi/perps/market"
)

// Validator checks that a candidate index's source actually produces a
// well-formed series before the index is admitted.
type Validator interface {
	Fetch(ctx context.Context, src market.Source) (market.Series, error)
}

// Registry maps symbols to index configurations. Loaded once at start;
// mutated only through Register.
type Registry struct {
	mu      sync.RWMutex
	indices map[string]market.Index
	order   []string
}

type registryFile struct {
	Indices []market.Index `json:"indices" yaml:"indices"`
}

// LoadFile reads an index registry from a YAML or JSON file (YAML tried
// first, matching the config loader).
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		if jsonErr := json.Unmarshal(data, &file); jsonErr != nil {
			return nil, fmt.Errorf("%w: parse registry (tried YAML and JSON): %v", market.ErrBadConfig, err)
		}
	}

	r := New()
	for _, idx := range file.Indices {
		if err := idx.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.indices[idx.Symbol]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %s", market.ErrBadConfig, idx.Symbol)
		}
		r.indices[idx.Symbol] = idx
		r.order = append(r.order, idx.Symbol)
	}
	if len(r.indices) == 0 {
		return nil, fmt.Errorf("%w: registry has no indices", market.ErrBadConfig)
	}
	return r, nil
}

func New() *Registry {
	return &Registry{indices: make(map[string]market.Index)}
}

// Get returns the index for a symbol.
func (r *Registry) Get(symbol string) (market.Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.indices[symbol]
	if !ok {
		return market.Index{}, fmt.Errorf("%w: index %s", market.ErrNotFound, symbol)
	}
	return idx, nil
}

// List returns all indices sorted by symbol.
func (r *Registry) List() []market.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]market.Index, 0, len(r.indices))
	for _, idx := range r.indices {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Register validates a candidate index and admits it. The candidate's
// source is fetched and checked against the series contract before any
// mutation, so a rejected candidate leaves the registry unchanged.
func (r *Registry) Register(ctx context.Context, idx market.Index, v Validator) error {
	if err := idx.Validate(); err != nil {
		return err
	}

	r.mu.RLock()
	_, dup := r.indices[idx.Symbol]
	r.mu.RUnlock()
	if dup {
		return fmt.Errorf("%w: symbol %s already registered", market.ErrBadConfig, idx.Symbol)
	}

	s, err := v.Fetch(ctx, idx.Source)
	if err != nil {
		return fmt.Errorf("validate candidate %s: %w", idx.Symbol, err)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validate candidate %s: %w", idx.Symbol, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.indices[idx.Symbol]; dup {
		return fmt.Errorf("%w: symbol %s already registered", market.ErrBadConfig, idx.Symbol)
	}
	r.indices[idx.Symbol] = idx
	r.order = append(r.order, idx.Symbol)
	return nil
}
