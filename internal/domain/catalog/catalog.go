// Package catalog holds the hand-maintained games and leaderboard categories
// the tracker follows.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for catalog lookups.
var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrUnknownCategory = errors.New("unknown category")
)

// QueryVariable is one leaderboard filter, sent as var-{VariableID}={ValueID}.
type QueryVariable struct {
	VariableID string `json:"variable_id"`
	ValueID    string `json:"value_id"`
}

// CategoryDefinition describes one tracked leaderboard category.
type CategoryDefinition struct {
	Key              string          `json:"key"`
	RemoteCategoryID string          `json:"remote_category_id"`
	DisplayName      string          `json:"name"`
	QueryVariables   []QueryVariable `json:"query_variables,omitempty"`
}

// Registry is an ordered, immutable set of category definitions.
type Registry struct {
	defs  []CategoryDefinition
	index map[string]int
}

// NewRegistry builds a registry. Keys must be unique and non-empty.
func NewRegistry(defs ...CategoryDefinition) (*Registry, error) {
	r := &Registry{
		defs:  make([]CategoryDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if strings.TrimSpace(d.Key) == "" || d.RemoteCategoryID == "" {
			return nil, fmt.Errorf("category %q: key and remote id are required", d.Key)
		}
		if _, dup := r.index[d.Key]; dup {
			return nil, fmt.Errorf("category %q: duplicate key", d.Key)
		}
		d.QueryVariables = append([]QueryVariable(nil), d.QueryVariables...)
		r.index[d.Key] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables.
func MustRegistry(defs ...CategoryDefinition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Definitions returns a copy of the definitions in order.
func (r *Registry) Definitions() []CategoryDefinition {
	out := make([]CategoryDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition for key.
func (r *Registry) Lookup(key string) (CategoryDefinition, error) {
	i, ok := r.index[key]
	if !ok {
		return CategoryDefinition{}, fmt.Errorf("%w: %s", ErrUnknownCategory, key)
	}
	return r.defs[i], nil
}

// Primary returns the first definition; it backs the headline record.
func (r *Registry) Primary() (CategoryDefinition, bool) {
	if len(r.defs) == 0 {
		return CategoryDefinition{}, false
	}
	return r.defs[0], true
}

// Len returns the number of categories.
func (r *Registry) Len() int { return len(r.defs) }
