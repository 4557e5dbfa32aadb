package process

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownProcess signals a lookup for a process name that was never
// registered. This is a build/config mismatch, not a transient condition.
var ErrUnknownProcess = errors.New("unknown transaction process")

// Registry maps process names to their graphs. It is built once at startup
// and immutable thereafter.
type Registry struct {
	graphs map[string]*Graph
}

// NewRegistry constructs a registry from the given graphs.
func NewRegistry(graphs ...*Graph) (*Registry, error) {
	byName := make(map[string]*Graph, len(graphs))
	for _, g := range graphs {
		if _, dup := byName[g.Name()]; dup {
			return nil, fmt.Errorf("process %q registered twice", g.Name())
		}
		byName[g.Name()] = g
	}
	return &Registry{graphs: byName}, nil
}

// Get returns the graph for the named process.
func (r *Registry) Get(name string) (*Graph, error) {
	g, ok := r.graphs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcess, name)
	}
	return g, nil
}

// Names returns the registered process names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.graphs))
	for name := range r.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
