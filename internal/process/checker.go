package process

import (
	"sort"
	"sync"

	"github.com/looplab/fsm"
)

// Checker answers "which transitions are legal from this state" for UI
// affordances. It wraps a single FSM instance whose state is pinned before
// each query, so it needs a mutex even though the graph itself is immutable.
type Checker struct {
	mu  sync.Mutex
	fsm *fsm.FSM
}

// NewChecker builds a checker from a graph.
func NewChecker(g *Graph) *Checker {
	// Group source states per transition name; the load-time collision
	// check guarantees each name has exactly one destination.
	sources := make(map[string][]string)
	for state, edges := range g.states {
		for name := range edges {
			sources[name] = append(sources[name], state)
		}
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	events := make(fsm.Events, 0, len(names))
	for _, name := range names {
		srcs := sources[name]
		sort.Strings(srcs)
		events = append(events, fsm.EventDesc{
			Name: name,
			Src:  srcs,
			Dst:  g.targets[name],
		})
	}

	return &Checker{
		fsm: fsm.NewFSM(g.InitialState(), events, fsm.Callbacks{}),
	}
}

// CanTransition reports whether the named transition is legal from the
// given state.
func (c *Checker) CanTransition(state, transitionName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fsm.SetState(state)
	return c.fsm.Can(transitionName)
}

// AvailableTransitions lists the transitions legal from the given state,
// sorted.
func (c *Checker) AvailableTransitions(state string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fsm.SetState(state)
	names := c.fsm.AvailableTransitions()
	sort.Strings(names)
	return names
}
