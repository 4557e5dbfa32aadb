package process

import (
	"fmt"
	"sort"
)

// Actor identifies who initiates a transition.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorProvider Actor = "provider"
	ActorOperator Actor = "operator"
	ActorSystem   Actor = "system"
)

// Transition declares one named edge kind: who initiates it and whether it
// must be executed through the server-mediated (privileged) path.
type Transition struct {
	Name       string
	Actor      Actor
	Privileged bool
}

// Definition is the raw description of one process variant, as shipped with
// the marketplace. It is validated and frozen into a Graph by New.
type Definition struct {
	Name         string
	InitialState string
	// States maps a state name to its outgoing edges
	// (transition name -> destination state).
	States      map[string]map[string]string
	Transitions []Transition
	// Attention lists states in which the named role is expected to act next.
	CustomerAttention []string
	ProviderAttention []string
}

// Graph is an immutable process variant: named states connected by named
// transitions. It is built once at startup and never mutated, so it is safe
// for concurrent use without locking.
type Graph struct {
	name        string
	initial     string
	states      map[string]map[string]string
	transitions map[string]Transition
	// targets flattens the per-state edges into a single
	// transition -> destination lookup. Built at load time so that a
	// transition name colliding across states with different destinations
	// is rejected up front instead of resolving by iteration order.
	targets           map[string]string
	customerAttention map[string]struct{}
	providerAttention map[string]struct{}
}

// New validates a definition and freezes it into a Graph.
func New(def Definition) (*Graph, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("process definition requires a name")
	}
	if len(def.States) == 0 {
		return nil, fmt.Errorf("process %q has no states", def.Name)
	}
	if _, ok := def.States[def.InitialState]; !ok {
		return nil, fmt.Errorf("process %q: initial state %q is not declared", def.Name, def.InitialState)
	}

	transitions := make(map[string]Transition, len(def.Transitions))
	for _, tr := range def.Transitions {
		if tr.Name == "" {
			return nil, fmt.Errorf("process %q declares a transition without a name", def.Name)
		}
		if _, dup := transitions[tr.Name]; dup {
			return nil, fmt.Errorf("process %q declares transition %q twice", def.Name, tr.Name)
		}
		transitions[tr.Name] = tr
	}

	states := make(map[string]map[string]string, len(def.States))
	targets := make(map[string]string)
	for state, edges := range def.States {
		copied := make(map[string]string, len(edges))
		for name, dst := range edges {
			if _, declared := transitions[name]; !declared {
				return nil, fmt.Errorf("process %q: state %q references undeclared transition %q", def.Name, state, name)
			}
			if _, exists := def.States[dst]; !exists {
				return nil, fmt.Errorf("process %q: transition %q points at unknown state %q", def.Name, name, dst)
			}
			if prev, seen := targets[name]; seen && prev != dst {
				return nil, fmt.Errorf("process %q: transition %q leads to both %q and %q", def.Name, name, prev, dst)
			}
			targets[name] = dst
			copied[name] = dst
		}
		states[state] = copied
	}

	return &Graph{
		name:              def.Name,
		initial:           def.InitialState,
		states:            states,
		transitions:       transitions,
		targets:           targets,
		customerAttention: toSet(def.CustomerAttention),
		providerAttention: toSet(def.ProviderAttention),
	}, nil
}

// Name returns the process name, e.g. "default-booking".
func (g *Graph) Name() string { return g.name }

// InitialState returns the state a transaction is in before any transition.
func (g *Graph) InitialState() string { return g.initial }

// StateNames returns all declared states, sorted.
func (g *Graph) StateNames() []string {
	names := make([]string, 0, len(g.states))
	for s := range g.states {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// TransitionNames returns all declared transitions, sorted.
func (g *Graph) TransitionNames() []string {
	names := make([]string, 0, len(g.transitions))
	for n := range g.transitions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// OutgoingEdges returns a copy of the state's edges
// (transition name -> destination state).
func (g *Graph) OutgoingEdges(state string) map[string]string {
	edges, ok := g.states[state]
	if !ok {
		return nil
	}
	copied := make(map[string]string, len(edges))
	for name, dst := range edges {
		copied[name] = dst
	}
	return copied
}

// HasState reports whether the graph declares the given state.
func (g *Graph) HasState(state string) bool {
	_, ok := g.states[state]
	return ok
}

// TransitionActor returns the actor that initiates the named transition.
func (g *Graph) TransitionActor(name string) (Actor, bool) {
	tr, ok := g.transitions[name]
	if !ok {
		return "", false
	}
	return tr.Actor, true
}

// NeedsCustomerAttention reports whether the state waits on the customer.
func (g *Graph) NeedsCustomerAttention(state string) bool {
	_, ok := g.customerAttention[state]
	return ok
}

// NeedsProviderAttention reports whether the state waits on the provider.
func (g *Graph) NeedsProviderAttention(state string) bool {
	_, ok := g.providerAttention[state]
	return ok
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
