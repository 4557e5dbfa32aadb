package process

import (
	"reflect"
	"strings"
	"testing"
)

func validDefinition() Definition {
	return Definition{
		Name:         "test-process",
		InitialState: "start",
		States: map[string]map[string]string{
			"start":  {"transition/go": "middle"},
			"middle": {"transition/finish": "done"},
			"done":   {},
		},
		Transitions: []Transition{
			{Name: "transition/go", Actor: ActorCustomer},
			{Name: "transition/finish", Actor: ActorProvider},
		},
		CustomerAttention: []string{"middle"},
		ProviderAttention: []string{"done"},
	}
}

func TestNew_Valid(t *testing.T) {
	g, err := New(validDefinition())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.Name() != "test-process" {
		t.Fatalf("unexpected name: %s", g.Name())
	}
	if g.InitialState() != "start" {
		t.Fatalf("unexpected initial state: %s", g.InitialState())
	}
}

func TestNew_RequiresName(t *testing.T) {
	def := validDefinition()
	def.Name = ""
	if _, err := New(def); err == nil {
		t.Fatalf("expected error for missing name")
	}
}

func TestNew_RequiresStates(t *testing.T) {
	def := validDefinition()
	def.States = nil
	if _, err := New(def); err == nil {
		t.Fatalf("expected error for empty state set")
	}
}

func TestNew_InitialStateMustBeDeclared(t *testing.T) {
	def := validDefinition()
	def.InitialState = "nowhere"
	if _, err := New(def); err == nil {
		t.Fatalf("expected error for undeclared initial state")
	}
}

func TestNew_RejectsDuplicateTransitionDeclaration(t *testing.T) {
	def := validDefinition()
	def.Transitions = append(def.Transitions, Transition{Name: "transition/go", Actor: ActorOperator})
	if _, err := New(def); err == nil {
		t.Fatalf("expected error for duplicate transition declaration")
	}
}

func TestNew_RejectsUndeclaredTransitionEdge(t *testing.T) {
	def := validDefinition()
	def.States["start"]["transition/mystery"] = "done"
	if _, err := New(def); err == nil {
		t.Fatalf("expected error for undeclared transition on edge")
	}
}

func TestNew_RejectsUnknownDestination(t *testing.T) {
	def := validDefinition()
	def.States["middle"]["transition/finish"] = "void"
	if _, err := New(def); err == nil {
		t.Fatalf("expected error for unknown destination state")
	}
}

func TestNew_RejectsFanInCollision(t *testing.T) {
	def := validDefinition()
	// Same transition name out of two states with different destinations.
	def.States["middle"]["transition/go"] = "done"
	_, err := New(def)
	if err == nil {
		t.Fatalf("expected collision error")
	}
	if !strings.Contains(err.Error(), "leads to both") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_AllowsSharedDestination(t *testing.T) {
	def := validDefinition()
	// The same transition name from several states is fine as long as
	// every edge agrees on the destination.
	def.States["middle"]["transition/go"] = "middle"
	def.States["start"]["transition/go"] = "middle"
	if _, err := New(def); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestGraph_Accessors(t *testing.T) {
	g, err := New(validDefinition())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wantStates := []string{"done", "middle", "start"}
	if got := g.StateNames(); !reflect.DeepEqual(got, wantStates) {
		t.Fatalf("unexpected states: %v", got)
	}
	wantTransitions := []string{"transition/finish", "transition/go"}
	if got := g.TransitionNames(); !reflect.DeepEqual(got, wantTransitions) {
		t.Fatalf("unexpected transitions: %v", got)
	}

	if !g.HasState("middle") || g.HasState("void") {
		t.Fatalf("HasState answered wrong")
	}

	actor, ok := g.TransitionActor("transition/finish")
	if !ok || actor != ActorProvider {
		t.Fatalf("unexpected actor: %v %v", actor, ok)
	}
	if _, ok := g.TransitionActor("transition/mystery"); ok {
		t.Fatalf("expected unknown transition to report !ok")
	}

	if !g.NeedsCustomerAttention("middle") || g.NeedsCustomerAttention("done") {
		t.Fatalf("customer attention answered wrong")
	}
	if !g.NeedsProviderAttention("done") || g.NeedsProviderAttention("start") {
		t.Fatalf("provider attention answered wrong")
	}
}

func TestGraph_OutgoingEdgesReturnsCopy(t *testing.T) {
	g, err := New(validDefinition())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	edges := g.OutgoingEdges("start")
	edges["transition/tamper"] = "done"

	again := g.OutgoingEdges("start")
	if _, leaked := again["transition/tamper"]; leaked {
		t.Fatalf("mutating the returned edge map leaked into the graph")
	}
	if g.OutgoingEdges("void") != nil {
		t.Fatalf("expected nil edges for unknown state")
	}
}
