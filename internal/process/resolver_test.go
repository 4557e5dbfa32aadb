package process

import (
	"reflect"
	"testing"
	"time"

	"github.com/sharetribe/web-template-sub009/internal/transaction"
)

func bookingGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New(bookingDefinition())
	if err != nil {
		t.Fatalf("build booking graph: %v", err)
	}
	return g
}

func txWithHistory(names ...string) *transaction.Transaction {
	tx := &transaction.Transaction{ID: "tx-1", CustomerID: "cust-1", ProviderID: "prov-1"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range names {
		tx.RecordTransition(name, "customer", at.Add(time.Duration(i)*time.Minute))
	}
	return tx
}

func TestCurrentState(t *testing.T) {
	g := bookingGraph(t)

	if got := CurrentState(g, nil); got != "" {
		t.Fatalf("expected empty state for nil transaction, got %q", got)
	}
	if got := CurrentState(g, &transaction.Transaction{}); got != "" {
		t.Fatalf("expected empty state before first transition, got %q", got)
	}
	if got := CurrentState(g, txWithHistory(TransitionRequestPayment)); got != StatePendingPayment {
		t.Fatalf("expected %q, got %q", StatePendingPayment, got)
	}
	if got := CurrentState(g, txWithHistory(TransitionRequestPayment, TransitionConfirmPayment)); got != StatePreauthorized {
		t.Fatalf("expected %q, got %q", StatePreauthorized, got)
	}
	if got := CurrentState(g, txWithHistory("transition/not-an-edge")); got != "" {
		t.Fatalf("expected empty state for foreign transition, got %q", got)
	}
}

func TestTransitionsLeadingTo(t *testing.T) {
	g := bookingGraph(t)

	want := []string{TransitionRequestPayment, TransitionRequestPaymentAfterInquiry}
	if got := TransitionsLeadingTo(g, StatePendingPayment); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected transitions into pending-payment: %v", got)
	}

	// Decline and expire fan into the same terminal state.
	want = []string{TransitionDecline, TransitionExpire}
	if got := TransitionsLeadingTo(g, StateDeclined); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected transitions into declined: %v", got)
	}

	if got := TransitionsLeadingTo(g, "nowhere"); len(got) != 0 {
		t.Fatalf("expected no transitions into unknown state, got %v", got)
	}
}

func TestHasPassedState(t *testing.T) {
	g := bookingGraph(t)

	tx := txWithHistory(
		TransitionInquire,
		TransitionRequestPaymentAfterInquiry,
		TransitionConfirmPayment,
		TransitionAccept,
	)

	if CurrentState(g, tx) != StateAccepted {
		t.Fatalf("unexpected current state: %q", CurrentState(g, tx))
	}
	if !HasPassedState(g, StatePendingPayment, tx) {
		t.Fatalf("expected pending-payment to have been passed")
	}
	if !HasPassedState(g, StateAccepted, tx) {
		t.Fatalf("expected current state to count as passed")
	}
	if HasPassedState(g, StateDeclined, tx) {
		t.Fatalf("declined was never reached")
	}
	if HasPassedState(g, StatePendingPayment, nil) {
		t.Fatalf("nil transaction passed nothing")
	}

	// Appending later history never flips an earlier answer back to false.
	tx.RecordTransition(TransitionComplete, "system", time.Now())
	if !HasPassedState(g, StatePendingPayment, tx) {
		t.Fatalf("passed state forgotten after later transition")
	}
}

func TestIsPrivileged(t *testing.T) {
	g := bookingGraph(t)

	if !IsPrivileged(g, TransitionRequestPayment) {
		t.Fatalf("request-payment must be privileged")
	}
	if !IsPrivileged(g, TransitionConfirmPayment) {
		t.Fatalf("confirm-payment must be privileged")
	}
	if IsPrivileged(g, TransitionInquire) {
		t.Fatalf("inquire is not privileged")
	}
	if IsPrivileged(g, "transition/unknown") {
		t.Fatalf("unknown transition is not privileged")
	}
}
