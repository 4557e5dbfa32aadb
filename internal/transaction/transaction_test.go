package transaction

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestProcessName(t *testing.T) {
	tx := &Transaction{ProcessAlias: "default-booking/release-1"}
	if got := tx.ProcessName(); got != "default-booking" {
		t.Fatalf("unexpected process name: %s", got)
	}
	tx.ProcessAlias = "default-purchase"
	if got := tx.ProcessName(); got != "default-purchase" {
		t.Fatalf("alias without version should pass through, got %s", got)
	}
}

func TestRecordTransition_KeepsLastInSync(t *testing.T) {
	tx := &Transaction{ID: "tx-1"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tx.RecordTransition("transition/request-payment", "customer", at)
	tx.RecordTransition("transition/confirm-payment", "customer", at.Add(time.Minute))

	if tx.LastTransition != "transition/confirm-payment" {
		t.Fatalf("unexpected last transition: %s", tx.LastTransition)
	}
	if len(tx.Transitions) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(tx.Transitions))
	}
	if tx.Transitions[1].Name != tx.LastTransition {
		t.Fatalf("last transition diverged from history tail")
	}

	if !tx.HasTransitioned("transition/request-payment") {
		t.Fatalf("earlier transition must still be found in history")
	}
	if tx.HasTransitioned("transition/decline") {
		t.Fatalf("decline never happened")
	}
}

func TestPaymentIntent_RoundTrip(t *testing.T) {
	tx := &Transaction{ID: "tx-1"}

	if _, _, ok := tx.PaymentIntent(); ok {
		t.Fatalf("expected no intent on a fresh transaction")
	}

	tx.SetPaymentIntent("pi_123", "pi_secret_123")
	id, secret, ok := tx.PaymentIntent()
	if !ok || id != "pi_123" || secret != "pi_secret_123" {
		t.Fatalf("unexpected intent: %q %q %v", id, secret, ok)
	}
}

// The intent must survive the JSON round trip the session stores put it
// through, where the nested bags come back as map[string]any.
func TestPaymentIntent_SurvivesJSON(t *testing.T) {
	tx := &Transaction{ID: "tx-1"}
	tx.SetPaymentIntent("pi_123", "pi_secret_123")

	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Transaction
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	id, secret, ok := decoded.PaymentIntent()
	if !ok || id != "pi_123" || secret != "pi_secret_123" {
		t.Fatalf("intent lost in round trip: %q %q %v", id, secret, ok)
	}
}

func TestClone_Independence(t *testing.T) {
	var nilTx *Transaction
	if nilTx.Clone() != nil {
		t.Fatalf("clone of nil must be nil")
	}

	tx := &Transaction{ID: "tx-1"}
	tx.RecordTransition("transition/request-payment", "customer", time.Now())
	tx.SetPaymentIntent("pi_old", "secret_old")

	clone := tx.Clone()
	clone.RecordTransition("transition/confirm-payment", "customer", time.Now())
	clone.SetPaymentIntent("pi_new", "secret_new")

	if tx.LastTransition != "transition/request-payment" {
		t.Fatalf("clone mutation leaked into history: %s", tx.LastTransition)
	}
	if len(tx.Transitions) != 1 {
		t.Fatalf("clone mutation leaked into transitions: %d", len(tx.Transitions))
	}
	if id, _, _ := tx.PaymentIntent(); id != "pi_old" {
		t.Fatalf("clone mutation leaked into protected data: %s", id)
	}
}

func TestRoleOf(t *testing.T) {
	tx := &Transaction{CustomerID: "cust-1", ProviderID: "prov-1"}

	role, err := RoleOf("cust-1", tx)
	if err != nil || role != RoleCustomer {
		t.Fatalf("unexpected customer result: %v %v", role, err)
	}
	role, err = RoleOf("prov-1", tx)
	if err != nil || role != RoleProvider {
		t.Fatalf("unexpected provider result: %v %v", role, err)
	}

	if _, err := RoleOf("stranger", tx); !errors.Is(err, ErrNoRole) {
		t.Fatalf("expected ErrNoRole for stranger, got %v", err)
	}
	if _, err := RoleOf("", tx); !errors.Is(err, ErrNoRole) {
		t.Fatalf("expected ErrNoRole for empty user, got %v", err)
	}
	if _, err := RoleOf("cust-1", nil); !errors.Is(err, ErrNoRole) {
		t.Fatalf("expected ErrNoRole for nil transaction, got %v", err)
	}
}
