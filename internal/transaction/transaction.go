// Package transaction holds the read-mostly projection of a marketplace
// transaction as owned by the external ledger. The projection is refreshed
// after each successful remote step; this package never reorders or
// truncates the transition history.
package transaction

import (
	"errors"
	"strings"
	"time"
)

// Role is the side of the transaction the authenticated user holds.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

// ErrNoRole signals that a user ID is empty or matches neither counterparty.
// This is an auth/data integrity error and must propagate; callers never
// default to a role.
var ErrNoRole = errors.New("user holds no role on transaction")

// Transition is one element of the append-only transition history.
type Transition struct {
	Name string    `json:"name"`
	By   string    `json:"by"`
	At   time.Time `json:"at"`
}

// Transaction is the ledger's view of one transaction.
type Transaction struct {
	ID           string `json:"id"`
	ProcessAlias string `json:"process_alias"`
	CustomerID   string `json:"customer_id"`
	ProviderID   string `json:"provider_id"`
	// LastTransition always equals the name of the final history element.
	LastTransition string         `json:"last_transition"`
	Transitions    []Transition   `json:"transitions"`
	ProtectedData  map[string]any `json:"protected_data,omitempty"`
}

// ProcessName returns the process name part of the alias, e.g.
// "default-booking" from "default-booking/release-1".
func (t *Transaction) ProcessName() string {
	name, _, _ := strings.Cut(t.ProcessAlias, "/")
	return name
}

// RecordTransition appends to the history and keeps LastTransition in sync.
func (t *Transaction) RecordTransition(name, by string, at time.Time) {
	t.Transitions = append(t.Transitions, Transition{Name: name, By: by, At: at})
	t.LastTransition = name
}

// HasTransitioned reports whether the named transition appears anywhere in
// the ordered history, not only as the last element.
func (t *Transaction) HasTransitioned(name string) bool {
	for _, tr := range t.Transitions {
		if tr.Name == name {
			return true
		}
	}
	return false
}

const paymentIntentsKey = "stripePaymentIntents"

// PaymentIntent extracts the payment-processor reference stored under
// protectedData.stripePaymentIntents.default, if present.
func (t *Transaction) PaymentIntent() (id, clientSecret string, ok bool) {
	if t == nil || t.ProtectedData == nil {
		return "", "", false
	}
	intents, ok := t.ProtectedData[paymentIntentsKey].(map[string]any)
	if !ok {
		return "", "", false
	}
	def, ok := intents["default"].(map[string]any)
	if !ok {
		return "", "", false
	}
	id, _ = def["stripePaymentIntentId"].(string)
	clientSecret, _ = def["stripePaymentIntentClientSecret"].(string)
	return id, clientSecret, id != "" || clientSecret != ""
}

// SetPaymentIntent stores the payment-processor reference in protected data.
func (t *Transaction) SetPaymentIntent(id, clientSecret string) {
	if t.ProtectedData == nil {
		t.ProtectedData = make(map[string]any)
	}
	t.ProtectedData[paymentIntentsKey] = map[string]any{
		"default": map[string]any{
			"stripePaymentIntentId":           id,
			"stripePaymentIntentClientSecret": clientSecret,
		},
	}
}

// Clone returns an independent copy of the transaction. Protected data is
// copied one level deep, which covers the opaque bags the ledger returns.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	copied := *t
	copied.Transitions = append([]Transition(nil), t.Transitions...)
	if t.ProtectedData != nil {
		copied.ProtectedData = make(map[string]any, len(t.ProtectedData))
		for k, v := range t.ProtectedData {
			copied.ProtectedData[k] = v
		}
	}
	return &copied
}

// RoleOf resolves which side of the transaction the user is on.
func RoleOf(userID string, t *Transaction) (Role, error) {
	if userID == "" || t == nil {
		return "", ErrNoRole
	}
	switch userID {
	case t.CustomerID:
		return RoleCustomer, nil
	case t.ProviderID:
		return RoleProvider, nil
	}
	return "", ErrNoRole
}
