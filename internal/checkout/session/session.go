// Package session holds the durable record of an in-progress checkout.
// The record survives a full page reload so the sequencer can resume at
// the last completed step instead of restarting.
package session

import (
	"context"
	"time"

	"github.com/sharetribe/web-template-sub009/internal/transaction"
)

// OrderParams is the customer's order intent, captured when checkout
// begins and persisted with the session.
type OrderParams struct {
	CustomerID        string         `json:"customer_id"`
	ListingID         string         `json:"listing_id"`
	ProcessAlias      string         `json:"process_alias"`
	Quantity          int            `json:"quantity,omitempty"`
	BookingStart      time.Time      `json:"booking_start,omitempty"`
	BookingEnd        time.Time      `json:"booking_end,omitempty"`
	InitialMessage    string         `json:"initial_message,omitempty"`
	SavePaymentMethod bool           `json:"save_payment_method,omitempty"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// Session is the persisted state of one checkout. Only one session is
// active per customer per listing; Key derives the storage key from that
// pair.
type Session struct {
	Key         string      `json:"key"`
	ListingID   string      `json:"listing_id"`
	OrderParams OrderParams `json:"order_params"`
	// Transaction is the freshest ledger projection observed so far.
	Transaction *transaction.Transaction `json:"transaction,omitempty"`
	// Captured results of the payment authorization step, reused on
	// resume so the processor is never asked to authorize twice.
	PaymentAuthorized bool   `json:"payment_authorized,omitempty"`
	PaymentMethodRef  string `json:"payment_method_ref,omitempty"`
	AuthorizationRef  string `json:"authorization_ref,omitempty"`
	// InitialMessageFailed records a message-send failure against the
	// order so the UI can offer a message-only retry.
	InitialMessageFailed bool `json:"initial_message_failed,omitempty"`
}

// Key derives the session key for a customer/listing pair.
func Key(customerID, listingID string) string {
	return "checkout:" + customerID + ":" + listingID
}

// Store persists sessions durably enough to survive a reload.
// Load returns (nil, nil) when no session exists for the key.
type Store interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, key string) error
}

// Clone returns an independent copy, so stores and callers never share
// the embedded transaction projection.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	copied := *s
	copied.Transaction = s.Transaction.Clone()
	return &copied
}
