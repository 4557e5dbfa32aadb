package checkout

import (
	"context"

	"github.com/sharetribe/web-template-sub009/internal/checkout/session"
	"github.com/sharetribe/web-template-sub009/internal/transaction"
)

// LedgerClient is the transaction ledger this core does not own. The ledger
// serializes transitions; every call returns the freshest projection.
type LedgerClient interface {
	// CreateOrAdvanceTransaction requests the named transition. With an
	// empty txID it creates a new transaction; otherwise it advances the
	// existing one. Privileged transitions go through the server-mediated
	// path on the ledger side.
	CreateOrAdvanceTransaction(ctx context.Context, params session.OrderParams, processAlias, txID, transitionName string, privileged bool) (*transaction.Transaction, error)
	// FetchTransaction refreshes the projection. Read-only, safe to retry.
	FetchTransaction(ctx context.Context, txID string) (*transaction.Transaction, error)
	// SendMessage posts the customer's initial message on the transaction.
	SendMessage(ctx context.Context, txID, text string) error
}

// PaymentParams carries the payment-instrument details for authorization.
type PaymentParams struct {
	PaymentMethodRef string         `json:"payment_method_ref,omitempty"`
	BillingDetails   map[string]any `json:"billing_details,omitempty"`
}

// Authorization is the payment processor's handle for an authorized charge.
type Authorization struct {
	PaymentMethodRef string `json:"payment_method_ref"`
	AuthorizationRef string `json:"authorization_ref"`
}

// PaymentClient is the external payment processor.
type PaymentClient interface {
	// Authorize runs the user-facing authorization against the client
	// secret minted when the order was requested.
	Authorize(ctx context.Context, clientSecret string, params PaymentParams) (Authorization, error)
	// Confirm finalizes the authorized payment and advances the
	// transaction; the returned projection reflects the confirmation.
	Confirm(ctx context.Context, txID, authorizationRef string) (*transaction.Transaction, error)
	// SavePaymentMethod attaches the payment method to the customer for
	// future checkouts.
	SavePaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error
}
