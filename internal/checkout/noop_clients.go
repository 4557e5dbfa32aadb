package checkout

import (
	"context"
	"time"

	"github.com/sharetribe/web-template-sub009/internal/checkout/session"
	"github.com/sharetribe/web-template-sub009/internal/transaction"
)

// NoopLedgerClient is a stub LedgerClient that always succeeds.
type NoopLedgerClient struct{}

func (n *NoopLedgerClient) CreateOrAdvanceTransaction(ctx context.Context, params session.OrderParams, processAlias, txID, transitionName string, privileged bool) (*transaction.Transaction, error) {
	if txID == "" {
		txID = "noop-tx"
	}
	tx := &transaction.Transaction{ID: txID, ProcessAlias: processAlias, CustomerID: params.CustomerID}
	tx.RecordTransition(transitionName, "customer", time.Time{})
	return tx, nil
}

func (n *NoopLedgerClient) FetchTransaction(ctx context.Context, txID string) (*transaction.Transaction, error) {
	return &transaction.Transaction{ID: txID}, nil
}

func (n *NoopLedgerClient) SendMessage(ctx context.Context, txID, text string) error {
	return nil
}

// NoopPaymentClient is a stub PaymentClient that always succeeds.
type NoopPaymentClient struct{}

func (n *NoopPaymentClient) Authorize(ctx context.Context, clientSecret string, params PaymentParams) (Authorization, error) {
	return Authorization{PaymentMethodRef: "pm-noop", AuthorizationRef: "auth-noop"}, nil
}

func (n *NoopPaymentClient) Confirm(ctx context.Context, txID, authorizationRef string) (*transaction.Transaction, error) {
	return &transaction.Transaction{ID: txID}, nil
}

func (n *NoopPaymentClient) SavePaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error {
	return nil
}
