package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sharetribe/web-template-sub009/internal/checkout/session"
	"github.com/sharetribe/web-template-sub009/internal/process"
	"github.com/sharetribe/web-template-sub009/internal/transaction"
)

// NewInMemoryLedgerClient constructs an in-memory ledger fake.
func NewInMemoryLedgerClient() *InMemoryLedgerClient {
	return &InMemoryLedgerClient{
		transactions: make(map[string]*transaction.Transaction),
		messages:     make(map[string][]string),
		now:          time.Now,
	}
}

// InMemoryLedgerClient simulates the transaction ledger in memory. It mints
// a payment-processor reference when a payment-request transition comes in
// through the privileged path, the way the real ledger's processor
// integration does.
type InMemoryLedgerClient struct {
	mu           sync.Mutex
	transactions map[string]*transaction.Transaction
	messages     map[string][]string
	now          func() time.Time
}

func (c *InMemoryLedgerClient) CreateOrAdvanceTransaction(ctx context.Context, params session.OrderParams, processAlias, txID, transitionName string, privileged bool) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var tx *transaction.Transaction
	if txID == "" {
		tx = &transaction.Transaction{
			ID:           uuid.NewString(),
			ProcessAlias: processAlias,
			CustomerID:   params.CustomerID,
			ProviderID:   "provider-" + params.ListingID,
		}
		c.transactions[tx.ID] = tx
	} else {
		var ok bool
		tx, ok = c.transactions[txID]
		if !ok {
			return nil, fmt.Errorf("transaction %q not found", txID)
		}
	}

	tx.RecordTransition(transitionName, string(process.ActorCustomer), c.now())

	switch transitionName {
	case process.TransitionRequestPayment, process.TransitionRequestPaymentAfterInquiry:
		if !privileged {
			return nil, fmt.Errorf("transition %q requires the privileged path", transitionName)
		}
		ref := uuid.NewString()
		tx.SetPaymentIntent("pi_"+ref, "pi_secret_"+ref)
	}

	return tx.Clone(), nil
}

func (c *InMemoryLedgerClient) FetchTransaction(ctx context.Context, txID string) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %q not found", txID)
	}
	return tx.Clone(), nil
}

func (c *InMemoryLedgerClient) SendMessage(ctx context.Context, txID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.transactions[txID]; !ok {
		return fmt.Errorf("transaction %q not found", txID)
	}
	c.messages[txID] = append(c.messages[txID], text)
	return nil
}

// SeedTransaction registers an existing transaction (for testing/inspection).
func (c *InMemoryLedgerClient) SeedTransaction(tx *transaction.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactions[tx.ID] = tx.Clone()
}

// Transaction returns the ledger's copy of a transaction, if any
// (for testing/inspection).
func (c *InMemoryLedgerClient) Transaction(txID string) (*transaction.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.transactions[txID]
	return tx.Clone(), ok
}

// Messages returns the messages sent on a transaction (for testing/inspection).
func (c *InMemoryLedgerClient) Messages(txID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages[txID]...)
}

func (c *InMemoryLedgerClient) applyTransition(txID, transitionName, by string) (*transaction.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %q not found", txID)
	}
	tx.RecordTransition(transitionName, by, c.now())
	return tx.Clone(), nil
}

// NewInMemoryPaymentClient constructs a payment-processor fake that advances
// transactions on the given ledger fake when payments are confirmed.
func NewInMemoryPaymentClient(ledger *InMemoryLedgerClient) *InMemoryPaymentClient {
	return &InMemoryPaymentClient{
		ledger:         ledger,
		authorizations: make(map[string]int),
		saved:          make(map[string][]string),
	}
}

// InMemoryPaymentClient tracks authorizations and saved payment methods in
// memory.
type InMemoryPaymentClient struct {
	mu             sync.Mutex
	ledger         *InMemoryLedgerClient
	authorizations map[string]int
	saved          map[string][]string
}

func (c *InMemoryPaymentClient) Authorize(ctx context.Context, clientSecret string, params PaymentParams) (Authorization, error) {
	if err := ctx.Err(); err != nil {
		return Authorization{}, err
	}
	if clientSecret == "" {
		return Authorization{}, errors.New("authorize without client secret")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorizations[clientSecret]++
	ref := uuid.NewString()
	pm := params.PaymentMethodRef
	if pm == "" {
		pm = "pm_" + ref
	}
	return Authorization{PaymentMethodRef: pm, AuthorizationRef: "auth_" + ref}, nil
}

func (c *InMemoryPaymentClient) Confirm(ctx context.Context, txID, authorizationRef string) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if authorizationRef == "" {
		return nil, errors.New("confirm without authorization")
	}
	return c.ledger.applyTransition(txID, process.TransitionConfirmPayment, string(process.ActorCustomer))
}

func (c *InMemoryPaymentClient) SavePaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved[customerRef] = append(c.saved[customerRef], paymentMethodRef)
	return nil
}

// AuthorizationCount returns how many authorizations were created for a
// client secret (for testing/inspection).
func (c *InMemoryPaymentClient) AuthorizationCount(clientSecret string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorizations[clientSecret]
}

// SavedMethods returns the payment methods saved for a customer
// (for testing/inspection).
func (c *InMemoryPaymentClient) SavedMethods(customerRef string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.saved[customerRef]...)
}
