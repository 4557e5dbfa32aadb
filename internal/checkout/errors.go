package checkout

import (
	"errors"
	"fmt"
)

// ErrMissingAuthorization signals that the payment step ran without the
// payment-processor reference the order step should have produced. The
// request-order guard makes this unreachable in practice; it exists as a
// defensive invariant.
var ErrMissingAuthorization = errors.New("payment authorization reference missing")

// Step names, in execution order.
const (
	StepRequestOrder      = "request-order"
	StepAuthorizePayment  = "authorize-payment"
	StepConfirmPayment    = "confirm-payment"
	StepSendMessage       = "send-message"
	StepSavePaymentMethod = "save-payment-method"
)

// StepError reports which checkout step failed and whether the transaction
// had already been advanced on the ledger. When TransactionAdvanced is true
// a blind retry of the whole flow is unsafe; the caller must re-enter the
// sequencer so each step re-derives its own completion from persisted state.
type StepError struct {
	Step                string
	TransactionAdvanced bool
	Err                 error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("checkout step %s failed (transaction advanced: %t): %v", e.Step, e.TransactionAdvanced, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
