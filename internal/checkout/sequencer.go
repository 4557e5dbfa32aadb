package checkout

import (
	"context"
	"log"
	"strings"

	"github.com/sharetribe/web-template-sub009/internal/checkout/session"
	"github.com/sharetribe/web-template-sub009/internal/process"
)

// Result is the outcome of a completed checkout. MessageSent and
// PaymentMethodSaved record non-critical step failures without failing the
// checkout: by the time those steps run, the order is already placed.
type Result struct {
	TransactionID      string `json:"transaction_id"`
	PaymentMethodSaved bool   `json:"payment_method_saved"`
	MessageSent        bool   `json:"message_sent"`
}

// TransitionNotifier is called after each successful ledger transition.
type TransitionNotifier func(txID, transitionName, state string)

// StepObserver opens a measurement for one step and returns the closer to
// call when the step ends.
type StepObserver func(step string) func(err error)

// Sequencer drives the ordered, idempotent checkout sequence: request or
// advance the transaction, authorize payment, confirm payment, send the
// initial message, optionally persist the payment method.
//
// Steps run strictly sequentially; each step re-derives "have I already
// done this?" from the persisted session rather than in-memory flags, so a
// full process restart (page reload) resumes at the last completed step.
// The sequencer never retries a step automatically.
type Sequencer struct {
	registry *process.Registry
	ledger   LedgerClient
	payments PaymentClient
	sessions session.Store
	notify   TransitionNotifier
	observe  StepObserver
	logf     func(format string, args ...any)
}

// SequencerOption configures optional sequencer collaborators.
type SequencerOption func(*Sequencer)

// WithNotifier registers a callback for successful ledger transitions.
func WithNotifier(fn TransitionNotifier) SequencerOption {
	return func(s *Sequencer) { s.notify = fn }
}

// WithLogf overrides the logger (default log.Printf).
func WithLogf(logf func(format string, args ...any)) SequencerOption {
	return func(s *Sequencer) { s.logf = logf }
}

// WithStepObserver registers a per-step measurement hook.
func WithStepObserver(observe StepObserver) SequencerOption {
	return func(s *Sequencer) { s.observe = observe }
}

// NewSequencer constructs a Sequencer.
func NewSequencer(registry *process.Registry, ledger LedgerClient, payments PaymentClient, sessions session.Store, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		registry: registry,
		ledger:   ledger,
		payments: payments,
		sessions: sessions,
		notify:   func(string, string, string) {},
		observe:  func(string) func(error) { return func(error) {} },
		logf:     log.Printf,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunCheckout executes the checkout sequence for the given order intent.
// It is safe to call again after a partial failure or a reload: completed
// steps are detected from the persisted session and skipped.
//
// An unknown process name propagates unwrapped; step failures surface as
// *StepError. Message-send and payment-method-save failures do not fail
// the checkout and are reported on the Result instead.
func (s *Sequencer) RunCheckout(ctx context.Context, params session.OrderParams, payment PaymentParams) (Result, error) {
	processName, _, _ := strings.Cut(params.ProcessAlias, "/")
	graph, err := s.registry.Get(processName)
	if err != nil {
		return Result{}, err
	}

	key := session.Key(params.CustomerID, params.ListingID)
	sess, err := s.sessions.Load(ctx, key)
	if err != nil {
		return Result{}, &StepError{Step: StepRequestOrder, Err: err}
	}
	if sess == nil {
		sess = &session.Session{Key: key, ListingID: params.ListingID, OrderParams: params}
	} else {
		s.refreshProjection(ctx, sess)
	}

	if err := s.step(StepRequestOrder, func() error {
		return s.requestOrder(ctx, graph, sess, params)
	}); err != nil {
		return Result{}, err
	}
	if err := s.step(StepAuthorizePayment, func() error {
		return s.authorizePayment(ctx, sess, payment)
	}); err != nil {
		return Result{}, err
	}
	if err := s.step(StepConfirmPayment, func() error {
		return s.confirmPayment(ctx, graph, sess)
	}); err != nil {
		return Result{}, err
	}

	result := Result{TransactionID: sess.Transaction.ID, MessageSent: true}
	if params.InitialMessage != "" {
		if err := s.step(StepSendMessage, func() error {
			return s.sendInitialMessage(ctx, sess, params)
		}); err != nil {
			result.MessageSent = false
		}
	}
	if params.SavePaymentMethod && sess.PaymentMethodRef != "" {
		err := s.step(StepSavePaymentMethod, func() error {
			return s.payments.SavePaymentMethod(ctx, params.CustomerID, sess.PaymentMethodRef)
		})
		if err != nil {
			// The order is already placed; swallow into the result flag.
			s.logf("checkout: save payment method for %s: %v", params.CustomerID, err)
		}
		result.PaymentMethodSaved = err == nil
	}

	if result.MessageSent {
		if err := s.sessions.Delete(ctx, key); err != nil {
			s.logf("checkout: delete session %s: %v", key, err)
		}
	}
	// On a message failure the session is kept, with the failure recorded,
	// so the UI can retry just the message without re-running payment.
	return result, nil
}

func (s *Sequencer) step(name string, fn func() error) error {
	done := s.observe(name)
	err := fn()
	done(err)
	return err
}

// refreshProjection re-fetches the transaction on resume so decisions are
// made against the ledger's view, not a stale stored copy. Best effort:
// the stored projection still encodes the last known progress.
func (s *Sequencer) refreshProjection(ctx context.Context, sess *session.Session) {
	if sess.Transaction == nil {
		return
	}
	tx, err := s.ledger.FetchTransaction(ctx, sess.Transaction.ID)
	if err != nil {
		s.logf("checkout: refresh transaction %s: %v", sess.Transaction.ID, err)
		return
	}
	sess.Transaction = tx
}

func (s *Sequencer) requestOrder(ctx context.Context, graph *process.Graph, sess *session.Session, params session.OrderParams) error {
	if sess.Transaction != nil {
		if _, _, ok := sess.Transaction.PaymentIntent(); ok {
			// An authorization was already created on a previous
			// attempt; re-use the existing transaction instead of
			// requesting a duplicate.
			return nil
		}
	}

	transitionName := process.TransitionRequestPayment
	txID := ""
	if sess.Transaction != nil && process.CurrentState(graph, sess.Transaction) == process.StateInquiry {
		transitionName = process.TransitionRequestPaymentAfterInquiry
		txID = sess.Transaction.ID
	}

	tx, err := s.ledger.CreateOrAdvanceTransaction(ctx, params, params.ProcessAlias, txID, transitionName, process.IsPrivileged(graph, transitionName))
	if err != nil {
		return &StepError{Step: StepRequestOrder, Err: err}
	}
	sess.Transaction = tx
	// Persist before the next remote call so a crash between steps
	// leaves the session resumable at the last completed step.
	if err := s.sessions.Save(ctx, sess); err != nil {
		return &StepError{Step: StepRequestOrder, TransactionAdvanced: true, Err: err}
	}
	s.notify(tx.ID, transitionName, process.CurrentState(graph, tx))
	return nil
}

func (s *Sequencer) authorizePayment(ctx context.Context, sess *session.Session, payment PaymentParams) error {
	if sess.PaymentAuthorized {
		// Interactive authorization (e.g. a 3-D Secure challenge) was
		// completed in a previous attempt; reuse the captured result.
		return nil
	}
	_, clientSecret, ok := sess.Transaction.PaymentIntent()
	if !ok {
		return &StepError{Step: StepAuthorizePayment, TransactionAdvanced: true, Err: ErrMissingAuthorization}
	}
	auth, err := s.payments.Authorize(ctx, clientSecret, payment)
	if err != nil {
		return &StepError{Step: StepAuthorizePayment, TransactionAdvanced: true, Err: err}
	}
	sess.PaymentAuthorized = true
	sess.PaymentMethodRef = auth.PaymentMethodRef
	sess.AuthorizationRef = auth.AuthorizationRef
	if err := s.sessions.Save(ctx, sess); err != nil {
		return &StepError{Step: StepAuthorizePayment, TransactionAdvanced: true, Err: err}
	}
	return nil
}

func (s *Sequencer) confirmPayment(ctx context.Context, graph *process.Graph, sess *session.Session) error {
	if sess.Transaction.LastTransition == process.TransitionConfirmPayment {
		// Already confirmed; re-issuing would double-confirm against
		// the ledger.
		return nil
	}
	tx, err := s.payments.Confirm(ctx, sess.Transaction.ID, sess.AuthorizationRef)
	if err != nil {
		return &StepError{Step: StepConfirmPayment, TransactionAdvanced: true, Err: err}
	}
	sess.Transaction = tx
	if err := s.sessions.Save(ctx, sess); err != nil {
		return &StepError{Step: StepConfirmPayment, TransactionAdvanced: true, Err: err}
	}
	s.notify(tx.ID, process.TransitionConfirmPayment, process.CurrentState(graph, tx))
	return nil
}

// sendInitialMessage is fire-and-forget relative to checkout completion: a
// failure never rolls back payment. The failure is recorded on the session
// so the UI can offer a message-only retry.
func (s *Sequencer) sendInitialMessage(ctx context.Context, sess *session.Session, params session.OrderParams) error {
	err := s.ledger.SendMessage(ctx, sess.Transaction.ID, params.InitialMessage)
	if err == nil {
		return nil
	}
	s.logf("checkout: send initial message on %s: %v", sess.Transaction.ID, err)
	sess.InitialMessageFailed = true
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		s.logf("checkout: record message failure on %s: %v", sess.Key, saveErr)
	}
	return err
}
