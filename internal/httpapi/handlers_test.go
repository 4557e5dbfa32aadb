package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sharetribe/web-template-sub009/internal/checkout"
	"github.com/sharetribe/web-template-sub009/internal/checkout/session"
	"github.com/sharetribe/web-template-sub009/internal/observability"
	"github.com/sharetribe/web-template-sub009/internal/process"
	"github.com/sharetribe/web-template-sub009/internal/transaction"
)

type testServer struct {
	router  *chi.Mux
	store   *session.MemoryStore
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, payments checkout.PaymentClient) *testServer {
	t.Helper()

	registry, err := process.BuildDefaultRegistry()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	ledger := checkout.NewInMemoryLedgerClient()
	if payments == nil {
		payments = checkout.NewInMemoryPaymentClient(ledger)
	}
	store := session.NewMemoryStore()
	metrics := observability.NewMetrics()

	seq := checkout.NewSequencer(registry, ledger, payments, store, checkout.WithLogf(t.Logf))

	router := chi.NewRouter()
	handler := &Handler{
		Registry:  registry,
		Sequencer: seq,
		Sessions:  store,
		Metrics:   metrics,
	}
	handler.Register(router)

	return &testServer{router: router, store: store, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestGetProcess_OK(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/processes/default-booking", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	resp := decode[processResp](t, rec)
	if resp.Name != process.NameBooking || resp.InitialState != process.StateInitial {
		t.Fatalf("unexpected process: %+v", resp)
	}
	if resp.States[process.StatePendingPayment][process.TransitionConfirmPayment] != process.StatePreauthorized {
		t.Fatalf("unexpected pending-payment edges: %v", resp.States[process.StatePendingPayment])
	}
	privileged := strings.Join(resp.Privileged, ",")
	if !strings.Contains(privileged, process.TransitionRequestPayment) {
		t.Fatalf("request-payment missing from privileged list: %v", resp.Privileged)
	}
}

func TestGetProcess_Unknown(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/processes/no-such-process", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestResolveState(t *testing.T) {
	srv := newTestServer(t, nil)

	tx := &transaction.Transaction{ID: "tx-1", CustomerID: "cust-1", ProviderID: "prov-1"}
	tx.RecordTransition(process.TransitionRequestPayment, "customer", time.Now())
	tx.RecordTransition(process.TransitionConfirmPayment, "customer", time.Now())

	rec := srv.do(t, http.MethodPost, "/api/transactions/state", stateReq{
		ProcessName: process.NameBooking,
		Transaction: tx,
		TargetState: process.StatePendingPayment,
		UserID:      "prov-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}

	resp := decode[stateResp](t, rec)
	if resp.State != process.StatePreauthorized {
		t.Fatalf("unexpected state: %s", resp.State)
	}
	if resp.HasPassed == nil || !*resp.HasPassed {
		t.Fatalf("pending-payment should count as passed")
	}
	if resp.Role != string(transaction.RoleProvider) {
		t.Fatalf("unexpected role: %s", resp.Role)
	}
}

func TestResolveState_NoRoleIsForbidden(t *testing.T) {
	srv := newTestServer(t, nil)

	tx := &transaction.Transaction{ID: "tx-1", CustomerID: "cust-1", ProviderID: "prov-1"}
	rec := srv.do(t, http.MethodPost, "/api/transactions/state", stateReq{
		ProcessName: process.NameBooking,
		Transaction: tx,
		UserID:      "stranger",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestResolveState_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/state", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for invalid json: %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/transactions/state", stateReq{ProcessName: process.NameBooking})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for missing transaction: %d", rec.Code)
	}
}

func TestRunCheckout_OK(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/checkout", checkoutReq{
		OrderParams: session.OrderParams{
			CustomerID:   "cust-1",
			ListingID:    "listing-1",
			ProcessAlias: "default-booking/release-1",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}

	result := decode[checkout.Result](t, rec)
	if result.TransactionID == "" {
		t.Fatalf("expected a transaction id")
	}

	snap := srv.metrics.SnapshotNow()
	if snap.CheckoutsStarted != 1 || snap.CheckoutsCompleted != 1 || snap.CheckoutsFailed != 0 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
}

func TestRunCheckout_MissingFields(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/checkout", checkoutReq{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRunCheckout_UnknownProcess(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/checkout", checkoutReq{
		OrderParams: session.OrderParams{
			CustomerID:   "cust-1",
			ListingID:    "listing-1",
			ProcessAlias: "no-such-process/release-1",
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

type decliningPayments struct{}

func (decliningPayments) Authorize(ctx context.Context, clientSecret string, params checkout.PaymentParams) (checkout.Authorization, error) {
	return checkout.Authorization{}, errors.New("card declined")
}

func (decliningPayments) Confirm(ctx context.Context, txID, authorizationRef string) (*transaction.Transaction, error) {
	return nil, errors.New("card declined")
}

func (decliningPayments) SavePaymentMethod(ctx context.Context, customerRef, paymentMethodRef string) error {
	return nil
}

func TestRunCheckout_StepFailureIsBadGateway(t *testing.T) {
	srv := newTestServer(t, decliningPayments{})

	rec := srv.do(t, http.MethodPost, "/api/checkout", checkoutReq{
		OrderParams: session.OrderParams{
			CustomerID:   "cust-1",
			ListingID:    "listing-1",
			ProcessAlias: "default-booking/release-1",
		},
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}

	resp := decode[checkoutErrResp](t, rec)
	if resp.Step != checkout.StepAuthorizePayment || !resp.TransactionAdvanced {
		t.Fatalf("unexpected error body: %+v", resp)
	}

	snap := srv.metrics.SnapshotNow()
	if snap.CheckoutsFailed != 1 {
		t.Fatalf("failure not counted: %+v", snap)
	}
}

func TestGetSession(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/checkout/cust-1/listing-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status before save: %d", rec.Code)
	}

	sess := &session.Session{
		Key:       session.Key("cust-1", "listing-1"),
		ListingID: "listing-1",
	}
	if err := srv.store.Save(context.Background(), sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	rec = srv.do(t, http.MethodGet, "/api/checkout/cust-1/listing-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status after save: %d", rec.Code)
	}
	got := decode[session.Session](t, rec)
	if got.Key != sess.Key {
		t.Fatalf("unexpected session: %+v", got)
	}
}
