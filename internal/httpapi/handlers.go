// Package httpapi exposes the process engine and the checkout sequencer
// over HTTP. Rendering, routing of pages and auth live in the web layer;
// this surface only answers state questions and runs checkouts.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetribe/web-template-sub009/internal/checkout"
	"github.com/sharetribe/web-template-sub009/internal/checkout/session"
	"github.com/sharetribe/web-template-sub009/internal/observability"
	"github.com/sharetribe/web-template-sub009/internal/process"
	"github.com/sharetribe/web-template-sub009/internal/transaction"
)

// Handler serves the transaction-process and checkout endpoints.
type Handler struct {
	Registry  *process.Registry
	Sequencer *checkout.Sequencer
	Sessions  session.Store
	Metrics   *observability.Metrics
}

// Register mounts all routes on the router.
func (h *Handler) Register(r *chi.Mux) {
	r.Get("/api/processes/{name}", h.getProcess)
	r.Post("/api/transactions/state", h.resolveState)
	r.Post("/api/checkout", h.runCheckout)
	r.Get("/api/checkout/{customerID}/{listingID}", h.getSession)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type processResp struct {
	Name         string                       `json:"name"`
	InitialState string                       `json:"initial_state"`
	States       map[string]map[string]string `json:"states"`
	Privileged   []string                     `json:"privileged_transitions"`
}

func (h *Handler) getProcess(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	graph, err := h.Registry.Get(name)
	if err != nil {
		if errors.Is(err, process.ErrUnknownProcess) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := processResp{
		Name:         graph.Name(),
		InitialState: graph.InitialState(),
		States:       make(map[string]map[string]string),
	}
	for _, state := range graph.StateNames() {
		resp.States[state] = graph.OutgoingEdges(state)
	}
	for _, tr := range graph.TransitionNames() {
		if process.IsPrivileged(graph, tr) {
			resp.Privileged = append(resp.Privileged, tr)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type stateReq struct {
	ProcessName string                   `json:"process_name"`
	Transaction *transaction.Transaction `json:"transaction"`
	TargetState string                   `json:"target_state,omitempty"`
	UserID      string                   `json:"user_id,omitempty"`
}

type stateResp struct {
	State     string `json:"state"`
	HasPassed *bool  `json:"has_passed,omitempty"`
	Role      string `json:"role,omitempty"`
}

func (h *Handler) resolveState(w http.ResponseWriter, r *http.Request) {
	var req stateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProcessName == "" || req.Transaction == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	graph, err := h.Registry.Get(req.ProcessName)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	resp := stateResp{State: process.CurrentState(graph, req.Transaction)}
	if req.TargetState != "" {
		passed := process.HasPassedState(graph, req.TargetState, req.Transaction)
		resp.HasPassed = &passed
	}
	if req.UserID != "" {
		role, err := transaction.RoleOf(req.UserID, req.Transaction)
		if err != nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		resp.Role = string(role)
	}
	writeJSON(w, http.StatusOK, resp)
}

type checkoutReq struct {
	OrderParams   session.OrderParams    `json:"order_params"`
	PaymentParams checkout.PaymentParams `json:"payment_params"`
}

type checkoutErrResp struct {
	Error               string `json:"error"`
	Step                string `json:"step,omitempty"`
	TransactionAdvanced bool   `json:"transaction_advanced,omitempty"`
}

func (h *Handler) runCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.OrderParams.CustomerID == "" || req.OrderParams.ListingID == "" || req.OrderParams.ProcessAlias == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	if h.Metrics != nil {
		h.Metrics.CheckoutStarted()
	}
	result, err := h.Sequencer.RunCheckout(r.Context(), req.OrderParams, req.PaymentParams)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.CheckoutFailed()
		}
		var stepErr *checkout.StepError
		if errors.As(err, &stepErr) {
			writeJSON(w, http.StatusBadGateway, checkoutErrResp{
				Error:               stepErr.Error(),
				Step:                stepErr.Step,
				TransactionAdvanced: stepErr.TransactionAdvanced,
			})
			return
		}
		if errors.Is(err, process.ErrUnknownProcess) {
			writeJSON(w, http.StatusBadRequest, checkoutErrResp{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, checkoutErrResp{Error: err.Error()})
		return
	}
	if h.Metrics != nil {
		h.Metrics.CheckoutCompleted()
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	key := session.Key(chi.URLParam(r, "customerID"), chi.URLParam(r, "listingID"))
	sess, err := h.Sessions.Load(r.Context(), key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no checkout in progress"})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
