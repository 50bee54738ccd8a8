package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/service"

	"github.com/gorilla/mux"
)

// signatureHeader is the gateway's webhook signature header.
const signatureHeader = "verif-hash"

type PaymentHandler struct {
	paymentSvc service.PaymentService
	successURL string
	failureURL string
}

func NewPaymentHandler(paymentSvc service.PaymentService, successURL, failureURL string) *PaymentHandler {
	return &PaymentHandler{
		paymentSvc: paymentSvc,
		successURL: successURL,
		failureURL: failureURL,
	}
}

// InitiatePayment handles POST /api/payment/pay.
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req service.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.paymentSvc.InitiatePayment(r.Context(), claims.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirectLink": link})
}

// Webhook handles POST /api/payment/webhook. The body is read raw and passed
// through unparsed so the signature check covers the exact bytes delivered.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}

	result, err := h.paymentSvc.HandleWebhook(r.Context(), rawBody, r.Header.Get(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadSignature):
			writeMessage(w, http.StatusUnauthorized, "invalid signature")
		case errors.Is(err, domain.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "unknown transaction reference")
		case errors.Is(err, domain.ErrGatewayUnavailable):
			// Non-2xx so the gateway retries; reconciliation is idempotent.
			writeMessage(w, http.StatusServiceUnavailable, "verification unavailable, retry")
		default:
			writeError(w, err)
		}
		return
	}

	// Recognized but inapplicable events (duplicates, declined charges) still
	// acknowledge with 200 so the gateway stops retrying.
	writeJSON(w, http.StatusOK, map[string]string{"status": string(result.Outcome)})
}

// Callback handles GET /api/payment/callback. The browser is always redirected;
// internal detail never reaches the redirect target.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	txRef := r.URL.Query().Get("tx_ref")

	result, err := h.paymentSvc.HandleCallback(r.Context(), txRef)
	if err != nil || !result.Successful() {
		if err != nil {
			logger.Warn("Callback reconciliation did not commit", "tx_ref", txRef, "error", err)
		}
		http.Redirect(w, r, h.failureURL, http.StatusFound)
		return
	}
	http.Redirect(w, r, h.successURL, http.StatusFound)
}

// Verify handles GET /api/payment/verify/{txRef}: explicit re-verification for
// clients polling a pending payment. The attempt carries the payer's contact
// details, so only the payer or an admin gets it back.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	txRef := mux.Vars(r)["txRef"]

	result, err := h.paymentSvc.VerifyTransaction(r.Context(), txRef)
	if err != nil {
		writeError(w, err)
		return
	}
	if claims.Role != domain.UserRoleAdmin && result.Attempt.UserID != claims.UserID {
		writeMessage(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  string(result.Outcome),
		"payment": result.Attempt,
	})
}

// History handles GET /api/payment/history for the authenticated user.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	payments, err := h.paymentSvc.ListUserPayments(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}
