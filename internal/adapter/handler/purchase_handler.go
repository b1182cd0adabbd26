package handler

import (
	"net/http"

	"github.com/srgjo27/ticketflow/internal/core/services"
)

type PurchaseHandler struct {
	intents   *services.PaymentIntentService
	purchases *services.PurchaseService
}

func NewPurchaseHandler(intents *services.PaymentIntentService, purchases *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{intents: intents, purchases: purchases}
}

type createIntentRequest struct {
	EventID string `json:"eventId"`
}

type confirmPurchaseRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

func (h *PurchaseHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.intents.CreateIntent(r.Context(), identityFrom(r.Context()), req.EventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *PurchaseHandler) ConfirmPurchase(w http.ResponseWriter, r *http.Request) {
	var req confirmPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.purchases.ConfirmPurchase(r.Context(), identityFrom(r.Context()).UID, req.PaymentIntentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
