package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-boxoffice/internal/inventory"
	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/purchase"
	"ms-boxoffice/internal/utils"
)

type Handler struct {
	Purchases *purchase.Service
	Logger    *logger.Logger
}

func NewHandler(purchaseService *purchase.Service, log *logger.Logger) *Handler {
	return &Handler{Purchases: purchaseService, Logger: log}
}

// CreatePurchase is invoked by the outer app after its payment gateway
// confirms success (webhook or client-polled verification). Safe to
// retry with the same payment reference.
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req models.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.Purchases.Create(req)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrOfferingUnavailable):
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("This event is no longer available", err.Error()))
		case errors.Is(err, purchase.ErrSoldOut):
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Not enough tickets remaining", err.Error()))
		case errors.Is(err, purchase.ErrMintingFailure):
			h.Logger.Error("PURCHASE", fmt.Sprintf("Minting failure for reference %s: %v", req.PaymentReference, err))
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("Could not issue tickets, please retry", err.Error()))
		default:
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Failed to create purchase", err.Error()))
		}
		return
	}

	h.Logger.LogPurchase("CREATE", result.Purchase.ID,
		fmt.Sprintf("%d ticket(s) for offering %s", result.Purchase.Quantity, result.Purchase.OfferingID))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Purchase created", result))
}

// GetByAccessToken serves the customer "my tickets" page lookup.
func (h *Handler) GetByAccessToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "accessToken")
	result, err := h.Purchases.GetByAccessToken(token)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Purchase not found", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Purchase", result))
}

// ConfirmPayment handles a late gateway webhook flipping a pending
// purchase to completed or failed.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentReference string `json:"payment_reference"`
		Status           string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.Purchases.ConfirmPayment(req.PaymentReference, req.Status)
	if err != nil {
		if errors.Is(err, purchase.ErrPurchaseNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Purchase not found", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Failed to confirm payment", err.Error()))
		return
	}

	h.Logger.LogPurchase("CONFIRM", result.ID, fmt.Sprintf("payment %s", result.PaymentStatus))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment status updated", result))
}
