package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-boxoffice/internal/auth"
	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/redemption"
	"ms-boxoffice/internal/redemption/qr"
	"ms-boxoffice/internal/utils"
)

type Handler struct {
	Redemption  *redemption.Service
	QRGenerator *qr.QRGenerator
	Logger      *logger.Logger
}

func NewHandler(redemptionService *redemption.Service, qrGenerator *qr.QRGenerator, log *logger.Logger) *Handler {
	return &Handler{Redemption: redemptionService, QRGenerator: qrGenerator, Logger: log}
}

// Validate handles one gate scan. The outcome is always a 200 with an
// outcome field the scanner UI branches on; only transport or storage
// problems produce error statuses.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.Code == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("code is required", ""))
		return
	}

	operator := auth.OperatorFromRequest(r)

	result, err := h.Redemption.Validate(req.Code, operator)
	if err != nil {
		h.Logger.Error("REDEMPTION", fmt.Sprintf("Validation error for %q: %v", req.Code, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	h.Logger.LogRedemption("VALIDATE", req.Code, fmt.Sprintf("outcome=%s operator=%s", result.Outcome, operator))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Validation result", result))
}

// ValidateAll handles bulk check-in of every unit in a purchase.
func (h *Handler) ValidateAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PurchaseID string `json:"purchase_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.PurchaseID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("purchase_id is required", ""))
		return
	}

	operator := auth.OperatorFromRequest(r)

	result, err := h.Redemption.ValidateAllForPurchase(req.PurchaseID, operator)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Bulk validation failed", err.Error()))
		return
	}

	h.Logger.LogRedemption("VALIDATE_ALL", req.PurchaseID,
		fmt.Sprintf("validated=%d already_used=%d operator=%s", result.Validated, result.AlreadyUsed, operator))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bulk validation result", result))
}

// UnitQR renders a unit's scan payload as a PNG.
func (h *Handler) UnitQR(w http.ResponseWriter, r *http.Request) {
	ticketNumber := chi.URLParam(r, "ticketNumber")

	unit, err := h.Redemption.DB.GetUnitByCode(ticketNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Ticket not found", ""))
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Lookup failed", err.Error()))
		return
	}

	png, err := h.QRGenerator.GeneratePNG(unit.QRCode)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to generate QR", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
