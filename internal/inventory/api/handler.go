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
	"ms-boxoffice/internal/utils"
)

type Handler struct {
	Inventory *inventory.Service
	Logger    *logger.Logger
}

func NewHandler(inventoryService *inventory.Service, log *logger.Logger) *Handler {
	return &Handler{Inventory: inventoryService, Logger: log}
}

func (h *Handler) CreateOffering(w http.ResponseWriter, r *http.Request) {
	var req models.OfferingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	offering, err := h.Inventory.CreateOffering(req)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Failed to create offering", err.Error()))
		return
	}

	h.Logger.LogInventory("CREATE", offering.ID, fmt.Sprintf("%s (%d tickets)", offering.Title, offering.TotalQuantity))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Offering created", offering))
}

func (h *Handler) ListOfferings(w http.ResponseWriter, r *http.Request) {
	offerings, err := h.Inventory.ListOfferings()
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list offerings", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Offerings", offerings))
}

func (h *Handler) GetOffering(w http.ResponseWriter, r *http.Request) {
	offeringID := chi.URLParam(r, "offeringID")
	offering, err := h.Inventory.GetOffering(offeringID)
	if err != nil {
		if errors.Is(err, inventory.ErrOfferingUnavailable) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Offering not found", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load offering", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Offering", offering))
}

// GetAvailability serves the "N tickets left" display read.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	offeringID := chi.URLParam(r, "offeringID")
	availability, err := h.Inventory.Availability(offeringID)
	if err != nil {
		if errors.Is(err, inventory.ErrOfferingUnavailable) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Offering not found", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load availability", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Availability", availability))
}

func (h *Handler) DeleteOffering(w http.ResponseWriter, r *http.Request) {
	offeringID := chi.URLParam(r, "offeringID")
	if err := h.Inventory.DeleteOffering(offeringID); err != nil {
		if errors.Is(err, inventory.ErrOfferingUnavailable) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Offering not found", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to delete offering", err.Error()))
		return
	}

	h.Logger.LogInventory("DELETE", offeringID, "offering deactivated")
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Offering deactivated", nil))
}
