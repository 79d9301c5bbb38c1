package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-boxoffice/internal/analytics"
	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/utils"
)

type Handler struct {
	Analytics *analytics.Service
	Logger    *logger.Logger
}

func NewHandler(analyticsService *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{Analytics: analyticsService, Logger: log}
}

func (h *Handler) GetOfferingAnalytics(w http.ResponseWriter, r *http.Request) {
	offeringID := chi.URLParam(r, "offeringID")

	result, err := h.Analytics.GetOfferingAnalytics(r.Context(), offeringID)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Failed to load offering analytics", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Offering analytics", result))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.Analytics.GetSummary(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load summary", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Summary analytics", result))
}
