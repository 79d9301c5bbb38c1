package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/sse"
)

// SSEHandler streams completed purchases to the admin dashboard.
type SSEHandler struct {
	Logger       *logger.Logger
	EventEmitter *sse.PurchaseEventEmitter
}

func NewSSEHandler(log *logger.Logger, emitter *sse.PurchaseEventEmitter) *SSEHandler {
	return &SSEHandler{Logger: log, EventEmitter: emitter}
}

// HandleOfferingPurchases streams purchase events for one offering.
func (h *SSEHandler) HandleOfferingPurchases(w http.ResponseWriter, r *http.Request) {
	offeringID := chi.URLParam(r, "offeringID")
	if offeringID == "" {
		http.Error(w, "Offering ID is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	eventChan := h.EventEmitter.SubscribeToOffering(ctx, offeringID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"offeringID\":\"%s\"}\n\n", offeringID)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to purchase events for offering: %s", offeringID))

	for {
		select {
		case purchase, ok := <-eventChan:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for offering: %s", offeringID))
				return
			}

			jsonData, err := json.Marshal(purchase)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize purchase event: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: purchase\ndata: %s\n\n", jsonData)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from purchase events for: %s", offeringID))
			return
		}
	}
}
