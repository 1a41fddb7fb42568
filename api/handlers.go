package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"reviews-etl/storage"
	"reviews-etl/utils"
)

// Handlers serves the read-only lookup endpoints over the loaded tables.
// It performs no transformation of its own; schema fidelity is the
// pipeline's obligation.
type Handlers struct {
	store  storage.Store
	logger *utils.Logger
}

// NewHandlers creates the handler set over the given store.
func NewHandlers(store storage.Store, logger *utils.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// HandleHealth reports storage connectivity.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		h.logger.Error("[api] Health check failed: %v", err)
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Database connection failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleSentiment returns the most recent rolling-sentiment row for a
// product: the row with the maximum date, its rating surfaced as
// latest_sentiment_score.
func (h *Handlers) HandleSentiment(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("product_id")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	summary, err := h.store.LatestSentiment(productID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("No data found for product_id %s", productID))
		return
	}
	if err != nil {
		h.logger.Error("[api] Sentiment lookup failed for %s: %v", productID, err)
		writeError(w, http.StatusInternalServerError, "Sentiment lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
