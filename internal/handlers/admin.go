package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	applog "dessertbox/internal/log"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
)

type priceUpdateRequest struct {
	Price *decimal.Decimal `json:"price"`
}

type priceUpdateResponse struct {
	Category string `json:"category"`
	ID       uint   `json:"id"`
	Price    string `json:"price"`
}

// AdminOptionPrice changes one option price at
// PUT /api/admin/options/{category}/{id}. Stored boxes keep their totals.
func (h *Handler) AdminOptionPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	segments := pathSegments(r.URL.Path, "/api/admin/options")
	if len(segments) != 2 {
		http.NotFound(w, r)
		return
	}
	category, ok := pricing.ParseCategory(segments[0])
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Option category not found")
		return
	}
	id, ok := parseID(segments[1])
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Option not found")
		return
	}

	var req priceUpdateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		applog.Debug(r.Context(), "failed to decode price update", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Price == nil {
		writeJSONError(w, http.StatusBadRequest, "price is required")
		return
	}
	price := *req.Price
	if price.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	if err := h.catalog.UpdatePrice(r.Context(), category, id, price); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Option not found")
			return
		}
		applog.Error(r.Context(), "failed to update option price", "category", string(category), "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, priceUpdateResponse{
		Category: string(category),
		ID:       id,
		Price:    pricing.Round(price).StringFixed(2),
	})
}
