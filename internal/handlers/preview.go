package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	applog "dessertbox/internal/log"
	"dessertbox/internal/pricing"
)

const (
	previewWriteWait  = 10 * time.Second
	previewPongWait   = 60 * time.Second
	previewPingPeriod = (previewPongWait * 9) / 10
	previewMaxMessage = 4096

	msgInvalidSelection = "invalid selection"
)

// PricePreview prices and validates a partial selection. Incomplete input is
// answered with a quote listing what is missing; only a body that is not a
// selection at all is rejected.
func (h *Handler) PricePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var sel pricing.Selection
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, previewMaxMessage)).Decode(&sel)
	switch {
	case errors.Is(err, io.EOF):
		sel = pricing.Selection{}
	case err != nil:
		applog.Debug(r.Context(), "price preview payload rejected", "error", err)
		writeJSONError(w, http.StatusBadRequest, msgInvalidSelection)
		return
	}

	quote, err := h.quote(r, sel)
	if err != nil {
		applog.Error(r.Context(), "failed to load catalog for preview", "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, projectQuote(quote))
}

func (h *Handler) quote(r *http.Request, sel pricing.Selection) (pricing.Quote, error) {
	catalog, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.Evaluate(sel, catalog), nil
}

type previewError struct {
	Error string `json:"error"`
}

// PricePreviewStream upgrades to a websocket and answers every selection
// message with a fresh quote until the client goes away.
func (h *Handler) PricePreviewStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Debug(r.Context(), "price preview upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(previewMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(previewPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(previewPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(previewPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(previewWriteWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	applog.Debug(r.Context(), "price preview stream opened")
	for {
		var sel pricing.Selection
		if err := conn.ReadJSON(&sel); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if !h.writeStream(r, conn, previewError{Error: msgInvalidSelection}) {
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				applog.Error(r.Context(), "price preview stream closed unexpectedly", "error", err)
			}
			applog.Debug(r.Context(), "price preview stream closed")
			return
		}

		quote, err := h.quote(r, sel)
		if err != nil {
			applog.Error(r.Context(), "failed to load catalog for preview stream", "error", err)
			h.writeStream(r, conn, previewError{Error: msgInternalError})
			return
		}
		if !h.writeStream(r, conn, projectQuote(quote)) {
			return
		}
	}
}

func (h *Handler) writeStream(r *http.Request, conn *websocket.Conn, payload any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
	if err := conn.WriteJSON(payload); err != nil {
		applog.Debug(r.Context(), "price preview write failed", "error", err)
		return false
	}
	return true
}
