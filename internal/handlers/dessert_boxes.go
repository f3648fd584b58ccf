package handlers

import (
	"encoding/json"
	"net/http"

	"dessertbox/internal/boxes"
	applog "dessertbox/internal/log"
)

// DessertBoxResource handles REST-style interactions for stored dessert boxes.
func (h *Handler) DessertBoxResource(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/api/dessert-boxes")

	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			h.listDessertBoxes(w, r)
		case http.MethodPost:
			h.createDessertBox(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if len(segments) > 1 {
		http.NotFound(w, r)
		return
	}
	boxID, ok := parseID(segments[0])
	if !ok {
		applog.Debug(r.Context(), "invalid dessert box identifier", "identifier", segments[0])
		writeJSONError(w, http.StatusNotFound, msgBoxNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.showDessertBox(w, r, boxID)
	case http.MethodPut:
		h.replaceDessertBox(w, r, boxID)
	case http.MethodDelete:
		h.deleteDessertBox(w, r, boxID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listDessertBoxes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.boxes.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list dessert boxes")
		return
	}
	applog.Debug(r.Context(), "listed dessert boxes", "count", len(rows))
	writeJSON(w, http.StatusOK, projectBoxes(rows))
}

func (h *Handler) showDessertBox(w http.ResponseWriter, r *http.Request, id uint) {
	box, err := h.boxes.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "show dessert box")
		return
	}
	writeJSON(w, http.StatusOK, projectBox(*box))
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (boxes.Submission, bool) {
	var sub boxes.Submission
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(&sub); err != nil {
		applog.Debug(r.Context(), "failed to decode dessert box payload", "error", err)
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:  "invalid request payload",
			Errors: []string{"invalid request payload"},
		})
		return boxes.Submission{}, false
	}
	return sub, true
}

func (h *Handler) createDessertBox(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}
	box, err := h.boxes.Create(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, err, "create dessert box")
		return
	}
	writeJSON(w, http.StatusCreated, projectBox(*box))
}

func (h *Handler) replaceDessertBox(w http.ResponseWriter, r *http.Request, id uint) {
	if _, err := h.boxes.Get(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "replace dessert box")
		return
	}
	sub, ok := decodeSubmission(w, r)
	if !ok {
		return
	}
	box, err := h.boxes.Replace(r.Context(), id, sub)
	if err != nil {
		writeServiceError(w, r, err, "replace dessert box")
		return
	}
	writeJSON(w, http.StatusOK, projectBox(*box))
}

func (h *Handler) deleteDessertBox(w http.ResponseWriter, r *http.Request, id uint) {
	if err := h.boxes.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete dessert box")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Dessert box deleted successfully"})
}
