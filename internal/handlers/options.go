package handlers

import (
	"net/http"

	applog "dessertbox/internal/log"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
)

// Options serves the catalog under /api/options: one list per category
// ordered by name, the bundle for a dessert type and the forbidden pairs.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	segments := pathSegments(r.URL.Path, "/api/options")
	if len(segments) == 0 {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(segments) == 1 && segments[0] == "incompatibilities":
		writeJSON(w, http.StatusOK, pricing.Incompatibilities())
	case len(segments) == 2 && segments[0] == "options":
		h.optionsForDessertType(w, r, segments[1])
	case len(segments) == 1:
		category, ok := pricing.ParseCategory(segments[0])
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.listCategory(w, r, category, store.OrderByName)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) listCategory(w http.ResponseWriter, r *http.Request, category pricing.Category, order string) {
	ctx := r.Context()
	var (
		payload []optionResponse
		err     error
	)
	switch category {
	case pricing.CategoryDessertType:
		rows, loadErr := h.options.DessertTypes(ctx, order)
		payload, err = projectDessertTypes(rows), loadErr
	case pricing.CategoryFlavor:
		rows, loadErr := h.options.Flavors(ctx, order)
		payload, err = projectFlavors(rows), loadErr
	case pricing.CategoryPackaging:
		rows, loadErr := h.options.Packaging(ctx, order)
		payload, err = projectPackaging(rows), loadErr
	case pricing.CategoryDietary:
		rows, loadErr := h.options.Dietary(ctx, order)
		payload, err = projectDietary(rows), loadErr
	case pricing.CategoryTheme:
		rows, loadErr := h.options.Themes(ctx, order)
		payload, err = projectThemes(rows), loadErr
	}
	if err != nil {
		applog.Error(ctx, "failed to list catalog options", "category", string(category), "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// Every dessert type currently offers the full option range; the id is only
// checked for shape.
func (h *Handler) optionsForDessertType(w http.ResponseWriter, r *http.Request, identifier string) {
	if _, ok := parseID(identifier); !ok {
		applog.Debug(r.Context(), "invalid dessert type identifier", "identifier", identifier)
		http.NotFound(w, r)
		return
	}
	opts, err := h.options.All(r.Context(), store.OrderByName)
	if err != nil {
		applog.Error(r.Context(), "failed to load options bundle", "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, projectOptions(opts, false))
}

type dataSummary struct {
	TotalDessertTypes int `json:"totalDessertTypes"`
	TotalFlavors      int `json:"totalFlavors"`
	TotalPackaging    int `json:"totalPackaging"`
	TotalDietary      int `json:"totalDietary"`
	TotalThemes       int `json:"totalThemes"`
	TotalDessertBoxes int `json:"totalDessertBoxes"`
}

type allDataResponse struct {
	optionsResponse
	DessertBoxes []boxResponse `json:"dessertBoxes"`
	Summary      dataSummary   `json:"summary"`
}

// Data dumps tables ordered by id under /api/data.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	segments := pathSegments(r.URL.Path, "/api/data")
	if len(segments) != 1 {
		http.NotFound(w, r)
		return
	}

	switch segments[0] {
	case "all-data":
		h.allData(w, r)
	case "dessert-boxes":
		rows, err := h.records.All(r.Context())
		if err != nil {
			applog.Error(r.Context(), "failed to dump dessert boxes", "error", err)
			writeJSONError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		writeJSON(w, http.StatusOK, projectBoxes(rows))
	default:
		category, ok := pricing.ParseCategory(segments[0])
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.listCategory(w, r, category, store.OrderByID)
	}
}

func (h *Handler) allData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, err := h.options.All(ctx, store.OrderByID)
	if err != nil {
		applog.Error(ctx, "failed to dump catalog", "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	rows, err := h.records.All(ctx)
	if err != nil {
		applog.Error(ctx, "failed to dump dessert boxes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, allDataResponse{
		optionsResponse: projectOptions(opts, true),
		DessertBoxes:    projectBoxes(rows),
		Summary: dataSummary{
			TotalDessertTypes: len(opts.DessertTypes),
			TotalFlavors:      len(opts.Flavors),
			TotalPackaging:    len(opts.Packaging),
			TotalDietary:      len(opts.Dietary),
			TotalThemes:       len(opts.Themes),
			TotalDessertBoxes: len(rows),
		},
	})
}
