package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"dessertbox/internal/boxes"
	applog "dessertbox/internal/log"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
	"dessertbox/internal/views/pages"
	"dessertbox/models"
)

const (
	msgLoadFailed = "We could not load your dessert boxes. Please retry."
	msgSaveFailed = "We could not save your dessert box. Please retry."
)

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render component", "error", err)
	}
}

func (h *Handler) flash(r *http.Request, message string) {
	if h.sessions != nil {
		h.sessions.Put(r.Context(), sessionFlashKey, message)
	}
}

func (h *Handler) popFlash(r *http.Request) string {
	if h.sessions == nil {
		return ""
	}
	return h.sessions.PopString(r.Context(), sessionFlashKey)
}

// Home sends visitors to their box list.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/boxes", http.StatusSeeOther)
}

// BoxPages serves the server-rendered box list, detail and builder under
// /boxes.
func (h *Handler) BoxPages(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/boxes")

	switch {
	case len(segments) == 0:
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.boxListPage(w, r)
	case len(segments) == 1 && segments[0] == "new":
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.boxFormPage(w, r, 0, pricing.Selection{Quantity: models.DefaultQuantity}, nil, http.StatusOK)
		case http.MethodPost:
			h.submitBoxForm(w, r, 0)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case len(segments) == 1 && segments[0] == "preview":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.previewFragment(w, r)
	default:
		id, ok := parseID(segments[0])
		if !ok || len(segments) > 2 {
			h.render(w, r, http.StatusNotFound, pages.ErrorPage(msgBoxNotFound))
			return
		}
		action := ""
		if len(segments) == 2 {
			action = segments[1]
		}
		h.boxMemberPage(w, r, id, action)
	}
}

func (h *Handler) boxMemberPage(w http.ResponseWriter, r *http.Request, id uint, action string) {
	switch {
	case action == "" && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		h.boxDetailPage(w, r, id)
	case action == "edit" && r.Method == http.MethodGet:
		box, err := h.boxes.Get(r.Context(), id)
		if err != nil {
			h.renderLoadError(w, r, err)
			return
		}
		sel := pricing.Selection{
			DessertTypeID: box.DessertTypeID,
			FlavorID:      box.FlavorID,
			PackagingID:   box.PackagingID,
			DietaryID:     box.DietaryID,
			ThemeID:       box.ThemeID,
			Quantity:      box.Quantity,
			CustomMessage: box.Message(),
		}
		h.boxFormPage(w, r, id, sel, nil, http.StatusOK)
	case action == "edit" && r.Method == http.MethodPost:
		h.submitBoxForm(w, r, id)
	case action == "delete" && r.Method == http.MethodPost:
		if err := h.boxes.Delete(r.Context(), id); err != nil {
			h.renderLoadError(w, r, err)
			return
		}
		h.flash(r, fmt.Sprintf("Dessert box #%d deleted.", id))
		redirectTo(w, r, "/boxes")
	case action == "" || action == "edit" || action == "delete":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		h.render(w, r, http.StatusNotFound, pages.ErrorPage(msgBoxNotFound))
	}
}

func (h *Handler) renderLoadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.render(w, r, http.StatusNotFound, pages.ErrorPage(msgBoxNotFound))
		return
	}
	applog.Error(r.Context(), "failed to load dessert box page", "error", err)
	h.render(w, r, http.StatusInternalServerError, pages.ErrorPage(msgLoadFailed))
}

func (h *Handler) boxListPage(w http.ResponseWriter, r *http.Request) {
	data := pages.BoxListData{Flash: h.popFlash(r)}
	rows, err := h.boxes.List(r.Context())
	if err != nil {
		applog.Error(r.Context(), "failed to list dessert boxes for page", "error", err)
		data.Error = msgLoadFailed
		h.render(w, r, http.StatusInternalServerError, pages.BoxList(data))
		return
	}
	data.Boxes = make([]pages.BoxSummary, 0, len(rows))
	for _, row := range rows {
		data.Boxes = append(data.Boxes, pages.NewBoxSummary(row))
	}
	h.render(w, r, http.StatusOK, pages.BoxList(data))
}

func (h *Handler) boxDetailPage(w http.ResponseWriter, r *http.Request, id uint) {
	box, err := h.boxes.Get(r.Context(), id)
	if err != nil {
		h.renderLoadError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, pages.BoxDetail(pages.NewBoxSummary(*box), h.popFlash(r)))
}

func (h *Handler) boxFormPage(w http.ResponseWriter, r *http.Request, id uint, sel pricing.Selection, problems []string, status int) {
	catalog, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		applog.Error(r.Context(), "failed to load catalog for box form", "error", err)
		h.render(w, r, http.StatusInternalServerError, pages.ErrorPage(msgLoadFailed))
		return
	}
	data := pages.BoxFormData{
		Title:           "Build a dessert box",
		Action:          "/boxes/new",
		Catalog:         catalog,
		Selection:       sel,
		Quote:           pricing.Evaluate(sel, catalog),
		QuantityChoices: models.QuantityChoices,
		Errors:          problems,
	}
	if id != 0 {
		data.Title = fmt.Sprintf("Edit dessert box #%d", id)
		data.Action = fmt.Sprintf("/boxes/%d/edit", id)
	}
	h.render(w, r, status, pages.BoxForm(data))
}

func selectionFromForm(r *http.Request) pricing.Selection {
	quantity, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))
	if err != nil {
		quantity = 0
	}
	return pricing.Selection{
		DessertTypeID: pages.ParseUint(r.PostFormValue("dessert_type_id")),
		FlavorID:      pages.ParseUint(r.PostFormValue("flavor_id")),
		PackagingID:   pages.ParseUint(r.PostFormValue("packaging_id")),
		DietaryID:     pages.ParseUint(r.PostFormValue("dietary_id")),
		ThemeID:       pages.ParseUint(r.PostFormValue("theme_id")),
		Quantity:      quantity,
		CustomMessage: r.PostFormValue("custom_message"),
	}
}

func (h *Handler) previewFragment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	quote, err := h.quote(r, selectionFromForm(r))
	if err != nil {
		applog.Error(r.Context(), "failed to load catalog for preview fragment", "error", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, pages.QuoteReceipt(quote))
}

// submitBoxForm saves the builder form. The page never sends a total of its
// own: the server quote is submitted, so only selection problems can block
// the save.
func (h *Handler) submitBoxForm(w http.ResponseWriter, r *http.Request, id uint) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	sel := selectionFromForm(r)

	quote, err := h.quote(r, sel)
	if err != nil {
		applog.Error(r.Context(), "failed to load catalog for box submit", "error", err)
		h.render(w, r, http.StatusInternalServerError, pages.ErrorPage(msgSaveFailed))
		return
	}
	if !quote.Valid {
		h.boxFormPage(w, r, id, sel, quote.Violations, http.StatusBadRequest)
		return
	}

	total := quote.Breakdown.TotalPrice
	message := sel.CustomMessage
	sub := boxes.Submission{
		DessertTypeID: sel.DessertTypeID,
		FlavorID:      sel.FlavorID,
		PackagingID:   sel.PackagingID,
		DietaryID:     sel.DietaryID,
		ThemeID:       sel.ThemeID,
		Quantity:      sel.Quantity,
		CustomMessage: &message,
		TotalPrice:    &total,
	}

	var saved *models.DessertBox
	if id == 0 {
		saved, err = h.boxes.Create(r.Context(), sub)
	} else {
		saved, err = h.boxes.Replace(r.Context(), id, sub)
	}

	var invalid *boxes.ValidationError
	switch {
	case errors.As(err, &invalid):
		h.boxFormPage(w, r, id, sel, invalid.Messages, http.StatusBadRequest)
		return
	case errors.Is(err, store.ErrNotFound):
		h.render(w, r, http.StatusNotFound, pages.ErrorPage(msgBoxNotFound))
		return
	case err != nil:
		applog.Error(r.Context(), "failed to save dessert box from form", "error", err)
		h.boxFormPage(w, r, id, sel, []string{msgSaveFailed}, http.StatusInternalServerError)
		return
	}

	h.flash(r, fmt.Sprintf("Dessert box #%d saved.", saved.ID))
	redirectTo(w, r, fmt.Sprintf("/boxes/%d", saved.ID))
}
