package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"dessertbox/internal/boxes"
	"dessertbox/internal/catalog"
	applog "dessertbox/internal/log"
	"dessertbox/internal/store"
)

const (
	msgInternalError = "Internal server error"
	msgBoxNotFound   = "Dessert box not found"
)

// Dependencies are the collaborators shared by every handler.
type Dependencies struct {
	DB       *gorm.DB
	Sessions *scs.SessionManager
	Catalog  *catalog.Service
	Boxes    *boxes.Service
	// AllowedOrigins limits websocket upgrades; empty allows any origin.
	AllowedOrigins []string
}

// Handler serves the JSON API and the server-rendered pages.
type Handler struct {
	db       *gorm.DB
	sessions *scs.SessionManager
	catalog  *catalog.Service
	boxes    *boxes.Service
	options  *store.CatalogStore
	records  *store.BoxStore
	users    *store.UserStore
	upgrader websocket.Upgrader
}

// New wires a Handler. Catalog and Boxes services are built from DB when not
// supplied.
func New(deps Dependencies) *Handler {
	h := &Handler{
		db:       deps.DB,
		sessions: deps.Sessions,
		catalog:  deps.Catalog,
		boxes:    deps.Boxes,
		options:  store.NewCatalogStore(deps.DB),
		records:  store.NewBoxStore(deps.DB),
		users:    store.NewUserStore(deps.DB),
	}
	if h.catalog == nil {
		h.catalog = catalog.NewService(h.options, nil, 0)
	}
	if h.boxes == nil {
		h.boxes = boxes.NewService(h.records, h.catalog, boxes.PolicyVerify)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(deps.AllowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, candidate := range allowed {
			if candidate == "*" || strings.EqualFold(candidate, origin) {
				return true
			}
		}
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type validationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// writeServiceError maps a service error onto the API's status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var invalid *boxes.ValidationError
	switch {
	case errors.As(err, &invalid):
		applog.Debug(r.Context(), "request rejected", "action", action, "errors", invalid.Messages)
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:  invalid.Messages[0],
			Errors: invalid.Messages,
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, msgBoxNotFound)
	default:
		applog.Error(r.Context(), "request failed", "action", action, "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgInternalError)
	}
}

func parseID(value string) (uint, bool) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func pathSegments(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
