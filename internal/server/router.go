package server

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"dessertbox/internal/handlers"
	applog "dessertbox/internal/log"
)

func newRouter(h *handlers.Handler, sessions *scs.SessionManager) http.Handler {
	ctx := context.Background()
	app := http.NewServeMux()
	applog.Debug(ctx, "registering http routes")

	app.HandleFunc("/healthz", h.Health)
	app.HandleFunc("/api/options/", h.Options)
	app.HandleFunc("/api/data/", h.Data)
	app.HandleFunc("/api/price-preview", h.PricePreview)
	app.HandleFunc("/api/dessert-boxes", h.DessertBoxResource)
	app.HandleFunc("/api/dessert-boxes/", h.DessertBoxResource)
	applog.Debug(ctx, "route registered", "path", "/api")

	app.Handle("/api/admin/options/", h.RequireAuthentication(http.HandlerFunc(h.AdminOptionPrice)))
	applog.Debug(ctx, "route registered", "path", "/api/admin/options/", "protected", true)

	app.HandleFunc("/login", h.Login)
	app.HandleFunc("/logout", h.Logout)
	app.HandleFunc("/boxes", h.BoxPages)
	app.HandleFunc("/boxes/", h.BoxPages)
	app.HandleFunc("/", h.Home)
	applog.Debug(ctx, "route registered", "path", "/boxes")

	var sessioned http.Handler = app
	if sessions != nil {
		sessioned = sessions.LoadAndSave(app)
	}

	// The websocket needs the raw connection, so it skips the session writer.
	root := http.NewServeMux()
	root.HandleFunc("/api/price-preview/ws", h.PricePreviewStream)
	applog.Debug(ctx, "route registered", "path", "/api/price-preview/ws", "websocket", true)
	root.Handle("/", sessioned)
	return root
}
