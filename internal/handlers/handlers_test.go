package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dessertbox/internal/db"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
)

const (
	testAdminEmail    = "baker@example.com"
	testAdminPassword = "ganache"
)

type testEnv struct {
	handler  *Handler
	db       *gorm.DB
	sessions *scs.SessionManager
	catalog  pricing.Catalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ctx := context.Background()
	if err := db.AutoMigrate(database); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	if err := db.SeedCatalog(ctx, database); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	if _, err := store.NewUserStore(database).Create(ctx, testAdminEmail, "Head Baker", testAdminPassword); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	catalog, err := store.NewCatalogStore(database).Catalog(ctx)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	sessions := scs.New()
	return &testEnv{
		handler:  New(Dependencies{DB: database, Sessions: sessions}),
		db:       database,
		sessions: sessions,
		catalog:  catalog,
	}
}

func (e *testEnv) id(t *testing.T, category pricing.Category, name string) uint {
	t.Helper()
	for _, option := range e.catalog.Options(category) {
		if option.Name == name {
			return option.ID
		}
	}
	t.Fatalf("no %s option named %q", category, name)
	return 0
}

// browniesPayload is Brownies + Caramel + Ribbon Wrap + Regular + Minimalist.
func (e *testEnv) browniesPayload(t *testing.T, quantity int, total string) map[string]any {
	t.Helper()
	return map[string]any{
		"dessert_type_id": e.id(t, pricing.CategoryDessertType, "Brownies"),
		"flavor_id":       e.id(t, pricing.CategoryFlavor, "Caramel"),
		"packaging_id":    e.id(t, pricing.CategoryPackaging, "Ribbon Wrap"),
		"dietary_id":      e.id(t, pricing.CategoryDietary, "Regular"),
		"theme_id":        e.id(t, pricing.CategoryTheme, "Minimalist"),
		"quantity":        quantity,
		"custom_message":  "Happy birthday",
		"total_price":     total,
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestIsHTMX(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTMX(req) {
		t.Fatal("expected false when no HTMX headers present")
	}
	req.Header.Set("HX-Request", "true")
	if !isHTMX(req) {
		t.Fatal("expected true when HX-Request header present")
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  uint
		ok    bool
	}{
		{"1", 1, true},
		{" 42 ", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			got, ok := parseID(tt.value)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("parseID(%q) = %d, %v; want %d, %v", tt.value, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPathSegments(t *testing.T) {
	t.Parallel()

	if got := pathSegments("/api/dessert-boxes/", "/api/dessert-boxes"); got != nil {
		t.Fatalf("expected no segments, got %v", got)
	}
	got := pathSegments("/api/options/options/3", "/api/options")
	if len(got) != 2 || got[0] != "options" || got[1] != "3" {
		t.Fatalf("unexpected segments %v", got)
	}
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/price-preview/ws", nil)
	req.Header.Set("Origin", "https://evil.example")
	if !originChecker(nil)(req) {
		t.Fatal("expected any origin to pass without an allow list")
	}
	check := originChecker([]string{"https://shop.example"})
	if check(req) {
		t.Fatal("expected unknown origin to be rejected")
	}
	req.Header.Set("Origin", "https://shop.example")
	if !check(req) {
		t.Fatal("expected allowed origin to pass")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	env.handler.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var resp healthResponse
	decodeBody(t, w, &resp)
	if resp.Status != "ok" || resp.Database != "ok" {
		t.Fatalf("unexpected health response %+v", resp)
	}
	if resp.Time.IsZero() {
		t.Fatal("expected response time to be populated")
	}
}

func TestHealthReportsUnavailableDatabase(t *testing.T) {
	t.Parallel()

	h := New(Dependencies{})
	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	var resp healthResponse
	decodeBody(t, w, &resp)
	if resp.Database != "unavailable" {
		t.Fatalf("expected database unavailable, got %+v", resp)
	}
}
