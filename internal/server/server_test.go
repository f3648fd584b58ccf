package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dessertbox/internal/db"
	"dessertbox/internal/store"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name)), &gorm.Config{
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
	if err := db.AutoMigrate(database); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	if err := db.SeedCatalog(context.Background(), database); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	return database
}

func TestNewAppliesSessionDefaults(t *testing.T) {
	database := openTestDatabase(t)
	if _, err := store.NewUserStore(database).Create(context.Background(), "user@example.com", "User", "password123"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	cfg := Config{Addr: ":8080", Session: SessionConfig{CookieSecure: true}, Database: database}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if srv.httpServer.Addr != ":8080" {
		t.Fatalf("expected server addr :8080, got %q", srv.httpServer.Addr)
	}
	if srv.httpServer.Handler == nil {
		t.Fatal("expected handler to be configured")
	}

	data := url.Values{}
	data.Set("email", "user@example.com")
	data.Set("password", "password123")
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after login, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie to be set")
	}
	if cookies[0].Name != "dessertbox_session" {
		t.Fatalf("expected default session cookie name, got %q", cookies[0].Name)
	}
	if !cookies[0].Secure {
		t.Fatal("expected cookie secure flag to be true")
	}
}

func TestServerHandler(t *testing.T) {
	srv, err := New(Config{Addr: ":9090", Database: openTestDatabase(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	handler := srv.Handler()
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header on response")
	}
}

func TestStopWithoutStart(t *testing.T) {
	srv, err := New(Config{Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
