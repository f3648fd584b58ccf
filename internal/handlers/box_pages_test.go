package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"dessertbox/internal/pricing"
)

func (e *testEnv) pages() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", e.handler.Home)
	mux.HandleFunc("/boxes", e.handler.BoxPages)
	mux.HandleFunc("/boxes/", e.handler.BoxPages)
	return e.sessions.LoadAndSave(mux)
}

func (e *testEnv) brownieForm(t *testing.T, quantity string) url.Values {
	t.Helper()
	return url.Values{
		"dessert_type_id": {itoa(e.id(t, pricing.CategoryDessertType, "Brownies"))},
		"flavor_id":       {itoa(e.id(t, pricing.CategoryFlavor, "Caramel"))},
		"packaging_id":    {itoa(e.id(t, pricing.CategoryPackaging, "Ribbon Wrap"))},
		"dietary_id":      {itoa(e.id(t, pricing.CategoryDietary, "Regular"))},
		"theme_id":        {itoa(e.id(t, pricing.CategoryTheme, "Minimalist"))},
		"quantity":        {quantity},
		"custom_message":  {"  For the team  "},
	}
}

func TestHomeRedirectsToBoxes(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.pages().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/boxes" {
		t.Fatalf("expected redirect to /boxes, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	env.pages().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", w.Code)
	}
}

func TestBoxListEmptyState(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.pages().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boxes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No dessert boxes yet") {
		t.Fatalf("expected empty state, got %s", w.Body.String())
	}
}

func TestNewBoxFormDefaultsToTwelve(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.pages().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boxes/new", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `<option value="12" selected>`) {
		t.Fatalf("expected quantity 12 preselected, got %s", body)
	}
	if !strings.Contains(body, pricing.MsgSelectDessertType) {
		t.Fatalf("expected empty selection violations, got %s", body)
	}
}

func TestSubmitBoxFormCreatesAndShowsBox(t *testing.T) {
	env := newTestEnv(t)
	handler := env.pages()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, postForm("/boxes/new", env.brownieForm(t, "12")))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after save, got %d: %s", w.Code, w.Body.String())
	}
	location := w.Header().Get("Location")
	if !strings.HasPrefix(location, "/boxes/") {
		t.Fatalf("expected redirect to the new box, got %q", location)
	}
	cookie := sessionCookie(t, w, env.sessions.Cookie.Name)

	req := httptest.NewRequest(http.MethodGet, location, nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	body := w.Body.String()
	for _, want := range []string{"$312.00", "Brownies", "For the team", "saved."} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q on detail page, got %s", want, body)
		}
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boxes", nil))
	if !strings.Contains(w.Body.String(), "$312.00") {
		t.Fatalf("expected box in list, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, location+"/edit", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Edit dessert box") {
		t.Fatalf("expected edit form, got %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, postForm(location+"/edit", env.brownieForm(t, "24")))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after edit, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, location, nil))
	if !strings.Contains(w.Body.String(), "$624.00") {
		t.Fatalf("expected edited total, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, postForm(location+"/delete", url.Values{}))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/boxes" {
		t.Fatalf("expected redirect to list after delete, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, location, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestSubmitBoxFormShowsViolations(t *testing.T) {
	env := newTestEnv(t)

	form := env.brownieForm(t, "12")
	form.Set("dietary_id", itoa(env.id(t, pricing.CategoryDietary, "Sugar-Free")))

	w := httptest.NewRecorder()
	env.pages().ServeHTTP(w, postForm("/boxes/new", form))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Brownies cannot be made sugar-free due to their chocolate content") {
		t.Fatalf("expected violation on form, got %s", w.Body.String())
	}
}

func TestPreviewFragment(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.pages().ServeHTTP(w, postForm("/boxes/preview", env.brownieForm(t, "6")))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "<html") || !strings.Contains(body, "$156.00") {
		t.Fatalf("expected receipt fragment with total, got %s", body)
	}
}

func TestBoxDetailInvalidIdentifier(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/boxes/abc", "/boxes/9999", "/boxes/1/unknown"} {
		w := httptest.NewRecorder()
		env.pages().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", target, w.Code)
		}
	}
}
