package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"rowlly_listings/catalog"
	"rowlly_listings/models"
	"rowlly_listings/selection"
	"rowlly_listings/services"
	"rowlly_listings/storage"
)

type stubImages struct {
	triggered int
	broken    []models.ImageCheck
}

func (s *stubImages) Trigger()                    { s.triggered++ }
func (s *stubImages) Broken() []models.ImageCheck { return s.broken }

func newTestServer(t *testing.T) (http.Handler, *stubImages) {
	t.Helper()
	store := storage.NewMemoryStore()
	return newTestServerWith(t, selection.NewRegistry(store, "test:", 0, 0))
}

func newTestServerWith(t *testing.T, sessions *selection.Registry) (http.Handler, *stubImages) {
	t.Helper()
	listings, err := services.NewListingService(context.Background(), catalog.SampleSource)
	if err != nil {
		t.Fatalf("listing service: %v", err)
	}
	images := &stubImages{}
	srv := New(listings, services.NewHealthcheckService(listings, storage.NewMemoryStore()), sessions, images)
	return srv.Handler([]string{"http://localhost:5173"}), images
}

func do(t *testing.T, h http.Handler, method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("no session cookie issued")
	return nil
}

func resultIDs(page services.SearchPage) []string {
	out := make([]string, len(page.Results))
	for i, r := range page.Results {
		out[i] = r.ID
	}
	return out
}

func TestListPropertiesFilters(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, "GET", "/properties?type=Condo", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var page services.SearchPage
	decode(t, rec, &page)
	if !reflect.DeepEqual(resultIDs(page), []string{"3"}) {
		t.Fatalf("expected [3], got %v", resultIDs(page))
	}

	q := url.Values{}
	q.Set("search", "malibu ocean")
	q.Set("type", "all")
	q.Set("bedrooms", "4+")
	q.Set("sort", "price-high")
	rec = do(t, h, "GET", "/properties?"+q.Encode(), nil)
	page = services.SearchPage{}
	decode(t, rec, &page)
	if !reflect.DeepEqual(resultIDs(page), []string{"1"}) {
		t.Fatalf("expected [1], got %v", resultIDs(page))
	}
}

func TestListPropertiesDefaults(t *testing.T) {
	h, _ := newTestServer(t)

	var page services.SearchPage
	decode(t, do(t, h, "GET", "/properties", nil), &page)
	if !reflect.DeepEqual(resultIDs(page), []string{"4", "3", "5", "6", "1", "2"}) {
		t.Fatalf("unexpected default order %v", resultIDs(page))
	}
	if page.Filters.MaxPrice != models.DefaultMaxPrice || page.Filters.SortBy != models.SortPriceLow {
		t.Fatalf("unexpected default filters %+v", page.Filters)
	}
}

func TestListPropertiesRejectsBadValues(t *testing.T) {
	h, _ := newTestServer(t)

	for _, target := range []string{
		"/properties?sort=distance",
		"/properties?type=Castle",
		"/properties?status=Pending",
		"/properties?featured=maybe",
		"/properties?bathrooms=lots",
		"/properties?minPrice=cheap",
	} {
		if rec := do(t, h, "GET", target, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestPropertyAndAgentRoutes(t *testing.T) {
	h, _ := newTestServer(t)

	var featured []services.ListingView
	decode(t, do(t, h, "GET", "/properties/featured", nil), &featured)
	if len(featured) != 3 {
		t.Fatalf("expected 3 featured listings, got %d", len(featured))
	}

	var detail services.PropertyDetail
	decode(t, do(t, h, "GET", "/properties/3", nil), &detail)
	if detail.ID != "3" || detail.Agent == nil || detail.Agent.ID != "2" {
		t.Fatalf("unexpected detail %+v", detail)
	}

	if rec := do(t, h, "GET", "/properties/42", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var profile services.AgentProfile
	decode(t, do(t, h, "GET", "/agents/1", nil), &profile)
	if profile.Name != "Sarah Mitchell" || len(profile.Listings) == 0 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if rec := do(t, h, "GET", "/agents/9", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSuggestionsGate(t *testing.T) {
	h, _ := newTestServer(t)

	var got []string
	decode(t, do(t, h, "GET", "/suggestions?q=s", nil), &got)
	if len(got) != 0 {
		t.Fatalf("single character should not suggest, got %v", got)
	}
	decode(t, do(t, h, "GET", "/suggestions?q=sea", nil), &got)
	if !reflect.DeepEqual(got, []string{"Seattle", "Seattle, WA"}) {
		t.Fatalf("unexpected suggestions %v", got)
	}
}

func TestSelectionFlow(t *testing.T) {
	h, _ := newTestServer(t)

	cookie := sessionCookie(t, do(t, h, "GET", "/selection", nil))

	for _, id := range []string{"1", "2", "3", "4"} {
		if rec := do(t, h, "POST", "/compare/"+id, cookie); rec.Code != http.StatusOK {
			t.Fatalf("toggle compare %s: %d", id, rec.Code)
		}
	}
	var state models.SelectionState
	decode(t, do(t, h, "GET", "/selection", cookie), &state)
	if !reflect.DeepEqual(state.Compare, []string{"1", "2", "3"}) {
		t.Fatalf("expected [1 2 3], got %v", state.Compare)
	}

	var cmp services.ComparePage
	decode(t, do(t, h, "GET", "/compare", cookie), &cmp)
	if len(cmp.Properties) != 3 || cmp.Slots != 0 {
		t.Fatalf("unexpected compare page: %d properties, %d slots", len(cmp.Properties), cmp.Slots)
	}

	do(t, h, "POST", "/favorites/5", cookie)
	do(t, h, "POST", "/favorites/2", cookie)
	do(t, h, "POST", "/favorites/5", cookie)
	var fav services.FavoritesPage
	decode(t, do(t, h, "GET", "/favorites", cookie), &fav)
	if len(fav.Properties) != 1 || fav.Properties[0].ID != "2" || !fav.Properties[0].IsFavorite {
		t.Fatalf("unexpected favorites %+v", fav)
	}

	if rec := do(t, h, "POST", "/favorites/99", cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown listing, got %d", rec.Code)
	}

	state = models.SelectionState{}
	decode(t, do(t, h, "DELETE", "/compare", cookie), &state)
	if len(state.Compare) != 0 || len(state.Favorites) != 1 {
		t.Fatalf("unexpected state after clear %+v", state)
	}

	// a different client sees nothing
	var other models.SelectionState
	decode(t, do(t, h, "GET", "/selection", nil), &other)
	if len(other.Favorites) != 0 {
		t.Fatalf("selection leaked across sessions: %+v", other)
	}
}

func TestOperationsRoutes(t *testing.T) {
	h, images := newTestServer(t)

	if rec := do(t, h, "GET", "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, "POST", "/admin/images/check", nil); rec.Code != http.StatusAccepted || images.triggered != 1 {
		t.Fatalf("image check not triggered: %d", rec.Code)
	}
	if rec := do(t, h, "POST", "/admin/catalog/reload", nil); rec.Code != http.StatusOK {
		t.Fatalf("reload: %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/metrics", nil); rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestCookielessReadsDoNotCacheSessions(t *testing.T) {
	sessions := selection.NewRegistry(storage.NewMemoryStore(), "test:", 0, 0)
	h, _ := newTestServerWith(t, sessions)

	for i := 0; i < 500; i++ {
		for _, target := range []string{"/properties", "/properties/featured", "/properties/1", "/agents/1", "/selection", "/favorites", "/compare"} {
			if rec := do(t, h, "GET", target, nil); rec.Code != http.StatusOK {
				t.Fatalf("%s: %d", target, rec.Code)
			}
		}
	}
	if sessions.Len() != 0 {
		t.Fatalf("expected no cached sessions, got %d", sessions.Len())
	}

	// a fresh session still gets its selection on the first write
	rec := do(t, h, "POST", "/favorites/2", nil)
	var state models.SelectionState
	decode(t, rec, &state)
	if !reflect.DeepEqual(state.Favorites, []string{"2"}) {
		t.Fatalf("unexpected favorites %v", state.Favorites)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected 1 cached session, got %d", sessions.Len())
	}

	var again models.SelectionState
	decode(t, do(t, h, "GET", "/selection", sessionCookie(t, rec)), &again)
	if !again.IsFavorite("2") {
		t.Fatalf("returning client lost its favorite: %+v", again)
	}
}

func TestFreshSessionSelectionIsEmpty(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, "GET", "/selection", nil)
	if body := rec.Body.String(); body != "{\"favorites\":[],\"compare\":[]}\n" {
		t.Fatalf("unexpected body %q", body)
	}
}
