package workers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"rowlly_listings/catalog"
	"rowlly_listings/models"
)

type staticCatalog struct{ c *catalog.Catalog }

func (s staticCatalog) Catalog() *catalog.Catalog { return s.c }

type memoryChecks struct {
	byURL map[string]models.ImageCheck
	saves int
}

func newMemoryChecks() *memoryChecks {
	return &memoryChecks{byURL: make(map[string]models.ImageCheck)}
}

func (m *memoryChecks) SaveImageChecks(checks []models.ImageCheck) error {
	for _, c := range checks {
		m.byURL[c.URL] = c
		m.saves++
	}
	return nil
}

func (m *memoryChecks) GetBrokenImages() ([]models.ImageCheck, error) {
	out := []models.ImageCheck{}
	for _, c := range m.byURL {
		if c.Broken() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

func (m *memoryChecks) PruneImageChecks(keep []string) (int64, error) {
	wanted := make(map[string]bool, len(keep))
	for _, url := range keep {
		wanted[url] = true
	}
	var n int64
	for url := range m.byURL {
		if !wanted[url] {
			delete(m.byURL, url)
			n++
		}
	}
	return n, nil
}

func newCDN() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
	})
	mux.HandleFunc("/nohead.jpg", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte("jpeg"))
	})
	return httptest.NewServer(mux)
}

func newTestWorker(t *testing.T, cdn string) (*ImageCheckWorker, *memoryChecks) {
	t.Helper()
	props := catalog.Sample().Properties()
	for i := range props {
		props[i].Images = []string{cdn + "/ok.jpg"}
	}
	props[0].Images = []string{cdn + "/ok.jpg", cdn + "/missing.jpg"}
	props[1].Images = []string{cdn + "/nohead.jpg"}

	c, err := catalog.New(props, catalog.Sample().Agents())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	store := newMemoryChecks()
	w := NewImageCheckWorker(staticCatalog{c}, store, nil)
	w.delay = 0
	w.SetLogger(NoOpLogger)
	return w, store
}

func TestCheckImagesAll(t *testing.T) {
	cdn := newCDN()
	defer cdn.Close()
	w, store := newTestWorker(t, cdn.URL)

	checks, err := w.CheckImages(context.Background(), "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	// shared URLs are checked once
	if len(checks) != 3 {
		t.Fatalf("expected 3 distinct photos, got %d", len(checks))
	}
	if store.saves != 3 {
		t.Fatalf("expected 3 saved checks, got %d", store.saves)
	}

	broken := w.Broken()
	if len(broken) != 1 {
		t.Fatalf("expected 1 broken photo, got %+v", broken)
	}
	if broken[0].URL != cdn.URL+"/missing.jpg" || broken[0].StatusCode != http.StatusNotFound || broken[0].PropertyID != "1" {
		t.Fatalf("unexpected broken photo %+v", broken[0])
	}
}

func TestCheckFallsBackToGet(t *testing.T) {
	cdn := newCDN()
	defer cdn.Close()
	w, _ := newTestWorker(t, cdn.URL)

	check := w.Check(context.Background(), cdn.URL+"/nohead.jpg")
	if check.StatusCode != http.StatusOK || check.Broken() {
		t.Fatalf("expected GET fallback to succeed, got %+v", check)
	}
}

func TestCheckUnreachable(t *testing.T) {
	cdn := newCDN()
	w, _ := newTestWorker(t, cdn.URL)
	url := cdn.URL + "/ok.jpg"
	cdn.Close()

	check := w.Check(context.Background(), url)
	if check.Error == "" || !check.Broken() {
		t.Fatalf("expected a request error, got %+v", check)
	}
}

func TestCheckImagesSingleProperty(t *testing.T) {
	cdn := newCDN()
	defer cdn.Close()
	w, _ := newTestWorker(t, cdn.URL)

	checks, err := w.CheckImages(context.Background(), "2")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(checks) != 1 || checks[0].PropertyID != "2" {
		t.Fatalf("unexpected checks %+v", checks)
	}

	if _, err := w.CheckImages(context.Background(), "404"); err == nil {
		t.Fatalf("expected error for unknown listing")
	}
}

func TestTriggerDoesNotBlock(t *testing.T) {
	w := NewImageCheckWorker(nil, nil, nil)
	for i := 0; i < 20; i++ {
		w.Trigger()
	}
	if len(w.triggerCh) != cap(w.triggerCh) {
		t.Fatalf("expected a full queue, got %d", len(w.triggerCh))
	}
}

func TestFullCheckDropsRemovedPhotos(t *testing.T) {
	cdn := newCDN()
	defer cdn.Close()
	w, store := newTestWorker(t, cdn.URL)

	if _, err := w.CheckImages(context.Background(), ""); err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(w.Broken()) != 1 {
		t.Fatalf("expected the missing photo to be reported")
	}

	// the catalog is reloaded without the missing photo
	props := catalog.Sample().Properties()
	for i := range props {
		props[i].Images = []string{cdn.URL + "/ok.jpg"}
	}
	c, err := catalog.New(props, catalog.Sample().Agents())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	w.listings = staticCatalog{c}

	if _, err := w.CheckImages(context.Background(), ""); err != nil {
		t.Fatalf("check: %v", err)
	}
	if broken := w.Broken(); len(broken) != 0 {
		t.Fatalf("removed photo still reported: %+v", broken)
	}
	if len(store.byURL) != 1 {
		t.Fatalf("expected only the listed photo to remain, have %d", len(store.byURL))
	}
}

func TestSinglePropertyCheckKeepsOtherResults(t *testing.T) {
	cdn := newCDN()
	defer cdn.Close()
	w, store := newTestWorker(t, cdn.URL)

	if _, err := w.CheckImages(context.Background(), ""); err != nil {
		t.Fatalf("check: %v", err)
	}
	if _, err := w.CheckImages(context.Background(), "2"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(store.byURL) != 3 {
		t.Fatalf("single listing check pruned other results: %d left", len(store.byURL))
	}
}
