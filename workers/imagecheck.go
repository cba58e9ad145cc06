package workers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"rowlly_listings/catalog"
	"rowlly_listings/logging"
	"rowlly_listings/models"
)

var (
	imageChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rowlly_image_checks_total",
		Help: "Listing photos checked, by outcome",
	}, []string{"outcome"})
	brokenImages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rowlly_broken_images",
		Help: "Listing photos failing as of the last check",
	})
)

// CatalogProvider hands out the catalog snapshot currently being served.
type CatalogProvider interface {
	Catalog() *catalog.Catalog
}

// CheckStore keeps the latest outcome per photo URL.
type CheckStore interface {
	SaveImageChecks(checks []models.ImageCheck) error
	GetBrokenImages() ([]models.ImageCheck, error)
	PruneImageChecks(keep []string) (int64, error)
}

// ImageCheckWorker checks every listing photo so broken CDN links are found
// before a visitor sees an empty gallery.
type ImageCheckWorker struct {
	listings   CatalogProvider
	store      CheckStore
	httpClient *http.Client
	delay      time.Duration
	triggerCh  chan string
	logFunc    LogFunc

	mu      sync.Mutex
	running bool
}

func (w *ImageCheckWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// NewImageCheckWorker creates a worker probing through client, or a plain
// client with a 10s timeout when nil.
func NewImageCheckWorker(listings CatalogProvider, store CheckStore, client *http.Client) *ImageCheckWorker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ImageCheckWorker{
		listings:   listings,
		store:      store,
		httpClient: client,
		delay:      200 * time.Millisecond,
		triggerCh:  make(chan string, 8),
		logFunc:    DefaultLogger,
	}
}

// Trigger queues a check of every listing.
func (w *ImageCheckWorker) Trigger() {
	w.TriggerProperty("")
}

// TriggerProperty queues a check of one listing's photos.
func (w *ImageCheckWorker) TriggerProperty(propertyID string) {
	select {
	case w.triggerCh <- propertyID:
	default:
	}
}

// Broken returns the photos that failed their most recent check.
func (w *ImageCheckWorker) Broken() []models.ImageCheck {
	checks, err := w.store.GetBrokenImages()
	if err != nil {
		logging.Errorf("Image check: load broken images: %v", err)
		return []models.ImageCheck{}
	}
	return checks
}

// Run checks on every tick of interval (when positive) and on every trigger.
func (w *ImageCheckWorker) Run(ctx context.Context, interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			logging.Infof("Image check worker stopping")
			return
		case <-tick:
			w.runLogged(ctx, "")
		case id := <-w.triggerCh:
			logging.Infof("Image check worker triggered manually")
			w.runLogged(ctx, id)
		}
	}
}

func (w *ImageCheckWorker) runLogged(ctx context.Context, propertyID string) {
	if _, err := w.CheckImages(ctx, propertyID); err != nil {
		logging.Errorf("Image check: %v", err)
	}
}

// CheckImages checks the photos of one listing, or of all listings when
// propertyID is empty, and records the outcomes.
func (w *ImageCheckWorker) CheckImages(ctx context.Context, propertyID string) ([]models.ImageCheck, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil, fmt.Errorf("a check is already running")
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	c := w.listings.Catalog()
	var properties []models.Property
	if propertyID == "" {
		properties = c.Properties()
	} else {
		p, ok := c.Property(propertyID)
		if !ok {
			return nil, fmt.Errorf("unknown property %q", propertyID)
		}
		properties = []models.Property{p}
	}

	var checks []models.ImageCheck
	seen := make(map[string]struct{})
	for _, p := range properties {
		for _, url := range p.Images {
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}

			if len(checks) > 0 && w.delay > 0 {
				select {
				case <-ctx.Done():
					return checks, ctx.Err()
				case <-time.After(w.delay):
				}
			}
			check := w.Check(ctx, url)
			check.PropertyID = p.ID
			checks = append(checks, check)
		}
	}

	if err := w.store.SaveImageChecks(checks); err != nil {
		return checks, fmt.Errorf("save checks: %w", err)
	}
	if propertyID == "" {
		// a full run saw every photo in the catalog; older rows are for photos
		// that have since been removed
		keep := make([]string, 0, len(seen))
		for url := range seen {
			keep = append(keep, url)
		}
		if n, err := w.store.PruneImageChecks(keep); err != nil {
			logging.Errorf("Image check: prune old results: %v", err)
		} else if n > 0 {
			logging.Infof("Image check: dropped %d results for photos no longer listed", n)
		}
	}

	broken := 0
	for _, check := range checks {
		if check.Broken() {
			broken++
			imageChecks.WithLabelValues("broken").Inc()
			logging.Warnf("Image check: listing %s photo %s broken (status %d %s)", check.PropertyID, check.URL, check.StatusCode, check.Error)
		} else {
			imageChecks.WithLabelValues("ok").Inc()
		}
	}
	if propertyID == "" {
		brokenImages.Set(float64(broken))
	}

	msg := fmt.Sprintf("Checked %d photos, %d broken", len(checks), broken)
	level := models.LogLevelInfo
	if broken > 0 {
		level = models.LogLevelWarn
	}
	w.logFunc(level, "imagecheck", msg)
	return checks, nil
}

// Check requests one photo. HEAD is tried first; servers that refuse it get a
// GET whose body is discarded.
func (w *ImageCheckWorker) Check(ctx context.Context, url string) models.ImageCheck {
	check := models.ImageCheck{URL: url, CheckedAt: time.Now().UTC()}

	status, err := w.request(ctx, http.MethodHead, url)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = w.request(ctx, http.MethodGet, url)
	}
	if err != nil {
		check.Error = err.Error()
		return check
	}
	check.StatusCode = status
	return check
}

func (w *ImageCheckWorker) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "image/*,*/*")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
