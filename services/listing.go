package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"rowlly_listings/catalog"
	"rowlly_listings/logging"
	"rowlly_listings/models"
	"rowlly_listings/search"
	"rowlly_listings/selection"
)

// ErrNotFound is returned for unknown listing or agent ids.
var ErrNotFound = errors.New("not found")

const (
	agentProfileListings = 3
	compareFeatureCount  = 6
	minCompareAll        = 2
)

var (
	catalogProperties = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rowlly_catalog_properties",
		Help: "Listings in the active catalog snapshot",
	})
	catalogReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rowlly_catalog_reloads_total",
		Help: "Catalog reload attempts by outcome",
	}, []string{"outcome"})
)

// ListingService answers every read the site makes against the active
// catalog snapshot and decorates results with the caller's selections.
type ListingService struct {
	source   catalog.Source
	current  atomic.Pointer[catalog.Catalog]
	loadedAt atomic.Int64
}

// NewListingService loads the first snapshot from source. Startup fails if
// that load fails; later reload failures keep the previous snapshot.
func NewListingService(ctx context.Context, source catalog.Source) (*ListingService, error) {
	s := &ListingService{source: source}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload builds a new snapshot from the source and swaps it in.
func (s *ListingService) Reload(ctx context.Context) error {
	c, err := s.source.Load(ctx)
	if err != nil {
		catalogReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("load catalog: %w", err)
	}
	s.current.Store(c)
	s.loadedAt.Store(time.Now().UnixNano())
	catalogReloads.WithLabelValues("ok").Inc()
	catalogProperties.Set(float64(c.Len()))
	logging.Infof("catalog: loaded %d listings, %d agents", c.Len(), len(c.Agents()))
	return nil
}

func (s *ListingService) Catalog() *catalog.Catalog {
	return s.current.Load()
}

func (s *ListingService) LoadedAt() time.Time {
	return time.Unix(0, s.loadedAt.Load())
}

// ListingView is a listing as shown to one client.
type ListingView struct {
	models.Property
	IsFavorite      bool `json:"isFavorite"`
	InCompare       bool `json:"inCompare"`
	CanAddToCompare bool `json:"canAddToCompare"`
}

type SearchPage struct {
	Filters     models.FilterSpec `json:"filters"`
	Total       int               `json:"total"`
	Results     []ListingView     `json:"results"`
	Suggestions []string          `json:"suggestions"`
}

type PropertyDetail struct {
	ListingView
	Agent                   *models.Agent `json:"agent,omitempty"`
	EstimatedMonthlyPayment int           `json:"estimatedMonthlyPayment"`
}

type AgentProfile struct {
	models.Agent
	Listings []ListingView `json:"listings"`
}

type FavoritesPage struct {
	Properties []ListingView `json:"properties"`
	// CompareCandidates is what "compare all" sends to the compare view; it
	// is empty with fewer than two favorites
	CompareCandidates []string `json:"compareCandidates"`
}

type CompareEntry struct {
	ListingView
	TopFeatures  []string `json:"topFeatures"`
	MoreFeatures int      `json:"moreFeatures"`
}

type ComparePage struct {
	Properties []CompareEntry `json:"properties"`
	Slots      int            `json:"slots"`
}

func decorate(props []models.Property, sel models.SelectionState) []ListingView {
	out := make([]ListingView, len(props))
	for i, p := range props {
		out[i] = view(p, sel)
	}
	return out
}

func view(p models.Property, sel models.SelectionState) ListingView {
	return ListingView{
		Property:        p,
		IsFavorite:      sel.IsFavorite(p.ID),
		InCompare:       sel.InCompare(p.ID),
		CanAddToCompare: selection.CanAddToCompare(sel, p.ID),
	}
}

func (s *ListingService) Search(spec models.FilterSpec, sel models.SelectionState) SearchPage {
	props := s.Catalog().Properties()
	results := search.Search(props, spec)
	return SearchPage{
		Filters:     spec,
		Total:       len(results),
		Results:     decorate(results, sel),
		Suggestions: search.SuggestLocations(props, spec.Search, search.DefaultSuggestionLimit),
	}
}

func (s *ListingService) Suggest(query string) []string {
	return search.SuggestLocations(s.Catalog().Properties(), query, search.DefaultSuggestionLimit)
}

func (s *ListingService) Featured(sel models.SelectionState) []ListingView {
	return decorate(s.Catalog().Featured(), sel)
}

func (s *ListingService) Detail(id string, sel models.SelectionState) (*PropertyDetail, error) {
	c := s.Catalog()
	p, ok := c.Property(id)
	if !ok {
		return nil, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	detail := &PropertyDetail{
		ListingView:             view(p, sel),
		EstimatedMonthlyPayment: EstimatedMonthlyPayment(p.Price),
	}
	if a, ok := c.Agent(p.AgentID); ok {
		detail.Agent = &a
	}
	return detail, nil
}

// EstimatedMonthlyPayment is the rough figure shown next to the price:
// five percent of the price per year, spread over twelve months.
func EstimatedMonthlyPayment(price int) int {
	return int(math.Round(float64(price) * 0.05 / 12))
}

func (s *ListingService) Agents() []models.Agent {
	return s.Catalog().Agents()
}

func (s *ListingService) AgentProfile(id string, sel models.SelectionState) (*AgentProfile, error) {
	c := s.Catalog()
	a, ok := c.Agent(id)
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, ErrNotFound)
	}
	return &AgentProfile{
		Agent:    a,
		Listings: decorate(c.AgentListings(id, agentProfileListings), sel),
	}, nil
}

func (s *ListingService) Favorites(sel models.SelectionState) FavoritesPage {
	props := s.Catalog().Resolve(sel.Favorites)
	candidates := []string{}
	if len(sel.Favorites) >= minCompareAll {
		candidates = sel.Favorites
		if len(candidates) > models.MaxCompare {
			candidates = candidates[:models.MaxCompare]
		}
	}
	return FavoritesPage{
		Properties:        decorate(props, sel),
		CompareCandidates: append([]string{}, candidates...),
	}
}

func (s *ListingService) Compare(sel models.SelectionState) ComparePage {
	props := s.Catalog().Resolve(sel.Compare)
	page := ComparePage{
		Properties: make([]CompareEntry, len(props)),
		Slots:      models.MaxCompare - len(sel.Compare),
	}
	for i, p := range props {
		top := p.Features
		if len(top) > compareFeatureCount {
			top = top[:compareFeatureCount]
		}
		page.Properties[i] = CompareEntry{
			ListingView:  view(p, sel),
			TopFeatures:  append([]string{}, top...),
			MoreFeatures: len(p.Features) - len(top),
		}
	}
	return page
}
