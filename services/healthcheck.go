package services

import (
	"context"
	"time"

	"rowlly_listings/selection"
)

// HealthcheckService reports whether the API can serve reads and persist
// selections.
type HealthcheckService struct {
	listing *ListingService
	store   selection.Store
}

func NewHealthcheckService(listing *ListingService, store selection.Store) *HealthcheckService {
	return &HealthcheckService{
		listing: listing,
		store:   store,
	}
}

type Health struct {
	Status          string    `json:"status"`
	Listings        int       `json:"listings"`
	CatalogLoadedAt time.Time `json:"catalogLoadedAt"`
	StoreError      string    `json:"storeError,omitempty"`
}

const healthcheckKey = "healthcheck"

// Check round-trips a marker key through the selection store.
func (s *HealthcheckService) Check(ctx context.Context) Health {
	h := Health{
		Status:          "ok",
		Listings:        s.listing.Catalog().Len(),
		CatalogLoadedAt: s.listing.LoadedAt(),
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.store.Set(ctx, healthcheckKey, now); err != nil {
		h.Status = "degraded"
		h.StoreError = err.Error()
		return h
	}
	if _, _, err := s.store.Get(ctx, healthcheckKey); err != nil {
		h.Status = "degraded"
		h.StoreError = err.Error()
	}
	return h
}
