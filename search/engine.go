package search

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rowlly_listings/models"
)

var (
	searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rowlly_searches_total",
		Help: "The total number of processed listing searches",
	})
	emptyResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rowlly_searches_empty_total",
		Help: "Searches that matched no listing",
	})
)

// Search filters properties by every predicate in spec and orders the result
// by spec.SortBy. The input slice is never modified and the result is never nil.
func Search(properties []models.Property, spec models.FilterSpec) []models.Property {
	searchesTotal.Inc()

	terms := Terms(spec.Search)
	out := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if matches(p, spec, terms) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		emptyResultsTotal.Inc()
	}

	Sort(out, spec.SortBy)
	return out
}

// Matches reports whether p passes every filter in spec.
func Matches(p models.Property, spec models.FilterSpec) bool {
	return matches(p, spec, Terms(spec.Search))
}

func matches(p models.Property, spec models.FilterSpec, terms []string) bool {
	if len(terms) > 0 {
		text := SearchableText(p)
		for _, term := range terms {
			if !strings.Contains(text, term) {
				return false
			}
		}
	}
	if spec.PropertyType != "" && p.PropertyType != spec.PropertyType {
		return false
	}
	if spec.Status != "" && p.Status != spec.Status {
		return false
	}
	switch spec.Featured {
	case models.FeaturedOnly:
		if !p.Featured {
			return false
		}
	case models.FeaturedRegular:
		if p.Featured {
			return false
		}
	}
	if p.Price < spec.MinPrice || p.Price > spec.MaxPrice {
		return false
	}
	if !spec.Bedrooms.Allows(float64(p.Bedrooms)) || !spec.Bathrooms.Allows(p.Bathrooms) {
		return false
	}
	return p.SqFt >= spec.MinSqft && p.SqFt <= spec.MaxSqft
}

// Terms lower-cases a free-text query and splits it on whitespace.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// SearchableText is the lower-cased text a free-text query is matched against.
func SearchableText(p models.Property) string {
	parts := make([]string, 0, 7+len(p.Features))
	parts = append(parts, p.Title, p.Description, p.Address, p.City, p.State, p.Zip, string(p.PropertyType))
	parts = append(parts, p.Features...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Sort orders properties in place. Ties keep their relative order and an
// unknown key leaves the slice untouched.
func Sort(properties []models.Property, key models.SortKey) {
	less := comparator(properties, key)
	if less == nil {
		return
	}
	sort.SliceStable(properties, less)
}

func comparator(p []models.Property, key models.SortKey) func(i, j int) bool {
	switch key {
	case models.SortPriceLow:
		return func(i, j int) bool { return p[i].Price < p[j].Price }
	case models.SortPriceHigh:
		return func(i, j int) bool { return p[i].Price > p[j].Price }
	case models.SortSqftLarge:
		return func(i, j int) bool { return p[i].SqFt > p[j].SqFt }
	case models.SortSqftSmall:
		return func(i, j int) bool { return p[i].SqFt < p[j].SqFt }
	case models.SortBedrooms:
		return func(i, j int) bool { return p[i].Bedrooms > p[j].Bedrooms }
	case models.SortNewest:
		return func(i, j int) bool { return p[i].ID > p[j].ID }
	case models.SortFeatured:
		return func(i, j int) bool { return p[i].Featured && !p[j].Featured }
	}
	return nil
}
