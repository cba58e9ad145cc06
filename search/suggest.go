package search

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rowlly_listings/models"
)

// MinQueryLength is the shortest query the quick-search box submits.
const MinQueryLength = 2

// DefaultSuggestionLimit matches the dropdown size on the search page.
const DefaultSuggestionLimit = 5

var suggestTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rowlly_suggest_total",
	Help: "The total number of processed location suggestions",
})

// Locations lists the distinct places listings are in: city, state,
// "city, state" and zip for each property, first occurrence wins.
func Locations(properties []models.Property) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, p := range properties {
		add(p.City)
		add(p.State)
		add(p.City + ", " + p.State)
		add(p.Zip)
	}
	return out
}

// SuggestLocations returns up to limit locations containing query,
// case-insensitively. An empty query suggests nothing.
func SuggestLocations(properties []models.Property, query string, limit int) []string {
	out := []string{}
	if query == "" || limit <= 0 {
		return out
	}
	suggestTotal.Inc()

	q := strings.ToLower(query)
	for _, loc := range Locations(properties) {
		if strings.Contains(strings.ToLower(loc), q) {
			out = append(out, loc)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
