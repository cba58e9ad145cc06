package search

import (
	"reflect"
	"strings"
	"testing"

	"rowlly_listings/catalog"
	"rowlly_listings/models"
)

func sampleProperties(t *testing.T) []models.Property {
	t.Helper()
	return catalog.Sample().Properties()
}

func ids(props []models.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestSearchCondoScenario(t *testing.T) {
	spec := models.DefaultFilterSpec()
	spec.PropertyType = models.PropertyTypeCondo

	got := ids(Search(sampleProperties(t), spec))
	if !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("expected [3], got %v", got)
	}
}

func TestSearchDefaultsSortByPrice(t *testing.T) {
	got := ids(Search(sampleProperties(t), models.DefaultFilterSpec()))
	want := []string{"4", "3", "5", "6", "1", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSearchFreeTextRequiresEveryTerm(t *testing.T) {
	props := sampleProperties(t)

	spec := models.DefaultFilterSpec()
	spec.Search = "  Malibu   OCEAN "
	if got := ids(Search(props, spec)); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("expected [1], got %v", got)
	}

	spec.Search = "malibu miami"
	if got := Search(props, spec); len(got) != 0 {
		t.Fatalf("expected no match for terms in different listings, got %v", ids(got))
	}

	// single characters are not gated by the engine
	spec.Search = "x"
	for _, p := range Search(props, spec) {
		if !strings.Contains(SearchableText(p), "x") {
			t.Fatalf("listing %s does not contain the term", p.ID)
		}
	}
}

func TestSearchPriceBoundsInclusive(t *testing.T) {
	spec := models.DefaultFilterSpec()
	spec.MinPrice = 875000
	spec.MaxPrice = 1250000

	got := ids(Search(sampleProperties(t), spec))
	if !reflect.DeepEqual(got, []string{"3", "5"}) {
		t.Fatalf("expected [3 5], got %v", got)
	}
}

func TestSearchInvertedRangeIsEmpty(t *testing.T) {
	spec := models.DefaultFilterSpec()
	spec.MinSqft = 5000
	spec.MaxSqft = 1000

	got := Search(sampleProperties(t), spec)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestSearchEmptyCatalog(t *testing.T) {
	got := Search(nil, models.DefaultFilterSpec())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}

func TestSearchDoesNotModifyInput(t *testing.T) {
	props := sampleProperties(t)
	before := ids(props)

	spec := models.DefaultFilterSpec()
	spec.SortBy = models.SortPriceHigh
	Search(props, spec)

	if !reflect.DeepEqual(ids(props), before) {
		t.Fatalf("input reordered: %v", ids(props))
	}
}

func TestSearchMinimums(t *testing.T) {
	spec := models.DefaultFilterSpec()
	spec.Bedrooms = models.AtLeast(4)
	spec.Bathrooms = models.AtLeast(3.5)
	spec.SortBy = models.SortNewest

	got := ids(Search(sampleProperties(t), spec))
	if !reflect.DeepEqual(got, []string{"6", "2", "1"}) {
		t.Fatalf("expected [6 2 1], got %v", got)
	}
}

func TestSearchFeaturedFilter(t *testing.T) {
	props := sampleProperties(t)
	spec := models.DefaultFilterSpec()
	spec.SortBy = models.SortNewest

	spec.Featured = models.FeaturedOnly
	if got := ids(Search(props, spec)); !reflect.DeepEqual(got, []string{"3", "2", "1"}) {
		t.Fatalf("featured: got %v", got)
	}
	spec.Featured = models.FeaturedRegular
	if got := ids(Search(props, spec)); !reflect.DeepEqual(got, []string{"6", "5", "4"}) {
		t.Fatalf("regular: got %v", got)
	}
}

func TestSortKeysAreMonotonic(t *testing.T) {
	props := sampleProperties(t)

	checks := map[models.SortKey]func(a, b models.Property) bool{
		models.SortPriceLow:  func(a, b models.Property) bool { return a.Price <= b.Price },
		models.SortPriceHigh: func(a, b models.Property) bool { return a.Price >= b.Price },
		models.SortSqftLarge: func(a, b models.Property) bool { return a.SqFt >= b.SqFt },
		models.SortSqftSmall: func(a, b models.Property) bool { return a.SqFt <= b.SqFt },
		models.SortBedrooms:  func(a, b models.Property) bool { return a.Bedrooms >= b.Bedrooms },
		models.SortNewest:    func(a, b models.Property) bool { return a.ID >= b.ID },
		models.SortFeatured:  func(a, b models.Property) bool { return a.Featured || !b.Featured },
	}

	for key, ordered := range checks {
		spec := models.DefaultFilterSpec()
		spec.SortBy = key
		got := Search(props, spec)
		if len(got) != len(props) {
			t.Fatalf("%s: expected %d results, got %d", key, len(props), len(got))
		}
		for i := 1; i < len(got); i++ {
			if !ordered(got[i-1], got[i]) {
				t.Errorf("%s: %s before %s", key, got[i-1].ID, got[i].ID)
			}
		}

		again := append([]models.Property(nil), got...)
		Sort(again, key)
		if !reflect.DeepEqual(ids(again), ids(got)) {
			t.Errorf("%s: sorting twice changed order %v -> %v", key, ids(got), ids(again))
		}
	}
}

func TestSortIsStable(t *testing.T) {
	props := sampleProperties(t)

	// 1 and 6 both have five bedrooms, 2 and 4 both have four
	Sort(props, models.SortBedrooms)
	want := []string{"1", "6", "2", "4", "5", "3"}
	if !reflect.DeepEqual(ids(props), want) {
		t.Fatalf("expected %v, got %v", want, ids(props))
	}
}

func TestUnknownSortKeyKeepsOrder(t *testing.T) {
	spec := models.DefaultFilterSpec()
	spec.SortBy = "distance"

	got := ids(Search(sampleProperties(t), spec))
	want := []string{"1", "2", "3", "4", "5", "6"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected catalog order %v, got %v", want, got)
	}
}

func TestRelaxingAFilterNeverShrinksResults(t *testing.T) {
	props := sampleProperties(t)

	strict := models.DefaultFilterSpec()
	strict.Search = "home"
	strict.PropertyType = models.PropertyTypeSingleFamily
	strict.Status = models.ListingStatusForSale
	strict.Featured = models.FeaturedRegular
	strict.MinPrice = 600000
	strict.MaxPrice = 2000000
	strict.Bedrooms = models.AtLeast(4)
	strict.Bathrooms = models.AtLeast(2.5)
	strict.MinSqft = 2000
	strict.MaxSqft = 5000

	relaxers := map[string]func(*models.FilterSpec){
		"search":   func(s *models.FilterSpec) { s.Search = "" },
		"type":     func(s *models.FilterSpec) { s.PropertyType = "" },
		"status":   func(s *models.FilterSpec) { s.Status = "" },
		"featured": func(s *models.FilterSpec) { s.Featured = models.FeaturedAll },
		"price": func(s *models.FilterSpec) {
			s.MinPrice, s.MaxPrice = models.DefaultMinPrice, models.DefaultMaxPrice
		},
		"bedrooms":  func(s *models.FilterSpec) { s.Bedrooms = models.AnyCount() },
		"bathrooms": func(s *models.FilterSpec) { s.Bathrooms = models.AnyCount() },
		"sqft": func(s *models.FilterSpec) {
			s.MinSqft, s.MaxSqft = models.DefaultMinSqft, models.DefaultMaxSqft
		},
	}

	base := Search(props, strict)
	if !reflect.DeepEqual(ids(base), []string{"4", "6"}) {
		t.Fatalf("expected [4 6], got %v", ids(base))
	}
	for _, p := range base {
		if !Matches(p, strict) {
			t.Fatalf("result %s does not satisfy the filters", p.ID)
		}
	}

	for name, relax := range relaxers {
		spec := strict
		relax(&spec)
		wider := make(map[string]bool)
		for _, p := range Search(props, spec) {
			wider[p.ID] = true
		}
		for _, p := range base {
			if !wider[p.ID] {
				t.Errorf("relaxing %s dropped listing %s", name, p.ID)
			}
		}
	}
}

func TestSuggestLocations(t *testing.T) {
	props := sampleProperties(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"SEA", []string{"Seattle", "Seattle, WA"}},
		{"a", []string{"Malibu", "CA", "Malibu, CA", "Miami Beach", "Miami Beach, FL"}},
		{"9", []string{"90265", "33139", "98101", "97201"}},
		{"", []string{}},
		{"nowhere", []string{}},
	}
	for _, tt := range tests {
		got := SuggestLocations(props, tt.query, DefaultSuggestionLimit)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SuggestLocations(%q) = %v; want %v", tt.query, got, tt.want)
		}
	}
}
