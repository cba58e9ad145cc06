package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default slider bounds used by the search page.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 5000000
	DefaultMinSqft  = 0
	DefaultMaxSqft  = 10000
)

// SortKey selects the ordering applied after filtering
type SortKey string

const (
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortSqftLarge SortKey = "sqft-large"
	SortSqftSmall SortKey = "sqft-small"
	SortBedrooms  SortKey = "bedrooms"
	SortNewest    SortKey = "newest" // descending id, there is no creation timestamp
	SortFeatured  SortKey = "featured"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortPriceLow, SortPriceHigh, SortSqftLarge, SortSqftSmall, SortBedrooms, SortNewest, SortFeatured:
		return true
	}
	return false
}

func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortPriceLow, nil
	}
	k := SortKey(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// FeaturedFilter restricts results by the featured flag
type FeaturedFilter int

const (
	FeaturedAll FeaturedFilter = iota
	FeaturedOnly
	FeaturedRegular
)

func (f FeaturedFilter) String() string {
	switch f {
	case FeaturedOnly:
		return "featured"
	case FeaturedRegular:
		return "regular"
	default:
		return "all"
	}
}

func ParseFeaturedFilter(s string) (FeaturedFilter, error) {
	switch s {
	case "", "all":
		return FeaturedAll, nil
	case "featured":
		return FeaturedOnly, nil
	case "regular":
		return FeaturedRegular, nil
	}
	return FeaturedAll, fmt.Errorf("unknown featured filter %q", s)
}

func (f FeaturedFilter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *FeaturedFilter) UnmarshalText(b []byte) error {
	v, err := ParseFeaturedFilter(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// MinCount is either "any" or an inclusive lower bound. The zero value is "any".
type MinCount struct {
	set bool
	min float64
}

func AnyCount() MinCount { return MinCount{} }

func AtLeast(n float64) MinCount { return MinCount{set: true, min: n} }

func (c MinCount) IsAny() bool { return !c.set }

func (c MinCount) Min() float64 { return c.min }

// Allows reports whether v satisfies the bound.
func (c MinCount) Allows(v float64) bool {
	return !c.set || v >= c.min
}

func (c MinCount) String() string {
	if !c.set {
		return "any"
	}
	return strconv.FormatFloat(c.min, 'f', -1, 64)
}

// ParseMinCount accepts "any", "" or a number with an optional trailing "+".
// Fractions are kept (bathrooms allow half baths).
func ParseMinCount(s string) (MinCount, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "any" {
		return AnyCount(), nil
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, "+"), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return AnyCount(), fmt.Errorf("invalid minimum %q", s)
	}
	return AtLeast(n), nil
}

// ParseMinBedrooms behaves like ParseMinCount but keeps only the integer part.
func ParseMinBedrooms(s string) (MinCount, error) {
	c, err := ParseMinCount(s)
	if err != nil || c.IsAny() {
		return c, err
	}
	return AtLeast(math.Trunc(c.min)), nil
}

func (c MinCount) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *MinCount) UnmarshalText(b []byte) error {
	v, err := ParseMinCount(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// FilterSpec describes one search request. An empty PropertyType or Status
// matches every record. Callers are expected to keep Min <= Max; an inverted
// range simply matches nothing.
type FilterSpec struct {
	Search       string         `json:"search"`
	PropertyType PropertyType   `json:"propertyType,omitempty"`
	MinPrice     int            `json:"minPrice"`
	MaxPrice     int            `json:"maxPrice"`
	Bedrooms     MinCount       `json:"bedrooms"`
	Bathrooms    MinCount       `json:"bathrooms"`
	MinSqft      int            `json:"minSqft"`
	MaxSqft      int            `json:"maxSqft"`
	Status       ListingStatus  `json:"status,omitempty"`
	Featured     FeaturedFilter `json:"featured"`
	SortBy       SortKey        `json:"sortBy"`
}

// DefaultFilterSpec returns the search page's initial filters.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		MinPrice: DefaultMinPrice,
		MaxPrice: DefaultMaxPrice,
		MinSqft:  DefaultMinSqft,
		MaxSqft:  DefaultMaxSqft,
		SortBy:   SortPriceLow,
	}
}
