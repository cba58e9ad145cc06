package server

import (
	"fmt"
	"net/url"

	"github.com/gorilla/schema"
	"rowlly_listings/models"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// filterQuery is the search page's query string. Absent keys take the page's
// initial filter values.
type filterQuery struct {
	Search    string `schema:"search"`
	Type      string `schema:"type,default:all"`
	MinPrice  int    `schema:"minPrice,default:0"`
	MaxPrice  int    `schema:"maxPrice,default:5000000"`
	Bedrooms  string `schema:"bedrooms,default:any"`
	Bathrooms string `schema:"bathrooms,default:any"`
	MinSqft   int    `schema:"minSqft,default:0"`
	MaxSqft   int    `schema:"maxSqft,default:10000"`
	Status    string `schema:"status,default:all"`
	Featured  string `schema:"featured,default:all"`
	Sort      string `schema:"sort,default:price-low"`
}

func decodeFilterSpec(values url.Values) (models.FilterSpec, error) {
	var q filterQuery
	if err := decoder.Decode(&q, values); err != nil {
		return models.FilterSpec{}, err
	}
	return q.spec()
}

func (q filterQuery) spec() (models.FilterSpec, error) {
	spec := models.FilterSpec{
		Search:   q.Search,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		MinSqft:  q.MinSqft,
		MaxSqft:  q.MaxSqft,
	}

	var err error
	if q.Type != "" && q.Type != "all" {
		if spec.PropertyType, err = models.ParsePropertyType(q.Type); err != nil {
			return spec, err
		}
	}
	if q.Status != "" && q.Status != "all" {
		if spec.Status, err = models.ParseListingStatus(q.Status); err != nil {
			return spec, err
		}
	}
	if spec.Bedrooms, err = models.ParseMinBedrooms(q.Bedrooms); err != nil {
		return spec, fmt.Errorf("bedrooms: %w", err)
	}
	if spec.Bathrooms, err = models.ParseMinCount(q.Bathrooms); err != nil {
		return spec, fmt.Errorf("bathrooms: %w", err)
	}
	if spec.Featured, err = models.ParseFeaturedFilter(q.Featured); err != nil {
		return spec, err
	}
	if spec.SortBy, err = models.ParseSortKey(q.Sort); err != nil {
		return spec, err
	}
	return spec, nil
}
