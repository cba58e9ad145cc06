package models

import "fmt"

// PropertyType is the kind of home a listing describes
type PropertyType string

const (
	PropertyTypeSingleFamily PropertyType = "Single Family Home"
	PropertyTypeCondo        PropertyType = "Condo"
	PropertyTypeLoft         PropertyType = "Loft"
	PropertyTypeTownhouse    PropertyType = "Townhouse"
)

var propertyTypes = []PropertyType{
	PropertyTypeSingleFamily,
	PropertyTypeCondo,
	PropertyTypeLoft,
	PropertyTypeTownhouse,
}

// PropertyTypes returns every known property type in display order.
func PropertyTypes() []PropertyType {
	out := make([]PropertyType, len(propertyTypes))
	copy(out, propertyTypes)
	return out
}

func (t PropertyType) Valid() bool {
	for _, known := range propertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParsePropertyType(s string) (PropertyType, error) {
	t := PropertyType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown property type %q", s)
	}
	return t, nil
}

// ListingStatus is the market status of a listing
type ListingStatus string

const (
	ListingStatusForSale ListingStatus = "For Sale"
	ListingStatusForRent ListingStatus = "For Rent"
	ListingStatusSold    ListingStatus = "Sold"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusForSale, ListingStatusForRent, ListingStatusSold:
		return true
	}
	return false
}

func ParseListingStatus(s string) (ListingStatus, error) {
	st := ListingStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown listing status %q", s)
	}
	return st, nil
}

// Property is one listing in the catalog. Records are immutable once the
// catalog has been built.
type Property struct {
	ID           string        `json:"id" yaml:"id" db:"id"`
	Title        string        `json:"title" yaml:"title" db:"title"`
	Description  string        `json:"description" yaml:"description" db:"description"`
	Address      string        `json:"address" yaml:"address" db:"address"`
	City         string        `json:"city" yaml:"city" db:"city"`
	State        string        `json:"state" yaml:"state" db:"state"`
	Zip          string        `json:"zip" yaml:"zip" db:"zip"`
	PropertyType PropertyType  `json:"propertyType" yaml:"propertyType" db:"property_type"`
	Status       ListingStatus `json:"status" yaml:"status" db:"status"`
	Price        int           `json:"price" yaml:"price" db:"price"`
	Bedrooms     int           `json:"bedrooms" yaml:"bedrooms" db:"bedrooms"`
	Bathrooms    float64       `json:"bathrooms" yaml:"bathrooms" db:"bathrooms"`
	SqFt         int           `json:"sqft" yaml:"sqft" db:"sqft"`
	LotSize      string        `json:"lotSize,omitempty" yaml:"lotSize,omitempty" db:"lot_size"`
	YearBuilt    int           `json:"yearBuilt,omitempty" yaml:"yearBuilt,omitempty" db:"year_built"` // 0 when unknown
	Images       []string      `json:"images" yaml:"images" db:"images"`
	Features     []string      `json:"features" yaml:"features" db:"features"`
	AgentID      string        `json:"agentId" yaml:"agentId" db:"agent_id"`
	Neighborhood Neighborhood  `json:"neighborhood" yaml:"neighborhood" db:"neighborhood"`
	Financial    Financial     `json:"financial" yaml:"financial" db:"financial"`
	Featured     bool          `json:"featured" yaml:"featured,omitempty" db:"featured"`
}

type Neighborhood struct {
	Rating       float64  `json:"rating" yaml:"rating"` // 0-5
	Schools      []School `json:"schools" yaml:"schools"`
	WalkScore    int      `json:"walkScore" yaml:"walkScore"`       // 0-100
	TransitScore int      `json:"transitScore" yaml:"transitScore"` // 0-100
}

type School struct {
	Name   string `json:"name" yaml:"name"`
	Rating int    `json:"rating" yaml:"rating"` // 0-10
}

type Financial struct {
	TaxHistory   []TaxRecord `json:"taxHistory" yaml:"taxHistory"`
	HOA          int         `json:"hoa" yaml:"hoa"` // monthly
	PricePerSqft int         `json:"pricePerSqft" yaml:"pricePerSqft"`
}

type TaxRecord struct {
	Year   int `json:"year" yaml:"year"`
	Amount int `json:"amount" yaml:"amount"`
}
