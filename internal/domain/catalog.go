package domain

// SortKey selects the field the catalog is ordered by
type SortKey string

const (
	SortPrice    SortKey = "price"
	SortMileage  SortKey = "mileage"
	SortYear     SortKey = "year"
	SortAdNumber SortKey = "ad_number"
)

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IntRange is an inclusive range; a nil bound is unbounded.
type IntRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

func (r IntRange) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

func (r IntRange) Contains(v int) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// FloatRange is an inclusive range; a nil bound is unbounded.
type FloatRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r FloatRange) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

func (r FloatRange) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// FilterSelection is the set of constraints a caller applies to the catalog.
// The zero value matches every vehicle and uses the default sort.
type FilterSelection struct {
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`

	Price        FloatRange `json:"price"`
	Year         IntRange   `json:"year"`
	MaxMileage   *int       `json:"maxMileage,omitempty"`
	Power        IntRange   `json:"power"`
	Displacement IntRange   `json:"displacement"`

	FuelTypes     []string `json:"fuelTypes,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Transmissions []string `json:"transmissions,omitempty"`
	Doors         []int    `json:"doors,omitempty"`
	Emissions     []string `json:"emissions,omitempty"`
	Colors        []string `json:"colors,omitempty"`

	Sort      SortKey       `json:"sort"`
	Direction SortDirection `json:"direction"`
}

// FacetValue is one filter option with the number of matching vehicles.
type FacetValue struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// FacetCounts holds option counts for every filterable dimension.
type FacetCounts struct {
	Makes         []FacetValue `json:"makes" yaml:"makes"`
	Models        []FacetValue `json:"models" yaml:"models"`
	FuelTypes     []FacetValue `json:"fuelTypes" yaml:"fuel_types"`
	Categories    []FacetValue `json:"categories" yaml:"categories"`
	Transmissions []FacetValue `json:"transmissions" yaml:"transmissions"`
	Doors         []FacetValue `json:"doors" yaml:"doors"`
	Emissions     []FacetValue `json:"emissions" yaml:"emissions"`
	Colors        []FacetValue `json:"colors" yaml:"colors"`
}

// CatalogPage is what the presentation layer renders for one query.
type CatalogPage struct {
	Vehicles   []Vehicle   `json:"vehicles" yaml:"vehicles"`
	Facets     FacetCounts `json:"facets" yaml:"facets"`
	TotalCount int         `json:"totalCount" yaml:"total_count"`
	Page       int         `json:"page" yaml:"page"`
	PageSize   int         `json:"pageSize" yaml:"page_size"`
}
