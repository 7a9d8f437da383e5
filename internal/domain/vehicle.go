package domain

import "time"

// Vehicle is one listing from the dealer feed. Values are never mutated
// after parsing; a new fetch produces a new collection.
type Vehicle struct {
	AdNumber int `json:"adNumber" yaml:"ad_number"`

	VehicleType      string `json:"vehicleType" yaml:"vehicle_type"`
	Title            string `json:"title" yaml:"title"`
	Make             string `json:"make" yaml:"make"`
	Model            string `json:"model" yaml:"model"`
	Version          string `json:"version" yaml:"version"`
	VehicleClass     string `json:"vehicleClass" yaml:"vehicle_class"`
	VehicleCategory  string `json:"vehicleCategory" yaml:"vehicle_category"`
	Color            string `json:"color" yaml:"color"`
	ColorType        string `json:"colorType" yaml:"color_type"`
	FuelType         string `json:"fuelType" yaml:"fuel_type"`
	Gearbox          string `json:"gearbox" yaml:"gearbox"`
	TransmissionType string `json:"transmissionType" yaml:"transmission_type"`
	EmissionsClass   string `json:"emissionsClass" yaml:"emissions_class"`
	RegistrationDate string `json:"registrationDate" yaml:"registration_date"`
	Description      string `json:"description" yaml:"description"`

	Price    float64 `json:"price" yaml:"price"`
	PowerKW  int     `json:"powerKw" yaml:"power_kw"`
	PowerCV  int     `json:"powerCv" yaml:"power_cv"`
	Mileage  string  `json:"mileage" yaml:"mileage"`
	Warranty int     `json:"warranty" yaml:"warranty"`

	// Optional: nil when the feed omits the tag.
	NumSeats      *int `json:"numSeats,omitempty" yaml:"num_seats,omitempty"`
	OwnersCount   *int `json:"ownersCount,omitempty" yaml:"owners_count,omitempty"`
	DoorsCount    *int `json:"doorsCount,omitempty" yaml:"doors_count,omitempty"`
	Weight        *int `json:"weight,omitempty" yaml:"weight,omitempty"`
	CubicCapacity *int `json:"cubicCapacity,omitempty" yaml:"cubic_capacity,omitempty"`

	Damaged        bool `json:"damaged" yaml:"damaged"`
	VATReclaimable bool `json:"vatReclaimable" yaml:"vat_reclaimable"`
	IsNew          bool `json:"isNew" yaml:"is_new"`

	Images       []string `json:"images" yaml:"images"`
	ImagesNumber int      `json:"imagesNumber" yaml:"images_number"`

	DealerName   string `json:"dealerName,omitempty" yaml:"dealer_name,omitempty"`
	DealerCity   string `json:"dealerCity,omitempty" yaml:"dealer_city,omitempty"`
	DealerRegion string `json:"dealerRegion,omitempty" yaml:"dealer_region,omitempty"`
	DealerPhone  string `json:"dealerPhone,omitempty" yaml:"dealer_phone,omitempty"`
}

// HasImages reports whether the listing carries at least one picture.
func (v *Vehicle) HasImages() bool {
	return len(v.Images) > 0
}

// DeltaType indicates whether a listing was added/changed or removed
type DeltaType string

const (
	DeltaUpdate DeltaType = "update"
	DeltaRemove DeltaType = "remove"
)

// CatalogDelta is a single listing change between two feed snapshots.
type CatalogDelta struct {
	Type     DeltaType `json:"type"`
	Vehicle  *Vehicle  `json:"vehicle,omitempty"`
	AdNumber int       `json:"adNumber"`
	Make     string    `json:"make"`
}

// SnapshotSource tells where the catalog currently served came from.
type SnapshotSource string

const (
	SourceNone  SnapshotSource = "none"
	SourceLive  SnapshotSource = "live"
	SourceCache SnapshotSource = "cache"
)

// CatalogSnapshot is the persisted form of a parsed feed.
type CatalogSnapshot struct {
	Vehicles    []Vehicle `json:"vehicles"`
	Fingerprint string    `json:"fingerprint"`
	FetchedAt   time.Time `json:"fetchedAt"`
}
