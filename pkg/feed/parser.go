package feed

import (
	"log/slog"
	"strings"
	"time"

	"dealerfeed/internal/domain"
)

// ParseResult carries the parsed listings plus counters useful for logging.
type ParseResult struct {
	Vehicles   []domain.Vehicle
	Records    int // top-level <element> blocks seen
	Skipped    int // blocks without a positive <ad_number>
	Duplicates int // repeated ad numbers, first occurrence kept
}

// Parse converts one feed document into vehicles, in feed order. It never
// fails: malformed fields degrade to zero values and blocks without a
// positive ad number are left out.
func Parse(raw string) []domain.Vehicle {
	return parse(raw).Vehicles
}

func parse(raw string) *ParseResult {
	records := splitRecords(raw)
	result := &ParseResult{
		Vehicles: make([]domain.Vehicle, 0, len(records)),
		Records:  len(records),
	}

	seen := make(map[int]struct{}, len(records))
	for _, rec := range records {
		if _, ok := rawTag(rec, "ad_number"); !ok {
			result.Skipped++
			continue
		}
		v, ok := parseVehicle(rec)
		if !ok {
			result.Skipped++
			continue
		}
		if _, dup := seen[v.AdNumber]; dup {
			result.Duplicates++
			continue
		}
		seen[v.AdNumber] = struct{}{}
		result.Vehicles = append(result.Vehicles, v)
	}

	return result
}

func parseVehicle(rec string) (domain.Vehicle, bool) {
	adNumber := parseInt(extractTag(rec, "ad_number"))
	if adNumber <= 0 {
		return domain.Vehicle{}, false
	}

	v := domain.Vehicle{
		AdNumber:         adNumber,
		VehicleType:      extractTag(rec, "vehicle_type"),
		Title:            extractTag(rec, "title"),
		Make:             extractTag(rec, "make"),
		Model:            extractTag(rec, "model"),
		Version:          extractTag(rec, "version"),
		VehicleClass:     extractTag(rec, "vehicle_class"),
		VehicleCategory:  extractTag(rec, "vehicle_category"),
		Color:            extractTag(rec, "color"),
		ColorType:        extractTag(rec, "color_type"),
		FuelType:         extractTag(rec, "fuel_type"),
		Gearbox:          extractTag(rec, "gearbox"),
		TransmissionType: extractTag(rec, "transmission_type"),
		EmissionsClass:   extractTag(rec, "emissions_class"),
		RegistrationDate: extractTag(rec, "registration_date"),
		Description:      cleanDescription(extractTag(rec, "description")),

		Price:    ParsePrice(extractTag(rec, "price")),
		PowerKW:  parseInt(extractTag(rec, "power_kw")),
		PowerCV:  parseInt(extractTag(rec, "power_cv")),
		Mileage:  extractTag(rec, "mileage"),
		Warranty: parseInt(extractTag(rec, "warranty")),

		NumSeats:      parseOptionalIntPtr(extractTag(rec, "num_seats")),
		OwnersCount:   parseOptionalIntPtr(extractTag(rec, "owners_count")),
		DoorsCount:    parseOptionalIntPtr(extractTag(rec, "doors_count")),
		Weight:        parseOptionalIntPtr(extractTag(rec, "weight")),
		CubicCapacity: parseOptionalIntPtr(extractTag(rec, "cubic_capacity")),

		Damaged:        parseBool(extractTag(rec, "damaged")),
		VATReclaimable: parseBool(extractTag(rec, "vat_reclaimable")),

		DealerName:   extractTag(rec, "name"),
		DealerCity:   extractTag(rec, "city"),
		DealerRegion: extractTag(rec, "region"),
		DealerPhone:  extractTag(rec, "phone"),
	}
	v.IsNew = strings.Contains(strings.ToLower(v.VehicleClass), "nuov")

	v.Images = extractImages(rec)
	if len(v.Images) == 0 {
		if logo := imageEntityRepl.Replace(removeWhitespace(extractTag(rec, "company_logo"))); strings.HasPrefix(logo, "http") {
			v.Images = []string{logo}
		} else {
			v.Images = []string{}
		}
	}

	// A count supplied by the feed is trusted as is, even when it disagrees
	// with the images actually listed.
	if n, ok := parseOptionalInt(extractTag(rec, "images_number")); ok {
		v.ImagesNumber = n
	} else {
		v.ImagesNumber = len(v.Images)
	}

	return v, true
}

// Parser wraps Parse with structured logging of what was dropped.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger.With("component", "feed_parser"),
	}
}

func (p *Parser) Parse(raw string) *ParseResult {
	start := time.Now()
	result := parse(raw)

	p.logger.Info("parsed dealer feed",
		"size_bytes", len(raw),
		"records", result.Records,
		"vehicles", len(result.Vehicles),
		"skipped", result.Skipped,
		"duplicates", result.Duplicates,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result
}
