package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"dealerfeed/internal/domain"
)

const (
	TransmissionAutomatic = "Automatico"
	TransmissionManual    = "Manuale"

	defaultDoors = 5
)

var (
	yearRegex   = regexp.MustCompile(`\d{4}`)
	digitsRegex = regexp.MustCompile(`\d+`)
	doorsRegex  = regexp.MustCompile(`(?i)\b(\d)\s*-?\s*porte\b`)

	// Keys are folded with foldKey.
	categoryDoors = map[string]int{
		"berlina":       4,
		"suv":           5,
		"city car":      3,
		"coupe":         2,
		"cabrio":        2,
		"spider":        2,
		"station wagon": 5,
		"monovolume":    5,
		"fuoristrada":   5,
	}
)

// RegistrationYear returns the first 4-digit run of the registration date.
func RegistrationYear(v *domain.Vehicle) (int, bool) {
	m := yearRegex.FindString(v.RegistrationDate)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}

// MileageKm reads the digits out of the free-text mileage ("45.000 km").
func MileageKm(v *domain.Vehicle) int {
	digits := strings.Join(digitsRegex.FindAllString(v.Mileage, -1), "")
	if digits == "" {
		return 0
	}
	km, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return km
}

// NormalizeTransmission maps any gearbox description onto the two values
// the storefront filters on.
func NormalizeTransmission(gearbox string) string {
	if strings.Contains(strings.ToLower(gearbox), "auto") {
		return TransmissionAutomatic
	}
	return TransmissionManual
}

func Transmission(v *domain.Vehicle) string {
	return NormalizeTransmission(v.Gearbox)
}

// DoorCount prefers an explicit "N porte" in the version text and falls
// back to the usual door count for the body category.
func DoorCount(v *domain.Vehicle) int {
	if m := doorsRegex.FindStringSubmatch(v.Version); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if n, ok := categoryDoors[foldKey(v.VehicleCategory)]; ok {
		return n
	}
	return defaultDoors
}

// foldKey lowercases, strips accents and collapses whitespace so that
// "Coupé" and "coupe " compare equal.
func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}
