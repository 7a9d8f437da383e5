package catalog

import (
	"math"
	"strconv"
	"strings"

	"dealerfeed/internal/domain"
)

const (
	minYear = 1900
	maxYear = 2100
)

// ParseSelection builds a FilterSelection from query-string style input.
// Set parameters may be repeated or comma separated. Values that do not
// parse, or make no sense (negative prices, year 12), are ignored rather
// than rejected, so any input yields a usable selection.
func ParseSelection(params map[string][]string) domain.FilterSelection {
	get := func(key string) string {
		if vs := params[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	sel := domain.FilterSelection{
		Make:  get("make"),
		Model: get("model"),

		Price: domain.FloatRange{
			Min: parseNonNegativeFloat(get("price_min")),
			Max: parseNonNegativeFloat(get("price_max")),
		},
		Year: domain.IntRange{
			Min: parseYear(get("year_min")),
			Max: parseYear(get("year_max")),
		},
		MaxMileage: parseNonNegativeInt(get("mileage_max")),
		Power: domain.IntRange{
			Min: parseNonNegativeInt(get("power_min")),
			Max: parseNonNegativeInt(get("power_max")),
		},
		Displacement: domain.IntRange{
			Min: parseNonNegativeInt(get("cc_min")),
			Max: parseNonNegativeInt(get("cc_max")),
		},

		FuelTypes:     splitSet(params["fuel"]),
		Categories:    splitSet(params["category"]),
		Transmissions: splitSet(params["transmission"]),
		Doors:         parseDoors(params["doors"]),
		Emissions:     splitSet(params["emissions"]),
		Colors:        splitSet(params["color"]),
	}

	sel.Sort, sel.Direction = NormalizeSort(
		domain.SortKey(strings.ToLower(get("sort"))),
		domain.SortDirection(strings.ToLower(get("dir"))),
	)
	return sel
}

// splitSet flattens repeated and comma separated values, dropping blanks
// and duplicates.
func splitSet(values []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

func parseDoors(values []string) []int {
	var out []int
	seen := make(map[int]struct{})
	for _, s := range splitSet(values) {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 9 {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func parseNonNegativeFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseNonNegativeInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func parseYear(s string) *int {
	v := parseNonNegativeInt(s)
	if v == nil || *v < minYear || *v > maxYear {
		return nil
	}
	return v
}
