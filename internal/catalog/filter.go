package catalog

import (
	"slices"

	"dealerfeed/internal/domain"
)

// dimension identifies a faceted filter. Range constraints (price, year,
// mileage, power, displacement) have no facet and are always applied.
type dimension int

const (
	dimNone dimension = iota
	dimMake
	dimModel
	dimFuel
	dimCategory
	dimTransmission
	dimDoors
	dimEmissions
	dimColor
)

// Filter returns the vehicles matching every constraint in sel, in input
// order. The input slice is not modified.
func Filter(vehicles []domain.Vehicle, sel domain.FilterSelection) []domain.Vehicle {
	return filterExcept(vehicles, sel, dimNone)
}

func filterExcept(vehicles []domain.Vehicle, sel domain.FilterSelection, skip dimension) []domain.Vehicle {
	result := make([]domain.Vehicle, 0, len(vehicles))
	for i := range vehicles {
		if matches(&vehicles[i], sel, skip) {
			result = append(result, vehicles[i])
		}
	}
	return result
}

// matches applies all constraints of sel to v except the one on skip.
func matches(v *domain.Vehicle, sel domain.FilterSelection, skip dimension) bool {
	if skip != dimMake && sel.Make != "" && v.Make != sel.Make {
		return false
	}
	if skip != dimModel && sel.Model != "" && v.Model != sel.Model {
		return false
	}

	if sel.Price.IsSet() && !sel.Price.Contains(v.Price) {
		return false
	}
	if sel.Year.IsSet() {
		year, ok := RegistrationYear(v)
		if !ok || !sel.Year.Contains(year) {
			return false
		}
	}
	if sel.MaxMileage != nil && MileageKm(v) > *sel.MaxMileage {
		return false
	}
	if sel.Power.IsSet() && !sel.Power.Contains(v.PowerCV) {
		return false
	}
	if sel.Displacement.IsSet() {
		if v.CubicCapacity == nil || !sel.Displacement.Contains(*v.CubicCapacity) {
			return false
		}
	}

	if skip != dimFuel && !inSet(sel.FuelTypes, v.FuelType) {
		return false
	}
	if skip != dimCategory && !inSet(sel.Categories, v.VehicleCategory) {
		return false
	}
	if skip != dimTransmission && !matchesTransmission(sel.Transmissions, v) {
		return false
	}
	if skip != dimDoors && len(sel.Doors) > 0 && !slices.Contains(sel.Doors, DoorCount(v)) {
		return false
	}
	if skip != dimEmissions && !inSet(sel.Emissions, v.EmissionsClass) {
		return false
	}
	if skip != dimColor && !inSet(sel.Colors, v.Color) {
		return false
	}

	return true
}

// inSet treats an empty selection as "anything goes".
func inSet(selected []string, value string) bool {
	return len(selected) == 0 || slices.Contains(selected, value)
}

func matchesTransmission(selected []string, v *domain.Vehicle) bool {
	if len(selected) == 0 {
		return true
	}
	got := Transmission(v)
	for _, s := range selected {
		if NormalizeTransmission(s) == got {
			return true
		}
	}
	return false
}
