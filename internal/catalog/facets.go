package catalog

import (
	"cmp"
	"slices"
	"strconv"

	"dealerfeed/internal/domain"
)

type facetDim struct {
	dim   dimension
	value func(v *domain.Vehicle) string
}

var facetDims = []facetDim{
	{dimModel, func(v *domain.Vehicle) string { return v.Model }},
	{dimFuel, func(v *domain.Vehicle) string { return v.FuelType }},
	{dimCategory, func(v *domain.Vehicle) string { return v.VehicleCategory }},
	{dimTransmission, Transmission},
	{dimDoors, func(v *domain.Vehicle) string { return strconv.Itoa(DoorCount(v)) }},
	{dimEmissions, func(v *domain.Vehicle) string { return v.EmissionsClass }},
	{dimColor, func(v *domain.Vehicle) string { return v.Color }},
}

// ComputeFacets counts option values for every filterable dimension.
//
// Makes are counted over the whole collection so every make stays visible.
// Every other dimension is counted over the vehicles that pass all active
// constraints except the dimension's own, so selecting one fuel type still
// shows how many vehicles the other fuel types would give. The model facet
// therefore follows the selected make, if any.
//
// Vehicles with an empty value are counted under "" so that the counts of
// a facet always add up to the size of the set it was computed on.
func ComputeFacets(vehicles []domain.Vehicle, sel domain.FilterSelection) domain.FacetCounts {
	counts := domain.FacetCounts{
		Makes: tally(vehicles, func(v *domain.Vehicle) string { return v.Make }),
	}

	for _, fd := range facetDims {
		values := tally(filterExcept(vehicles, sel, fd.dim), fd.value)
		switch fd.dim {
		case dimModel:
			counts.Models = values
		case dimFuel:
			counts.FuelTypes = values
		case dimCategory:
			counts.Categories = values
		case dimTransmission:
			counts.Transmissions = values
		case dimDoors:
			counts.Doors = values
		case dimEmissions:
			counts.Emissions = values
		case dimColor:
			counts.Colors = values
		}
	}

	return counts
}

// tally returns value counts ordered by count descending, then value.
func tally(vehicles []domain.Vehicle, value func(v *domain.Vehicle) string) []domain.FacetValue {
	byValue := make(map[string]int)
	for i := range vehicles {
		byValue[value(&vehicles[i])]++
	}

	result := make([]domain.FacetValue, 0, len(byValue))
	for v, n := range byValue {
		result = append(result, domain.FacetValue{Value: v, Count: n})
	}
	slices.SortFunc(result, func(a, b domain.FacetValue) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return result
}
