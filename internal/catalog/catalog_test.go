package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerfeed/internal/domain"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func img(n int) []string {
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = "https://cdn.example.it/x.jpg"
	}
	return out
}

// testFleet is a small mixed inventory used across the catalog tests.
func testFleet() []domain.Vehicle {
	return []domain.Vehicle{
		{AdNumber: 10, Make: "Fiat", Model: "Panda", FuelType: "Benzina", VehicleCategory: "City car",
			Gearbox: "Manuale", EmissionsClass: "Euro 6", Color: "Bianco", Price: 8990,
			Mileage: "45.000 km", RegistrationDate: "03/2019", PowerCV: 69, CubicCapacity: intPtr(1242), Images: img(2)},
		{AdNumber: 11, Make: "Fiat", Model: "500", FuelType: "Diesel", VehicleCategory: "City car",
			Gearbox: "Automatico", EmissionsClass: "Euro 6", Color: "Rosso", Price: 12500,
			Mileage: "20.000 km", RegistrationDate: "2021-05", PowerCV: 95, CubicCapacity: intPtr(1248), Images: img(1)},
		{AdNumber: 12, Make: "Volkswagen", Model: "Golf", Version: "2.0 TDI 5 porte", FuelType: "Diesel",
			VehicleCategory: "Berlina", Gearbox: "DSG automatico", EmissionsClass: "Euro 6", Color: "Grigio",
			Price: 18500, Mileage: "80.000 km", RegistrationDate: "01/2017", PowerCV: 150, CubicCapacity: intPtr(1968), Images: img(3)},
		{AdNumber: 13, Make: "Volkswagen", Model: "Golf", FuelType: "Benzina", VehicleCategory: "Berlina",
			Gearbox: "Manuale", EmissionsClass: "Euro 5", Color: "Nero", Price: 9900,
			Mileage: "120.000 km", RegistrationDate: "", PowerCV: 105, Images: nil},
		{AdNumber: 14, Make: "BMW", Model: "X1", FuelType: "Diesel", VehicleCategory: "SUV",
			Gearbox: "Automatic", EmissionsClass: "Euro 6", Color: "Nero", Price: 27900,
			Mileage: "35.000 km", RegistrationDate: "2020", PowerCV: 150, CubicCapacity: intPtr(1995), Images: img(1)},
		{AdNumber: 15, Make: "BMW", Model: "Serie 4", FuelType: "Benzina", VehicleCategory: "Coupé",
			Gearbox: "Automatico", EmissionsClass: "Euro 6", Color: "Blu", Price: 32000,
			Mileage: "10.000 km", RegistrationDate: "06/2022", PowerCV: 184, CubicCapacity: intPtr(1998), Images: nil},
	}
}

func adNumbers(vs []domain.Vehicle) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.AdNumber
	}
	return out
}

func facetMap(fv []domain.FacetValue) map[string]int {
	m := make(map[string]int, len(fv))
	for _, f := range fv {
		m[f.Value] = f.Count
	}
	return m
}

func facetTotal(fv []domain.FacetValue) int {
	total := 0
	for _, f := range fv {
		total += f.Count
	}
	return total
}

func TestQuery_ReturnsPageFacetsAndTotal(t *testing.T) {
	fleet := testFleet()
	sel := domain.FilterSelection{Make: "Fiat", Sort: domain.SortPrice, Direction: domain.SortAsc}

	page := Query(fleet, sel, 1, 1)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.PageSize)
	require.Len(t, page.Vehicles, 1)
	assert.Equal(t, 10, page.Vehicles[0].AdNumber)
	assert.Equal(t, 6, facetTotal(page.Facets.Makes))

	second := Query(fleet, sel, 2, 1)
	require.Len(t, second.Vehicles, 1)
	assert.Equal(t, 11, second.Vehicles[0].AdNumber)

	assert.Empty(t, Query(fleet, sel, 3, 1).Vehicles)
}

func TestQuery_DoesNotMutateInput(t *testing.T) {
	fleet := testFleet()
	before := adNumbers(fleet)

	Query(fleet, domain.FilterSelection{Sort: domain.SortPrice, Direction: domain.SortDesc}, 1, 10)
	assert.Equal(t, before, adNumbers(fleet))
}
