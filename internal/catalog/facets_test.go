package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dealerfeed/internal/domain"
)

func TestComputeFacets_MakesIgnoreSelection(t *testing.T) {
	fleet := testFleet()

	selections := []domain.FilterSelection{
		{},
		{Make: "BMW"},
		{FuelTypes: []string{"Diesel"}, Colors: []string{"Nero"}},
		{Price: domain.FloatRange{Min: floatPtr(1_000_000)}},
	}

	for _, sel := range selections {
		facets := ComputeFacets(fleet, sel)
		assert.Equal(t, len(fleet), facetTotal(facets.Makes))
		assert.Equal(t, map[string]int{"Fiat": 2, "Volkswagen": 2, "BMW": 2}, facetMap(facets.Makes))
	}
}

func TestComputeFacets_OwnDimensionExcluded(t *testing.T) {
	facets := ComputeFacets(testFleet(), domain.FilterSelection{FuelTypes: []string{"Diesel"}})

	fuel := facetMap(facets.FuelTypes)
	assert.Equal(t, 3, fuel["Diesel"])
	assert.Equal(t, 3, fuel["Benzina"])

	// Other dimensions are narrowed to diesel vehicles.
	assert.Equal(t, map[string]int{"Grigio": 1, "Nero": 1, "Rosso": 1}, facetMap(facets.Colors))
	assert.Equal(t, map[string]int{TransmissionAutomatic: 3}, facetMap(facets.Transmissions))
}

func TestComputeFacets_ModelsFollowMake(t *testing.T) {
	facets := ComputeFacets(testFleet(), domain.FilterSelection{Make: "Volkswagen", Model: "Golf"})

	assert.Equal(t, map[string]int{"Golf": 2}, facetMap(facets.Models))
	assert.Equal(t, map[string]int{"Diesel": 1, "Benzina": 1}, facetMap(facets.FuelTypes))
}

func TestComputeFacets_DoorsAndOrdering(t *testing.T) {
	facets := ComputeFacets(testFleet(), domain.FilterSelection{})

	assert.Equal(t, []domain.FacetValue{
		{Value: "3", Count: 2},
		{Value: "5", Count: 2},
		{Value: "2", Count: 1},
		{Value: "4", Count: 1},
	}, facets.Doors)
}

func TestComputeFacets_EmptyValuesCounted(t *testing.T) {
	fleet := []domain.Vehicle{
		{AdNumber: 1, Make: "Fiat", Color: "Rosso"},
		{AdNumber: 2, Make: "Fiat"},
	}

	facets := ComputeFacets(fleet, domain.FilterSelection{})
	assert.Equal(t, 2, facetTotal(facets.Colors))
	assert.Equal(t, 1, facetMap(facets.Colors)[""])
}

func TestComputeFacets_EmptyInput(t *testing.T) {
	facets := ComputeFacets(nil, domain.FilterSelection{Make: "Fiat"})
	assert.Empty(t, facets.Makes)
	assert.Empty(t, facets.Models)
}
