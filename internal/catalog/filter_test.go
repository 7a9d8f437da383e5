package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dealerfeed/internal/domain"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		sel  domain.FilterSelection
		want []int
	}{
		{"no constraints", domain.FilterSelection{}, []int{10, 11, 12, 13, 14, 15}},
		{"make", domain.FilterSelection{Make: "BMW"}, []int{14, 15}},
		{"make and model", domain.FilterSelection{Make: "Volkswagen", Model: "Golf"}, []int{12, 13}},
		{"make is exact", domain.FilterSelection{Make: "bmw"}, []int{}},
		{"price range inclusive", domain.FilterSelection{Price: domain.FloatRange{Min: floatPtr(9900), Max: floatPtr(18500)}}, []int{11, 12, 13}},
		{"price min only", domain.FilterSelection{Price: domain.FloatRange{Min: floatPtr(27900)}}, []int{14, 15}},
		{"year range excludes unknown year", domain.FilterSelection{Year: domain.IntRange{Min: intPtr(2017), Max: intPtr(2020)}}, []int{10, 12, 14}},
		{"mileage ceiling", domain.FilterSelection{MaxMileage: intPtr(35000)}, []int{11, 14, 15}},
		{"power range", domain.FilterSelection{Power: domain.IntRange{Min: intPtr(100), Max: intPtr(150)}}, []int{12, 13, 14}},
		{"displacement excludes absent", domain.FilterSelection{Displacement: domain.IntRange{Max: intPtr(2000)}}, []int{10, 11, 12, 14, 15}},
		{"fuel set", domain.FilterSelection{FuelTypes: []string{"Diesel"}}, []int{11, 12, 14}},
		{"fuel set multiple", domain.FilterSelection{FuelTypes: []string{"Diesel", "Benzina"}}, []int{10, 11, 12, 13, 14, 15}},
		{"category", domain.FilterSelection{Categories: []string{"Berlina"}}, []int{12, 13}},
		{"transmission automatic", domain.FilterSelection{Transmissions: []string{TransmissionAutomatic}}, []int{11, 12, 14, 15}},
		{"transmission manual", domain.FilterSelection{Transmissions: []string{TransmissionManual}}, []int{10, 13}},
		{"doors", domain.FilterSelection{Doors: []int{2}}, []int{15}},
		{"doors from version text", domain.FilterSelection{Doors: []int{5}}, []int{12, 14}},
		{"emissions", domain.FilterSelection{Emissions: []string{"Euro 5"}}, []int{13}},
		{"color", domain.FilterSelection{Colors: []string{"Nero"}}, []int{13, 14}},
		{"combined", domain.FilterSelection{FuelTypes: []string{"Diesel"}, Colors: []string{"Nero"}}, []int{14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adNumbers(Filter(testFleet(), tt.sel)))
		})
	}
}

func TestDoorCount(t *testing.T) {
	tests := []struct {
		version  string
		category string
		want     int
	}{
		{"1.2 69 CV 3 porte Lounge", "Berlina", 3},
		{"2.0 TDI 5-porte", "", 5},
		{"", "Berlina", 4},
		{"", "SUV", 5},
		{"", "City car", 3},
		{"", "Coupé", 2},
		{"", "coupe", 2},
		{"", "Cabrio", 2},
		{"", "Trattore", 5},
		{"", "", 5},
	}

	for _, tt := range tests {
		v := &domain.Vehicle{Version: tt.version, VehicleCategory: tt.category}
		assert.Equal(t, tt.want, DoorCount(v), "version %q category %q", tt.version, tt.category)
	}
}

func TestNormalizeTransmission(t *testing.T) {
	assert.Equal(t, TransmissionAutomatic, NormalizeTransmission("Automatico"))
	assert.Equal(t, TransmissionAutomatic, NormalizeTransmission("cambio AUTOMATICO 7 marce"))
	assert.Equal(t, TransmissionAutomatic, NormalizeTransmission("Semi-Auto"))
	assert.Equal(t, TransmissionManual, NormalizeTransmission("Manuale"))
	assert.Equal(t, TransmissionManual, NormalizeTransmission("DSG"))
	assert.Equal(t, TransmissionManual, NormalizeTransmission(""))
}

func TestRegistrationYearAndMileage(t *testing.T) {
	year, ok := RegistrationYear(&domain.Vehicle{RegistrationDate: "03/2019"})
	assert.True(t, ok)
	assert.Equal(t, 2019, year)

	_, ok = RegistrationYear(&domain.Vehicle{RegistrationDate: "n.d."})
	assert.False(t, ok)

	assert.Equal(t, 45000, MileageKm(&domain.Vehicle{Mileage: "45.000 km"}))
	assert.Equal(t, 0, MileageKm(&domain.Vehicle{Mileage: "km 0"}))
	assert.Equal(t, 0, MileageKm(&domain.Vehicle{}))
}
