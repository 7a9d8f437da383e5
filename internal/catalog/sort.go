package catalog

import (
	"cmp"
	"slices"

	"dealerfeed/internal/domain"
)

const (
	DefaultSort      = domain.SortAdNumber
	DefaultDirection = domain.SortDesc
)

// NormalizeSort maps unknown or empty values onto the default ordering.
func NormalizeSort(key domain.SortKey, dir domain.SortDirection) (domain.SortKey, domain.SortDirection) {
	switch key {
	case domain.SortPrice, domain.SortMileage, domain.SortYear, domain.SortAdNumber:
	default:
		key = DefaultSort
	}
	switch dir {
	case domain.SortAsc, domain.SortDesc:
	default:
		dir = DefaultDirection
	}
	return key, dir
}

// Sort returns a stably sorted copy of vehicles. Listings without pictures
// always come after listings with pictures, whatever the key; equal keys
// keep their input order.
func Sort(vehicles []domain.Vehicle, key domain.SortKey, dir domain.SortDirection) []domain.Vehicle {
	key, dir = NormalizeSort(key, dir)

	sorted := slices.Clone(vehicles)
	slices.SortStableFunc(sorted, func(a, b domain.Vehicle) int {
		if ai, bi := a.HasImages(), b.HasImages(); ai != bi {
			if ai {
				return -1
			}
			return 1
		}

		c := compareBy(&a, &b, key)
		if dir == domain.SortDesc {
			c = -c
		}
		return c
	})
	return sorted
}

func compareBy(a, b *domain.Vehicle, key domain.SortKey) int {
	switch key {
	case domain.SortPrice:
		return cmp.Compare(a.Price, b.Price)
	case domain.SortMileage:
		return cmp.Compare(MileageKm(a), MileageKm(b))
	case domain.SortYear:
		ya, _ := RegistrationYear(a)
		yb, _ := RegistrationYear(b)
		return cmp.Compare(ya, yb)
	default:
		return cmp.Compare(a.AdNumber, b.AdNumber)
	}
}
