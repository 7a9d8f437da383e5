package catalog

import "dealerfeed/internal/domain"

// Paginate returns the 1-indexed page of items. Pages outside
// [1, ceil(len/size)] and non-positive sizes give an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return []T{}
	}
	totalPages := len(items) / size
	if len(items)%size != 0 {
		totalPages++
	}
	if page > totalPages {
		return []T{}
	}
	start := (page - 1) * size
	return items[start : start+min(size, len(items)-start)]
}

// Query filters, sorts and paginates the catalog and computes the facet
// counts for sel. vehicles is never modified, so concurrent queries may
// share one snapshot.
func Query(vehicles []domain.Vehicle, sel domain.FilterSelection, page, pageSize int) domain.CatalogPage {
	filtered := Filter(vehicles, sel)
	sorted := Sort(filtered, sel.Sort, sel.Direction)

	return domain.CatalogPage{
		Vehicles:   Paginate(sorted, page, pageSize),
		Facets:     ComputeFacets(vehicles, sel),
		TotalCount: len(filtered),
		Page:       page,
		PageSize:   pageSize,
	}
}
