package hub

import (
	"slices"
	"strings"
)

// AllMakes follows every listing in the catalog.
const AllMakes = "*"

// Interest is the set of makes a client follows. Makes compare exactly,
// like the catalog's make filter.
type Interest map[string]struct{}

// NewInterest builds an interest from client input, dropping blanks.
func NewInterest(makes []string) Interest {
	in := make(Interest, len(makes))
	for _, m := range makes {
		if m = strings.TrimSpace(m); m != "" {
			in[m] = struct{}{}
		}
	}
	return in
}

// Covers reports whether a change to a listing of the given make concerns
// this interest.
func (in Interest) Covers(vehicleMake string) bool {
	if _, ok := in[AllMakes]; ok {
		return true
	}
	_, ok := in[vehicleMake]
	return ok
}

func (in Interest) merge(other Interest) {
	for m := range other {
		in[m] = struct{}{}
	}
}

func (in Interest) drop(other Interest) {
	for m := range other {
		delete(in, m)
	}
}

// Makes lists the followed makes in sorted order.
func (in Interest) Makes() []string {
	makes := make([]string, 0, len(in))
	for m := range in {
		makes = append(makes, m)
	}
	slices.Sort(makes)
	return makes
}
