package network

import (
	"fmt"
	"sort"
)

// Demand is an immutable origin-destination trip matrix. Entries are kept
// sorted by (origin, destination) so every iteration over the matrix — and
// therefore every floating-point reduction built on top of it — runs in a
// fixed order.
type Demand struct {
	trips   []Trip      // sorted by (Origin, Dest)
	origins []int       // sorted distinct origins
	span    map[int]int // origin → first position of its block in trips
	total   float64
}

// NewDemand validates and normalizes the given trips:
//
//   - negative volumes are rejected (ErrNegativeDemand);
//   - intrazonal (origin == destination) and zero-volume entries are dropped;
//   - duplicate (origin, destination) entries are aggregated by summing;
//   - an empty result is rejected (ErrNoTrips).
func NewDemand(trips []Trip) (*Demand, error) {
	agg := make(map[[2]int]float64, len(trips))
	for i, t := range trips {
		if t.Volume < 0 {
			return nil, fmt.Errorf("%w: %g for %d→%d (entry %d)", ErrNegativeDemand, t.Volume, t.Origin, t.Dest, i)
		}
		if t.Origin == t.Dest || t.Volume == 0 {
			continue
		}
		agg[[2]int{t.Origin, t.Dest}] += t.Volume
	}
	if len(agg) == 0 {
		return nil, ErrNoTrips
	}

	d := &Demand{
		trips: make([]Trip, 0, len(agg)),
		span:  make(map[int]int),
	}
	for key, vol := range agg {
		d.trips = append(d.trips, Trip{Origin: key[0], Dest: key[1], Volume: vol})
		d.total += vol
	}
	sort.Slice(d.trips, func(a, b int) bool {
		if d.trips[a].Origin != d.trips[b].Origin {
			return d.trips[a].Origin < d.trips[b].Origin
		}

		return d.trips[a].Dest < d.trips[b].Dest
	})
	for i, t := range d.trips {
		if _, ok := d.span[t.Origin]; !ok {
			d.span[t.Origin] = i
			d.origins = append(d.origins, t.Origin)
		}
	}
	sort.Ints(d.origins)

	return d, nil
}

// Len returns the number of OD pairs with positive demand.
func (d *Demand) Len() int { return len(d.trips) }

// Total returns the total demand volume over all OD pairs.
func (d *Demand) Total() float64 { return d.total }

// Trips returns a copy of all entries, sorted by (origin, destination).
func (d *Demand) Trips() []Trip { return append([]Trip(nil), d.trips...) }

// Origins returns a copy of the sorted distinct origin nodes.
func (d *Demand) Origins() []int { return append([]int(nil), d.origins...) }

// FromOrigin returns the entries departing the given origin, sorted by
// destination. The returned slice is shared internal state and must not be
// modified.
func (d *Demand) FromOrigin(origin int) []Trip {
	start, ok := d.span[origin]
	if !ok {
		return nil
	}
	end := start
	for end < len(d.trips) && d.trips[end].Origin == origin {
		end++
	}

	return d.trips[start:end]
}

// Volume returns the demand for one OD pair, or 0 if absent.
func (d *Demand) Volume(origin, dest int) float64 {
	for _, t := range d.FromOrigin(origin) {
		if t.Dest == dest {
			return t.Volume
		}
	}

	return 0
}
