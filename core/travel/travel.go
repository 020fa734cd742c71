// Package travel holds the optional position and travel-time collaborators
// consulted by the vehicle departure and arrival handlers. The kernel never
// requires them; when absent it falls back to the route's planned timings.
package travel

import (
	"github.com/openfleet/dispatchsim/core/model"
)

// TravelTimes provides the actual travel time between consecutive stops.
type TravelTimes interface {
	// GetExpectedArrivalTime returns the time the vehicle is expected to
	// reach the destination stop after leaving the origin stop.
	GetExpectedArrivalTime(from, to *model.Stop, vehicle *model.Vehicle) float64
}

// Coordinates interpolates vehicle positions along their routes.
type Coordinates interface {
	// UpdatePosition returns the position of the vehicle at the given time,
	// nil when it cannot be determined.
	UpdatePosition(vehicle *model.Vehicle, route *model.Route, time float64) model.Location
	// UpdatePolylines recomputes the polyline traces of a route.
	UpdatePolylines(route *model.Route) map[string]string
}

// MatrixTravelTimes resolves travel times from a duration matrix keyed by
// location labels. Pairs missing from the matrix fall back to the planned
// arrival time of the destination stop.
type MatrixTravelTimes struct {
	durations map[string]map[string]float64
}

// NewMatrixTravelTimes creates a matrix provider. The outer key is the origin
// label, the inner key the destination label.
func NewMatrixTravelTimes(durations map[string]map[string]float64) *MatrixTravelTimes {
	return &MatrixTravelTimes{durations: durations}
}

// GetExpectedArrivalTime returns departure time plus the matrix duration, or
// the planned arrival time when the pair is unknown.
func (m *MatrixTravelTimes) GetExpectedArrivalTime(from, to *model.Stop, _ *model.Vehicle) float64 {
	fromLabel, ok := label(from.Location())
	if !ok {
		return to.ArrivalTime()
	}
	toLabel, ok := label(to.Location())
	if !ok {
		return to.ArrivalTime()
	}
	if d, ok := m.durations[fromLabel][toLabel]; ok {
		return from.DepartureTime() + d
	}
	return to.ArrivalTime()
}

func label(l model.Location) (string, bool) {
	ll, ok := l.(model.LabelLocation)
	if !ok {
		return "", false
	}
	return ll.Label, true
}
