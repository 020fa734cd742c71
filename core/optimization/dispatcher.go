package optimization

import (
	"fmt"
	"math"

	"github.com/openfleet/dispatchsim/core/model"
)

// Dispatcher is the one required capability of an optimization strategy: turn
// a set of pending legs and candidate routes into route plans. Optimize must
// only mutate the snapshot and the plans it returns, never the live
// environment.
type Dispatcher interface {
	Optimize(legs []*model.Leg, routes []*model.Route, currentTime float64, state *State) ([]*RoutePlan, error)
}

// InputPreparer optionally narrows the legs and routes worth optimizing.
// Returning an empty slice for either skips the round entirely. Strategies
// that do not implement it get every pending leg and every route.
type InputPreparer interface {
	PrepareInput(state *State) ([]*model.Leg, []*model.Route)
}

// RoutePlanProcessor optionally overrides how proposed plans are merged into
// the snapshot entities.
type RoutePlanProcessor interface {
	ProcessRoutePlans(plans []*RoutePlan, state *State) (*Result, error)
}

// Result reports which snapshot entities an optimization round touched, so
// the environment update notifies exactly those.
type Result struct {
	state            *State
	modifiedTrips    []*model.Trip
	modifiedVehicles []*model.Vehicle
}

func (r *Result) State() *State                      { return r.state }
func (r *Result) ModifiedTrips() []*model.Trip       { return r.modifiedTrips }
func (r *Result) ModifiedVehicles() []*model.Vehicle { return r.modifiedVehicles }

func defaultPrepareInput(state *State) ([]*model.Leg, []*model.Route) {
	return state.NextLegs(), state.Routes()
}

func defaultProcessRoutePlans(plans []*RoutePlan, state *State) (*Result, error) {
	res := &Result{state: state}
	for _, plan := range plans {
		if err := applyRoutePlan(plan, state); err != nil {
			return nil, err
		}
		for _, leg := range plan.AssignedLegs() {
			if trip := state.GetTripByID(leg.TripID()); trip != nil {
				res.modifiedTrips = append(res.modifiedTrips, trip)
			}
		}
		res.modifiedVehicles = append(res.modifiedVehicles, plan.Route().Vehicle())
	}
	return res, nil
}

// applyRoutePlan merges one plan into its snapshot route: departure time of
// the surviving current stop, replacement of the next stops, and leg-to-stop
// pairing for every assigned leg.
func applyRoutePlan(plan *RoutePlan, state *State) error {
	route := plan.Route()

	if dep, ok := plan.CurrentStopDepartureTime(); ok && route.CurrentStop() != nil {
		if err := route.CurrentStop().SetDepartureTime(dep); err != nil {
			return err
		}
	}

	if stops := plan.NextStops(); stops != nil {
		route.SetNextStops(stops)
		// No commitment exists past the planning horizon.
		if err := stops[len(stops)-1].SetDepartureTime(math.Inf(1)); err != nil {
			return err
		}
	}

	for _, leg := range plan.AssignedLegs() {
		route.AssignLeg(leg)
		trip := state.GetTripByID(leg.TripID())
		if trip == nil {
			return fmt.Errorf("route plan for vehicle %s assigns leg %s of unknown trip %s",
				route.Vehicle().ID(), leg.ID, leg.TripID())
		}
		assignTripToStops(leg, trip, route)
	}
	return nil
}

// assignTripToStops pairs a leg with its boarding stop (the first stop,
// possibly the current one, matching the leg origin) and its alighting stop
// (the first later stop matching the destination). A leg with no valid
// pairing is left unassigned to stops.
func assignTripToStops(leg *model.Leg, trip *model.Trip, route *model.Route) {
	boardingFound := false
	alightingFound := false

	if cur := route.CurrentStop(); cur != nil && leg.Origin.Eq(cur.Location()) {
		cur.AddPassengerToBoard(trip)
		boardingFound = true
	}

	for _, stop := range route.NextStops() {
		switch {
		case !boardingFound && leg.Origin.Eq(stop.Location()):
			stop.AddPassengerToBoard(trip)
			boardingFound = true
		case boardingFound && !alightingFound && leg.Destination.Eq(stop.Location()):
			stop.AddPassengerToAlight(trip)
			alightingFound = true
		}
	}
}
