package simulation

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/openfleet/dispatchsim/core/logger"
	"github.com/openfleet/dispatchsim/core/model"
	"github.com/openfleet/dispatchsim/core/optimization"
	"github.com/openfleet/dispatchsim/core/statemachine"
	"github.com/openfleet/dispatchsim/core/travel"
)

// Environment is the live world state of a run: the trip and vehicle
// registries, the route of each vehicle and the simulation clock. Registries
// are kept as insertion-ordered slices so that every iteration, and therefore
// every run, is deterministic.
type Environment struct {
	currentTime float64

	trips            []*model.Trip
	assignedTrips    []*model.Trip
	nonAssignedTrips []*model.Trip

	vehicles          []*model.Vehicle
	routesByVehicleID map[string]*model.Route

	optimization *optimization.Optimization
	travelTimes  travel.TravelTimes
	coordinates  travel.Coordinates
	log          logger.Logger
}

// NewEnvironment creates an empty environment. The travel-time and coordinate
// collaborators are optional; a nil logger falls back to the no-op logger.
func NewEnvironment(opt *optimization.Optimization, travelTimes travel.TravelTimes, coordinates travel.Coordinates, log logger.Logger) *Environment {
	if log == nil {
		log = logger.Nop{}
	}
	return &Environment{
		routesByVehicleID: make(map[string]*model.Route),
		optimization:      opt,
		travelTimes:       travelTimes,
		coordinates:       coordinates,
		log:               log,
	}
}

// CurrentTime returns the simulation clock.
func (e *Environment) CurrentTime() float64 { return e.currentTime }

// SetCurrentTime advances the clock. Moving it backwards is an invariant
// violation and aborts the run.
func (e *Environment) SetCurrentTime(t float64) error {
	if t < e.currentTime {
		return fmt.Errorf("simulation time cannot decrease from %v to %v", e.currentTime, t)
	}
	e.currentTime = t
	return nil
}

// Optimization returns the optimize-cycle coordinator.
func (e *Environment) Optimization() *optimization.Optimization { return e.optimization }

// TravelTimes returns the travel-time collaborator, nil when not configured.
func (e *Environment) TravelTimes() travel.TravelTimes { return e.travelTimes }

// Coordinates returns the position collaborator, nil when not configured.
func (e *Environment) Coordinates() travel.Coordinates { return e.coordinates }

// Log returns the environment logger.
func (e *Environment) Log() logger.Logger { return e.log }

// Trips returns every registered trip in insertion order.
func (e *Environment) Trips() []*model.Trip { return e.trips }

// AssignedTrips returns the trips currently assigned to a vehicle.
func (e *Environment) AssignedTrips() []*model.Trip { return e.assignedTrips }

// NonAssignedTrips returns the trips still waiting for an assignment.
func (e *Environment) NonAssignedTrips() []*model.Trip { return e.nonAssignedTrips }

// Vehicles returns every registered vehicle in insertion order.
func (e *Environment) Vehicles() []*model.Vehicle { return e.vehicles }

// AddTrip registers a trip.
func (e *Environment) AddTrip(t *model.Trip) { e.trips = append(e.trips, t) }

// RemoveTrip unregisters a trip by id.
func (e *Environment) RemoveTrip(id string) {
	e.trips = removeTripByID(e.trips, id)
}

// GetTripByID returns the trip with the given id, nil when unknown.
func (e *Environment) GetTripByID(id string) *model.Trip {
	for _, t := range e.trips {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AddAssignedTrip marks the trip as assigned. Re-adding an already assigned
// trip is a no-op so that repeated assignment updates stay idempotent.
func (e *Environment) AddAssignedTrip(t *model.Trip) {
	for _, c := range e.assignedTrips {
		if c.ID == t.ID {
			return
		}
	}
	e.assignedTrips = append(e.assignedTrips, t)
}

// AddNonAssignedTrip marks the trip as waiting for an assignment.
func (e *Environment) AddNonAssignedTrip(t *model.Trip) {
	e.nonAssignedTrips = append(e.nonAssignedTrips, t)
}

// RemoveNonAssignedTrip drops the trip from the waiting list.
func (e *Environment) RemoveNonAssignedTrip(id string) {
	e.nonAssignedTrips = removeTripByID(e.nonAssignedTrips, id)
}

// GetLegByID searches the legs of every registered trip.
func (e *Environment) GetLegByID(id string) *model.Leg {
	for _, t := range e.trips {
		if l := t.CurrentLeg(); l != nil && l.ID == id {
			return l
		}
		for _, l := range t.PreviousLegs() {
			if l.ID == id {
				return l
			}
		}
		for _, l := range t.NextLegs() {
			if l.ID == id {
				return l
			}
		}
	}
	return nil
}

// AddVehicle registers a vehicle.
func (e *Environment) AddVehicle(v *model.Vehicle) { e.vehicles = append(e.vehicles, v) }

// GetVehicleByID returns the vehicle with the given id, nil when unknown.
func (e *Environment) GetVehicleByID(id string) *model.Vehicle {
	for _, v := range e.vehicles {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

// AddRoute attaches a route to its vehicle.
func (e *Environment) AddRoute(r *model.Route) {
	e.routesByVehicleID[r.Vehicle().ID()] = r
}

// GetRouteByVehicleID returns the route of a vehicle, nil when unknown.
func (e *Environment) GetRouteByVehicleID(vehicleID string) *model.Route {
	return e.routesByVehicleID[vehicleID]
}

// Statistics summarizes the environment for the need-to-optimize policy.
func (e *Environment) Statistics() optimization.EnvironmentStatistics {
	occupancies := make([]float64, 0, len(e.vehicles))
	for _, v := range e.vehicles {
		r := e.routesByVehicleID[v.ID()]
		if r == nil || v.Capacity() <= 0 {
			continue
		}
		occupancies = append(occupancies, float64(r.Load())/float64(v.Capacity()))
	}
	s := optimization.EnvironmentStatistics{
		NbVehicles:    len(e.vehicles),
		NbTrips:       len(e.trips),
		NbNonAssigned: len(e.nonAssignedTrips),
	}
	if len(occupancies) > 0 {
		s.MeanOccupancy = stat.Mean(occupancies, nil)
		s.HighestOccupancy = floats.Max(occupancies)
	}
	return s
}

// NewState builds the isolated snapshot handed to the optimizer. Trips and
// vehicles in a terminal state are pruned, polyline payloads are dropped, and
// every entity is deep-copied so that the optimizer can mutate the snapshot
// without touching the live world.
func (e *Environment) NewState() *optimization.State {
	ctx := model.NewCloneContext()

	cloneTrips := func(in []*model.Trip) []*model.Trip {
		var out []*model.Trip
		for _, t := range in {
			switch t.Status() {
			case statemachine.TripComplete, statemachine.TripRejected:
				continue
			}
			out = append(out, ctx.CloneTrip(t))
		}
		return out
	}

	trips := cloneTrips(e.trips)
	assigned := cloneTrips(e.assignedTrips)
	nonAssigned := cloneTrips(e.nonAssignedTrips)

	var vehicles []*model.Vehicle
	routes := make(map[string]*model.Route, len(e.routesByVehicleID))
	for _, v := range e.vehicles {
		if v.Status() == statemachine.VehicleComplete {
			continue
		}
		vehicles = append(vehicles, ctx.CloneVehicle(v))
		if r := e.routesByVehicleID[v.ID()]; r != nil {
			routes[v.ID()] = ctx.CloneRoute(r)
		}
	}

	return optimization.NewState(e.currentTime, trips, assigned, nonAssigned, vehicles, routes)
}

func removeTripByID(trips []*model.Trip, id string) []*model.Trip {
	for i, t := range trips {
		if t.ID == id {
			return append(trips[:i], trips[i+1:]...)
		}
	}
	return trips
}
