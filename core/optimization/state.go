package optimization

import (
	"math"

	"github.com/openfleet/dispatchsim/core/model"
)

// State is the isolated snapshot of the environment handed to a dispatcher.
// It excludes entities in a terminal lifecycle state and heavy payloads, and
// is structurally independent from the live environment: the dispatcher may
// mutate it freely.
type State struct {
	currentTime float64

	trips            []*model.Trip
	assignedTrips    []*model.Trip
	nonAssignedTrips []*model.Trip

	vehicles         []*model.Vehicle
	routesByVehicle  map[string]*model.Route
	vehicleOrder     []string
	frozenStops      []*model.Stop
}

// NewState assembles a snapshot from already-cloned registries. The vehicle
// order determines deterministic route iteration.
func NewState(currentTime float64, trips, assignedTrips, nonAssignedTrips []*model.Trip,
	vehicles []*model.Vehicle, routesByVehicle map[string]*model.Route) *State {
	order := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		order = append(order, v.ID())
	}
	return &State{
		currentTime:      currentTime,
		trips:            trips,
		assignedTrips:    assignedTrips,
		nonAssignedTrips: nonAssignedTrips,
		vehicles:         vehicles,
		routesByVehicle:  routesByVehicle,
		vehicleOrder:     order,
	}
}

// CurrentTime is the planning time of the snapshot. After the routes are
// frozen for a lead interval this is the environment time plus that interval.
func (s *State) CurrentTime() float64 { return s.currentTime }

func (s *State) Trips() []*model.Trip            { return s.trips }
func (s *State) AssignedTrips() []*model.Trip    { return s.assignedTrips }
func (s *State) NonAssignedTrips() []*model.Trip { return s.nonAssignedTrips }
func (s *State) Vehicles() []*model.Vehicle      { return s.vehicles }

// RouteByVehicleID returns the snapshot route of a vehicle, nil when unknown.
func (s *State) RouteByVehicleID(vehicleID string) *model.Route {
	return s.routesByVehicle[vehicleID]
}

// Routes returns the snapshot routes in deterministic vehicle order.
func (s *State) Routes() []*model.Route {
	out := make([]*model.Route, 0, len(s.vehicleOrder))
	for _, id := range s.vehicleOrder {
		if r := s.routesByVehicle[id]; r != nil {
			out = append(out, r)
		}
	}
	return out
}

// NextLegs returns the pending legs of every trip in the snapshot.
func (s *State) NextLegs() []*model.Leg {
	var legs []*model.Leg
	for _, t := range s.trips {
		legs = append(legs, t.NextLegs()...)
	}
	return legs
}

// NonAssignedNextLegs returns the head pending leg of every trip that is not
// assigned to a route yet.
func (s *State) NonAssignedNextLegs() []*model.Leg {
	var legs []*model.Leg
	for _, t := range s.nonAssignedTrips {
		if next := t.NextLegs(); len(next) > 0 {
			legs = append(legs, next[0])
		}
	}
	return legs
}

// GetTripByID returns the snapshot trip with the given id, nil when unknown.
func (s *State) GetTripByID(id string) *model.Trip {
	for _, t := range s.trips {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// GetVehicleByID returns the snapshot vehicle with the given id.
func (s *State) GetVehicleByID(id string) *model.Vehicle {
	for _, v := range s.vehicles {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

// GetLegByID searches the legs of all snapshot trips.
func (s *State) GetLegByID(id string) *model.Leg {
	for _, t := range s.trips {
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

// FreezeRoutesForInterval marks every stop departing within the lead interval
// as non-modifiable and advances the snapshot planning time past it. The
// simulation is about to execute those departures; the optimizer must not
// reschedule them.
func (s *State) FreezeRoutesForInterval(interval float64) {
	if interval <= 0 {
		return
	}
	lo, hi := s.currentTime, s.currentTime+interval
	for _, r := range s.Routes() {
		stops := r.NextStops()
		if cur := r.CurrentStop(); cur != nil {
			stops = append([]*model.Stop{cur}, stops...)
		}
		for _, stop := range stops {
			dep := stop.DepartureTime()
			if math.IsInf(dep, 1) {
				continue
			}
			if dep >= lo && dep <= hi {
				stop.Freeze()
				s.frozenStops = append(s.frozenStops, stop)
			}
		}
	}
	s.currentTime += interval
}

// UnfreezeRoutes lifts the freeze applied by FreezeRoutesForInterval.
func (s *State) UnfreezeRoutes() {
	for _, stop := range s.frozenStops {
		stop.Unfreeze()
	}
	s.frozenStops = nil
}
