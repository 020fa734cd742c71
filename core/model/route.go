package model

import "fmt"

// Route is the mutable itinerary of one vehicle: the current stop, the
// ordered future stops, the append-only past stops, and the leg bookkeeping.
// A leg lives in exactly one of assigned, onboard or alighted at a time.
type Route struct {
	vehicle *Vehicle

	currentStop   *Stop
	nextStops     []*Stop
	previousStops []*Stop

	onboardLegs  []*Leg
	assignedLegs []*Leg
	alightedLegs []*Leg

	load int
}

// NewRoute creates a route starting at the vehicle start stop.
func NewRoute(vehicle *Vehicle, nextStops ...*Stop) *Route {
	return &Route{
		vehicle:     vehicle,
		currentStop: vehicle.StartStop(),
		nextStops:   nextStops,
	}
}

func (r *Route) Vehicle() *Vehicle      { return r.vehicle }
func (r *Route) CurrentStop() *Stop     { return r.currentStop }
func (r *Route) NextStops() []*Stop     { return r.nextStops }
func (r *Route) PreviousStops() []*Stop { return r.previousStops }
func (r *Route) OnboardLegs() []*Leg    { return r.onboardLegs }
func (r *Route) AssignedLegs() []*Leg   { return r.assignedLegs }
func (r *Route) AlightedLegs() []*Leg   { return r.alightedLegs }

// Load is the number of onboard legs.
func (r *Route) Load() int { return r.load }

// NbFreePlaces returns the remaining passenger places in the vehicle.
func (r *Route) NbFreePlaces() int { return r.vehicle.Capacity() - r.load }

// SetNextStops replaces the planned future stops.
func (r *Route) SetNextStops(stops []*Stop) { r.nextStops = stops }

// RequestsToPickup returns the trips waiting to board at the current stop.
func (r *Route) RequestsToPickup() []*Trip {
	if r.currentStop == nil {
		return nil
	}
	return r.currentStop.PassengersToBoard()
}

// InitiateBoarding starts boarding the trip at the current stop.
func (r *Route) InitiateBoarding(t *Trip) error {
	if r.currentStop == nil {
		return fmt.Errorf("route of vehicle %s has no current stop to board at", r.vehicle.ID())
	}
	return r.currentStop.InitiateBoarding(t)
}

// Board moves the trip current leg from assigned to onboard and completes the
// boarding at the current stop. Boarding beyond the vehicle capacity is an
// invariant violation.
func (r *Route) Board(t *Trip) error {
	if r.load >= r.vehicle.Capacity() {
		return fmt.Errorf("vehicle %s is full (capacity %d), trip %s cannot board",
			r.vehicle.ID(), r.vehicle.Capacity(), t.ID)
	}
	leg := t.CurrentLeg()
	if leg == nil {
		return fmt.Errorf("trip %s has no current leg to board with", t.ID)
	}
	var err error
	r.assignedLegs, err = removeLeg(r.assignedLegs, leg, "assigned legs")
	if err != nil {
		return fmt.Errorf("vehicle %s: %w", r.vehicle.ID(), err)
	}
	r.onboardLegs = append(r.onboardLegs, leg)
	if err := r.currentStop.Board(t); err != nil {
		return err
	}
	r.load++
	return nil
}

// Depart archives the current stop and leaves it.
func (r *Route) Depart() {
	if r.currentStop != nil {
		r.previousStops = append(r.previousStops, r.currentStop)
	}
	r.currentStop = nil
}

// Arrive makes the head of the next stops the current stop.
func (r *Route) Arrive() error {
	if len(r.nextStops) == 0 {
		return fmt.Errorf("route of vehicle %s has no next stop to arrive at", r.vehicle.ID())
	}
	r.currentStop = r.nextStops[0]
	r.nextStops = r.nextStops[1:]
	return nil
}

// InitiateAlighting starts alighting the trip at the current stop.
func (r *Route) InitiateAlighting(t *Trip) error {
	if r.currentStop == nil {
		return fmt.Errorf("route of vehicle %s has no current stop to alight at", r.vehicle.ID())
	}
	return r.currentStop.InitiateAlighting(t)
}

// Alight moves the leg from onboard to alighted and completes the alighting
// of its trip at the current stop.
func (r *Route) Alight(leg *Leg, t *Trip) error {
	var err error
	r.onboardLegs, err = removeLeg(r.onboardLegs, leg, "onboard legs")
	if err != nil {
		return fmt.Errorf("vehicle %s: %w", r.vehicle.ID(), err)
	}
	r.alightedLegs = append(r.alightedLegs, leg)
	if err := r.currentStop.Alight(t); err != nil {
		return err
	}
	r.load--
	return nil
}

// AssignLeg commits a leg to this route.
func (r *Route) AssignLeg(leg *Leg) {
	r.assignedLegs = append(r.assignedLegs, leg)
}

// HasAssignedLeg reports whether a leg with the given id is already committed.
func (r *Route) HasAssignedLeg(legID string) bool {
	for _, l := range r.assignedLegs {
		if l.ID == legID {
			return true
		}
	}
	return false
}

func removeLeg(legs []*Leg, leg *Leg, list string) ([]*Leg, error) {
	for i, c := range legs {
		if c == leg {
			return append(legs[:i], legs[i+1:]...), nil
		}
	}
	return legs, fmt.Errorf("leg %s not found in %s", leg.ID, list)
}
