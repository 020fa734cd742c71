package model

import (
	"fmt"
	"math"

	"github.com/openfleet/dispatchsim/core/statemachine"
)

// Request holds the immutable demand fields shared by trips and legs.
type Request struct {
	ID           string
	Origin       Location
	Destination  Location
	NbPassengers int
	ReleaseTime  float64
	ReadyTime    float64
	DueTime      float64
	Name         string
}

// Leg is one vehicle-assignment segment of a trip. It holds a non-owning
// back-reference to its trip by id to keep the object graph acyclic across
// copy boundaries.
type Leg struct {
	Request

	tripID            string
	assignedVehicleID string
	boardingTime      float64 // NaN until observed
	alightingTime     float64 // NaN until observed
}

// NewLeg creates a leg belonging to the trip with the given id.
func NewLeg(req Request, tripID string) *Leg {
	return &Leg{
		Request:       req,
		tripID:        tripID,
		boardingTime:  math.NaN(),
		alightingTime: math.NaN(),
	}
}

// TripID returns the id of the owning trip.
func (l *Leg) TripID() string { return l.tripID }

// AssignedVehicleID returns the id of the assigned vehicle, empty when the
// leg is unassigned.
func (l *Leg) AssignedVehicleID() string { return l.assignedVehicleID }

// AssignVehicle assigns the leg to a vehicle. Re-assignment to the same
// vehicle is a no-op; two optimize cycles scheduled at the same simulation
// time produce identical results and must not conflict. Re-assignment to a
// different vehicle is an invariant violation.
func (l *Leg) AssignVehicle(vehicleID string) error {
	if l.assignedVehicleID != "" && l.assignedVehicleID != vehicleID {
		return fmt.Errorf("leg %s is already assigned to vehicle %s, cannot assign to %s",
			l.ID, l.assignedVehicleID, vehicleID)
	}
	l.assignedVehicleID = vehicleID
	return nil
}

// BoardingTime returns the observed boarding time and whether one was set.
func (l *Leg) BoardingTime() (float64, bool) {
	return l.boardingTime, !math.IsNaN(l.boardingTime)
}

// SetBoardingTime records the observed boarding time.
func (l *Leg) SetBoardingTime(t float64) { l.boardingTime = t }

// AlightingTime returns the observed alighting time and whether one was set.
func (l *Leg) AlightingTime() (float64, bool) {
	return l.alightingTime, !math.IsNaN(l.alightingTime)
}

// SetAlightingTime records the observed alighting time.
func (l *Leg) SetAlightingTime(t float64) { l.alightingTime = t }

// Trip is a transportation request decomposed into an ordered sequence of
// legs. Completed legs are archived append-only in previous legs.
type Trip struct {
	Request

	previousLegs []*Leg
	currentLeg   *Leg
	nextLegs     []*Leg

	machine *statemachine.Machine[statemachine.TripStatus]
}

// NewTrip creates a trip in the released state.
func NewTrip(req Request) *Trip {
	return &Trip{
		Request: req,
		machine: statemachine.NewTripMachine(req.ID, statemachine.TripReleased),
	}
}

// newTripAt is used by cloning to preserve the lifecycle state.
func newTripAt(req Request, status statemachine.TripStatus) *Trip {
	return &Trip{
		Request: req,
		machine: statemachine.NewTripMachine(req.ID, status),
	}
}

// Status returns the current lifecycle state.
func (t *Trip) Status() statemachine.TripStatus { return t.machine.Current() }

// StateMachine exposes the lifecycle machine for event processing.
func (t *Trip) StateMachine() *statemachine.Machine[statemachine.TripStatus] {
	return t.machine
}

func (t *Trip) PreviousLegs() []*Leg { return t.previousLegs }
func (t *Trip) CurrentLeg() *Leg     { return t.currentLeg }
func (t *Trip) NextLegs() []*Leg     { return t.nextLegs }

// AssignLegs replaces the pending leg sequence of the trip.
func (t *Trip) AssignLegs(legs []*Leg) { t.nextLegs = legs }

// StartNextLeg pops the head of the pending legs into the current leg.
func (t *Trip) StartNextLeg() error {
	if len(t.nextLegs) == 0 {
		return fmt.Errorf("trip %s does not have any next leg", t.ID)
	}
	t.currentLeg = t.nextLegs[0]
	t.nextLegs = t.nextLegs[1:]
	return nil
}

// FinishCurrentLeg archives the current leg into previous legs.
func (t *Trip) FinishCurrentLeg() error {
	if t.currentLeg == nil {
		return fmt.Errorf("trip %s has no current leg to finish", t.ID)
	}
	t.previousLegs = append(t.previousLegs, t.currentLeg)
	t.currentLeg = nil
	return nil
}
