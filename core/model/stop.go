package model

import (
	"fmt"
	"math"
)

// Stop is a halt of a vehicle at a location over [arrival, departure].
// Passengers move through two three-stage pipelines: to board -> boarding ->
// boarded, and to alight -> alighting -> alighted. A trip sits in exactly one
// of these lists at a time.
type Stop struct {
	arrivalTime        float64
	departureTime      float64
	minDepartureTime   float64 // NaN when unset
	location           Location
	cumulativeDistance float64
	frozen             bool

	passengersToBoard   []*Trip
	boardingPassengers  []*Trip
	boardedPassengers   []*Trip
	passengersToAlight  []*Trip
	alightingPassengers []*Trip
	alightedPassengers  []*Trip
}

// NewStop creates a stop with no minimum departure time.
func NewStop(arrivalTime, departureTime float64, location Location) *Stop {
	return &Stop{
		arrivalTime:      arrivalTime,
		departureTime:    departureTime,
		minDepartureTime: math.NaN(),
		location:         location,
	}
}

// NewStopWithMinDeparture creates a stop whose departure time may never drop
// below minDepartureTime.
func NewStopWithMinDeparture(arrivalTime, departureTime, minDepartureTime float64, location Location) (*Stop, error) {
	s := NewStop(arrivalTime, departureTime, location)
	s.minDepartureTime = minDepartureTime
	if departureTime < minDepartureTime {
		return nil, fmt.Errorf("stop at %s: departure time %v below minimum %v",
			location, departureTime, minDepartureTime)
	}
	return s, nil
}

func (s *Stop) ArrivalTime() float64   { return s.arrivalTime }
func (s *Stop) DepartureTime() float64 { return s.departureTime }
func (s *Stop) Location() Location     { return s.location }
func (s *Stop) Frozen() bool           { return s.frozen }

// MinDepartureTime returns the minimum departure time and whether one is set.
func (s *Stop) MinDepartureTime() (float64, bool) {
	return s.minDepartureTime, !math.IsNaN(s.minDepartureTime)
}

// CumulativeDistance returns the distance travelled when arriving at the stop.
func (s *Stop) CumulativeDistance() float64 { return s.cumulativeDistance }

// SetCumulativeDistance records the distance travelled up to this stop.
func (s *Stop) SetCumulativeDistance(d float64) { s.cumulativeDistance = d }

// SetArrivalTime updates the planned arrival time.
func (s *Stop) SetArrivalTime(t float64) { s.arrivalTime = t }

// SetDepartureTime updates the planned departure time. It fails when the stop
// is frozen for optimization (unless the value is unchanged) or when the new
// value violates the minimum departure time. Both are invariant violations.
func (s *Stop) SetDepartureTime(t float64) error {
	if s.frozen && t != s.departureTime {
		return fmt.Errorf("stop at %s is frozen: departure time cannot change from %v to %v",
			s.location, s.departureTime, t)
	}
	if min, ok := s.MinDepartureTime(); ok && t < min {
		return fmt.Errorf("stop at %s: departure time %v below minimum %v",
			s.location, t, min)
	}
	s.departureTime = t
	return nil
}

// Freeze marks the stop non-modifiable for the duration of an optimize cycle.
func (s *Stop) Freeze() { s.frozen = true }

// Unfreeze makes the stop modifiable again.
func (s *Stop) Unfreeze() { s.frozen = false }

func (s *Stop) PassengersToBoard() []*Trip   { return s.passengersToBoard }
func (s *Stop) BoardingPassengers() []*Trip  { return s.boardingPassengers }
func (s *Stop) BoardedPassengers() []*Trip   { return s.boardedPassengers }
func (s *Stop) PassengersToAlight() []*Trip  { return s.passengersToAlight }
func (s *Stop) AlightingPassengers() []*Trip { return s.alightingPassengers }
func (s *Stop) AlightedPassengers() []*Trip  { return s.alightedPassengers }

// AddPassengerToBoard plans a pickup of the trip at this stop.
func (s *Stop) AddPassengerToBoard(t *Trip) {
	s.passengersToBoard = append(s.passengersToBoard, t)
}

// AddPassengerToAlight plans a dropoff of the trip at this stop.
func (s *Stop) AddPassengerToAlight(t *Trip) {
	s.passengersToAlight = append(s.passengersToAlight, t)
}

// InitiateBoarding moves the trip from passengers to board to boarding.
func (s *Stop) InitiateBoarding(t *Trip) error {
	var err error
	s.passengersToBoard, err = removeTrip(s.passengersToBoard, t, "passengers to board")
	if err != nil {
		return err
	}
	s.boardingPassengers = append(s.boardingPassengers, t)
	return nil
}

// Board moves the trip from boarding to boarded.
func (s *Stop) Board(t *Trip) error {
	var err error
	s.boardingPassengers, err = removeTrip(s.boardingPassengers, t, "boarding passengers")
	if err != nil {
		return err
	}
	s.boardedPassengers = append(s.boardedPassengers, t)
	return nil
}

// InitiateAlighting moves the trip from passengers to alight to alighting.
func (s *Stop) InitiateAlighting(t *Trip) error {
	var err error
	s.passengersToAlight, err = removeTrip(s.passengersToAlight, t, "passengers to alight")
	if err != nil {
		return err
	}
	s.alightingPassengers = append(s.alightingPassengers, t)
	return nil
}

// Alight moves the trip from alighting to alighted.
func (s *Stop) Alight(t *Trip) error {
	var err error
	s.alightingPassengers, err = removeTrip(s.alightingPassengers, t, "alighting passengers")
	if err != nil {
		return err
	}
	s.alightedPassengers = append(s.alightedPassengers, t)
	return nil
}

func (s *Stop) String() string {
	return fmt.Sprintf("stop %s [%v, %v]", s.location, s.arrivalTime, s.departureTime)
}

func removeTrip(trips []*Trip, t *Trip, list string) ([]*Trip, error) {
	for i, c := range trips {
		if c == t {
			return append(trips[:i], trips[i+1:]...), nil
		}
	}
	return trips, fmt.Errorf("trip %s not found in %s", t.ID, list)
}
