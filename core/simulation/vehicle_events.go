package simulation

import (
	"fmt"
	"math"

	"github.com/openfleet/dispatchsim/core/model"
	"github.com/openfleet/dispatchsim/core/statemachine"
)

// VehicleReady introduces a vehicle into the environment at its release time.
type VehicleReady struct {
	baseEvent
	vehicle      *model.Vehicle
	route        *model.Route
	positionStep float64
}

// NewVehicleReady schedules the release of a vehicle. A nil route means the
// vehicle starts with an empty default route at its start stop. A positive
// positionStep additionally schedules periodic position updates.
func NewVehicleReady(vehicle *model.Vehicle, route *model.Route, positionStep float64, q *Queue) *VehicleReady {
	return &VehicleReady{
		baseEvent: baseEvent{
			name:     statemachine.EventVehicleReady,
			time:     vehicle.ReleaseTime(),
			priority: StandardPriority,
			queue:    q,
		},
		vehicle:      vehicle,
		route:        route,
		positionStep: positionStep,
	}
}

func (e *VehicleReady) Process(env *Environment) error {
	env.AddVehicle(e.vehicle)

	if e.route == nil {
		e.route = model.NewRoute(e.vehicle)
	}
	env.AddRoute(e.route)

	e.queue.Push(NewVehicleWaiting(e.route, e.queue, env.CurrentTime()))

	if coords := env.Coordinates(); coords != nil {
		e.vehicle.SetPolylines(coords.UpdatePolylines(e.route))
		if e.positionStep > 0 {
			e.queue.Push(NewVehicleUpdatePosition(
				e.vehicle, e.route, e.time+e.positionStep, e.positionStep, e.queue))
		}
	}
	return nil
}

// VehicleWaiting decides what an idle vehicle does next: board waiting
// passengers, leave for its next stop, or wait for completion. It also
// triggers an optimize cycle, since an idle vehicle is an opportunity for the
// optimizer.
type VehicleWaiting struct {
	actionEvent
	route *model.Route
}

func NewVehicleWaiting(route *model.Route, q *Queue, time float64) *VehicleWaiting {
	return &VehicleWaiting{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventVehicleWaiting,
				time:     time,
				priority: StandardPriority,
				queue:    q,
			},
			machine: route.Vehicle().StateMachine(),
		},
		route: route,
	}
}

func (e *VehicleWaiting) Process(env *Environment) error {
	ScheduleOptimize(e.queue, env.CurrentTime(), false)

	switch {
	case len(e.route.RequestsToPickup()) > 0:
		e.queue.Push(NewVehicleBoarding(e.route, e.queue))
	case len(e.route.NextStops()) > 0:
		if cur := e.route.CurrentStop(); cur != nil && cur.DepartureTime() > env.CurrentTime() {
			e.queue.Push(NewVehicleWaiting(e.route, e.queue, cur.DepartureTime()))
		} else {
			e.queue.Push(NewVehicleDeparture(e.route, e.queue))
		}
	default:
		// Nothing planned. The vehicle stays idle until its end time unless
		// an optimize cycle extends its route before then.
		scheduleVehicleComplete(e.route, e.queue, completeTime(e.route, env), false)
	}
	return nil
}

// VehicleBoarding starts the boarding of every passenger waiting at the
// current stop.
type VehicleBoarding struct {
	actionEvent
	route *model.Route
}

func NewVehicleBoarding(route *model.Route, q *Queue) *VehicleBoarding {
	return &VehicleBoarding{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventVehicleBoarding,
				time:     q.Env().CurrentTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: route.Vehicle().StateMachine(),
		},
		route: route,
	}
}

func (e *VehicleBoarding) Process(env *Environment) error {
	// InitiateBoarding mutates the pickup list, iterate over a copy.
	waiting := append([]*model.Trip(nil), e.route.RequestsToPickup()...)
	for _, trip := range waiting {
		if err := e.route.InitiateBoarding(trip); err != nil {
			return err
		}
		e.queue.Push(NewPassengerToBoard(trip, e.queue))
	}
	return nil
}

// VehicleDeparture makes the vehicle leave its current stop at the planned
// departure time and schedules the arrival at the next stop.
type VehicleDeparture struct {
	actionEvent
	route *model.Route
}

func NewVehicleDeparture(route *model.Route, q *Queue) *VehicleDeparture {
	return &VehicleDeparture{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventVehicleDeparture,
				time:     route.CurrentStop().DepartureTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: route.Vehicle().StateMachine(),
		},
		route: route,
	}
}

func (e *VehicleDeparture) Process(env *Environment) error {
	next := e.route.NextStops()
	if len(next) == 0 {
		return fmt.Errorf("vehicle %s departs with no next stop", e.route.Vehicle().ID())
	}

	arrivalTime := next[0].ArrivalTime()
	if tt := env.TravelTimes(); tt != nil {
		arrivalTime = tt.GetExpectedArrivalTime(e.route.CurrentStop(), next[0], e.route.Vehicle())
	}

	e.route.Depart()
	e.queue.Push(NewVehicleArrival(e.route, e.queue, arrivalTime))
	return nil
}

// VehicleArrival makes the vehicle reach its next stop. The actual arrival
// time may differ from the planned one; the remaining stop times are shifted
// by the difference, never below a stop's minimum departure time.
type VehicleArrival struct {
	actionEvent
	route *model.Route
}

func NewVehicleArrival(route *model.Route, q *Queue, arrivalTime float64) *VehicleArrival {
	return &VehicleArrival{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventVehicleArrival,
				time:     arrivalTime,
				priority: StandardPriority,
				queue:    q,
			},
			machine: route.Vehicle().StateMachine(),
		},
		route: route,
	}
}

func (e *VehicleArrival) Process(env *Environment) error {
	if err := e.updateStopTimes(env.CurrentTime()); err != nil {
		return err
	}
	if err := e.route.Arrive(); err != nil {
		return err
	}

	if len(e.route.NextStops()) == 0 && !e.route.Vehicle().Reusable() {
		scheduleVehicleComplete(e.route, e.queue, env.CurrentTime(), true)
	}

	toAlight := append([]*model.Trip(nil), e.route.CurrentStop().PassengersToAlight()...)
	for _, trip := range toAlight {
		if !legInList(trip.CurrentLeg(), e.route.OnboardLegs()) {
			continue
		}
		if err := e.route.InitiateAlighting(trip); err != nil {
			return err
		}
		e.queue.Push(NewPassengerAlighting(trip, e.queue))
	}

	if len(toAlight) == 0 {
		e.queue.Push(NewVehicleWaiting(e.route, e.queue, env.CurrentTime()))
	}
	return nil
}

func (e *VehicleArrival) updateStopTimes(arrivalTime float64) error {
	next := e.route.NextStops()
	if len(next) == 0 {
		return fmt.Errorf("vehicle %s arrives with no next stop", e.route.Vehicle().ID())
	}
	delta := arrivalTime - next[0].ArrivalTime()
	for _, stop := range next {
		stop.SetArrivalTime(stop.ArrivalTime() + delta)
		newDeparture := stop.DepartureTime() + delta
		if min, ok := stop.MinDepartureTime(); ok && newDeparture < min {
			newDeparture = min
		}
		delta = newDeparture - stop.DepartureTime()
		if err := stop.SetDepartureTime(newDeparture); err != nil {
			return err
		}
	}
	return nil
}

// RouteUpdate carries a dispatcher's plan for one vehicle back into the live
// world. Nil slices mean "unchanged"; the departure time is NaN when unset.
type RouteUpdate struct {
	VehicleID                            string
	CurrentStopModifiedPassengersToBoard []*model.Trip
	NextStops                            []*model.Stop
	CurrentStopDepartureTime             float64
	ModifiedAssignedLegs                 []*model.Leg
}

// VehicleNotification applies a route update to the live route of a vehicle.
// The update references snapshot entities; everything is remapped to the live
// trips and legs before it touches the route.
type VehicleNotification struct {
	baseEvent
	update RouteUpdate
}

func NewVehicleNotification(update RouteUpdate, q *Queue) *VehicleNotification {
	return &VehicleNotification{
		baseEvent: baseEvent{
			name:     statemachine.EventVehicleNotification,
			time:     q.Env().CurrentTime(),
			priority: StandardPriority,
			queue:    q,
		},
		update: update,
	}
}

func (e *VehicleNotification) Process(env *Environment) error {
	vehicle := env.GetVehicleByID(e.update.VehicleID)
	if vehicle == nil {
		return fmt.Errorf("route update for unknown vehicle %s", e.update.VehicleID)
	}
	route := env.GetRouteByVehicleID(e.update.VehicleID)
	if route == nil {
		return fmt.Errorf("vehicle %s has no route to update", e.update.VehicleID)
	}

	wake := false

	if e.update.NextStops != nil {
		// Clone the snapshot stops with the context seeded with the live
		// trips: the copies then reference live entities, not snapshot ones.
		ctx := model.NewCloneContext()
		for _, t := range env.Trips() {
			ctx.Trips[t.ID] = t
		}
		route.SetNextStops(ctx.CloneStops(e.update.NextStops))
		wake = true
	}

	if e.update.CurrentStopModifiedPassengersToBoard != nil && route.CurrentStop() != nil {
		for _, snapshot := range e.update.CurrentStopModifiedPassengersToBoard {
			trip := env.GetTripByID(snapshot.ID)
			if trip == nil {
				return fmt.Errorf("route update references unknown trip %s", snapshot.ID)
			}
			if !tripInList(trip, route.CurrentStop().PassengersToBoard()) {
				route.CurrentStop().AddPassengerToBoard(trip)
			}
		}
	}

	if !math.IsNaN(e.update.CurrentStopDepartureTime) && route.CurrentStop() != nil {
		if route.CurrentStop().DepartureTime() != e.update.CurrentStopDepartureTime {
			if err := route.CurrentStop().SetDepartureTime(e.update.CurrentStopDepartureTime); err != nil {
				return err
			}
			wake = true
		}
	}

	for _, snapshot := range e.update.ModifiedAssignedLegs {
		leg := env.GetLegByID(snapshot.ID)
		if leg == nil {
			return fmt.Errorf("route update references unknown leg %s", snapshot.ID)
		}
		if !route.HasAssignedLeg(leg.ID) {
			route.AssignLeg(leg)
		}
	}

	if coords := env.Coordinates(); coords != nil {
		vehicle.SetPolylines(coords.UpdatePolylines(route))
	}

	// An idle vehicle must re-evaluate its plan; a boarding, alighting or
	// en-route vehicle reaches a waiting decision through its own flow.
	if wake && vehicle.Status() == statemachine.VehicleIdle {
		e.queue.Push(NewVehicleWaiting(route, e.queue, env.CurrentTime()))
	}
	return nil
}

// VehicleBoarded completes the boarding of one trip. It advances the trip
// machine: the trip is on board from here on.
type VehicleBoarded struct {
	actionEvent
	trip  *model.Trip
	route *model.Route
}

func NewVehicleBoarded(trip *model.Trip, q *Queue) *VehicleBoarded {
	return &VehicleBoarded{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventVehicleBoarded,
				time:     q.Env().CurrentTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: trip.StateMachine(),
		},
		trip:  trip,
		route: q.Env().GetRouteByVehicleID(trip.CurrentLeg().AssignedVehicleID()),
	}
}

func (e *VehicleBoarded) Process(env *Environment) error {
	if e.route == nil {
		return fmt.Errorf("trip %s boards a vehicle without a route", e.trip.ID)
	}
	if err := e.route.Board(e.trip); err != nil {
		return err
	}

	if len(e.route.CurrentStop().BoardingPassengers()) == 0 {
		// Everyone is on board.
		e.queue.Push(NewVehicleWaiting(e.route, e.queue, env.CurrentTime()))
	} else if len(e.route.RequestsToPickup()) > 0 {
		e.queue.Push(NewVehicleBoarding(e.route, e.queue))
	}
	return nil
}

// VehicleAlighted completes the alighting of one leg at the current stop.
type VehicleAlighted struct {
	baseEvent
	leg   *model.Leg
	trip  *model.Trip
	route *model.Route
}

func NewVehicleAlighted(leg *model.Leg, trip *model.Trip, q *Queue) *VehicleAlighted {
	return &VehicleAlighted{
		baseEvent: baseEvent{
			name:     statemachine.EventVehicleAlighted,
			time:     q.Env().CurrentTime(),
			priority: StandardPriority,
			queue:    q,
		},
		leg:   leg,
		trip:  trip,
		route: q.Env().GetRouteByVehicleID(leg.AssignedVehicleID()),
	}
}

func (e *VehicleAlighted) Process(env *Environment) error {
	if e.route == nil {
		return fmt.Errorf("leg %s alights from a vehicle without a route", e.leg.ID)
	}
	if err := e.route.Alight(e.leg, e.trip); err != nil {
		return err
	}

	if len(e.route.CurrentStop().AlightingPassengers()) == 0 {
		// Everyone is off.
		e.queue.Push(NewVehicleWaiting(e.route, e.queue, env.CurrentTime()))
	}
	return nil
}

// VehicleUpdatePosition periodically interpolates the vehicle position. It
// reschedules itself until the vehicle completes.
type VehicleUpdatePosition struct {
	baseEvent
	vehicle *model.Vehicle
	route   *model.Route
	step    float64
}

func NewVehicleUpdatePosition(vehicle *model.Vehicle, route *model.Route, time, step float64, q *Queue) *VehicleUpdatePosition {
	return &VehicleUpdatePosition{
		baseEvent: baseEvent{
			name:     statemachine.EventVehicleUpdatePosition,
			time:     time,
			priority: StandardPriority,
			queue:    q,
		},
		vehicle: vehicle,
		route:   route,
		step:    step,
	}
}

func (e *VehicleUpdatePosition) Process(env *Environment) error {
	coords := env.Coordinates()
	if coords == nil {
		return nil
	}
	if pos := coords.UpdatePosition(e.vehicle, e.route, e.time); pos != nil {
		e.vehicle.SetPosition(pos)
	}
	if e.vehicle.Status() != statemachine.VehicleComplete && e.step > 0 {
		e.queue.Push(NewVehicleUpdatePosition(e.vehicle, e.route, e.time+e.step, e.step, e.queue))
	}
	return nil
}

// VehicleComplete retires an idle vehicle. A completion that fires while the
// vehicle is busy is stale (its route was extended after the completion was
// scheduled) and is dropped; the next waiting decision schedules a fresh one.
// It runs at low priority so that every other event of its timestamp settles
// first.
type VehicleComplete struct {
	baseEvent
	route *model.Route
}

func NewVehicleComplete(route *model.Route, q *Queue, time float64) *VehicleComplete {
	return &VehicleComplete{
		baseEvent: baseEvent{
			name:     statemachine.EventVehicleComplete,
			time:     time,
			priority: LowPriority,
			queue:    q,
		},
		route: route,
	}
}

// Owner identifies the vehicle for pending-event deduplication.
func (e *VehicleComplete) Owner() string { return e.route.Vehicle().ID() }

func (e *VehicleComplete) Process(env *Environment) error {
	vehicle := e.route.Vehicle()
	switch vehicle.Status() {
	case statemachine.VehicleComplete:
		return nil
	case statemachine.VehicleIdle:
		if err := vehicle.StateMachine().Apply(statemachine.EventVehicleComplete); err != nil {
			return err
		}
		env.Log().Debugf("vehicle %s complete at %v", vehicle.ID(), e.time)
	default:
		env.Log().Debugf("vehicle %s is %s at %v, completion dropped",
			vehicle.ID(), vehicle.Status(), e.time)
	}
	return nil
}

// scheduleVehicleComplete schedules a VehicleComplete unless one is already
// pending for the vehicle. A forced insertion bypasses the deduplication;
// arrival at a final stop retires a non-reusable vehicle immediately even
// when a completion at the end time is pending.
func scheduleVehicleComplete(route *model.Route, q *Queue, time float64, forced bool) {
	if forced || !q.IsEventInQueue(statemachine.EventVehicleComplete, AnyTime, route.Vehicle().ID()) {
		q.Push(NewVehicleComplete(route, q, time))
	}
}

func completeTime(route *model.Route, env *Environment) float64 {
	return math.Max(route.Vehicle().EndTime(), env.CurrentTime())
}

func tripInList(t *model.Trip, list []*model.Trip) bool {
	for _, c := range list {
		if c == t {
			return true
		}
	}
	return false
}

func legInList(l *model.Leg, list []*model.Leg) bool {
	if l == nil {
		return false
	}
	for _, c := range list {
		if c == l {
			return true
		}
	}
	return false
}
