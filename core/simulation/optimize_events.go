package simulation

import (
	"fmt"
	"math"

	"github.com/openfleet/dispatchsim/core/model"
	"github.com/openfleet/dispatchsim/core/optimization"
	"github.com/openfleet/dispatchsim/core/statemachine"
)

// Optimize runs one optimize cycle: snapshot the environment, freeze the
// imminent departures, hand the snapshot to the dispatcher and schedule the
// application of the result. It runs at low priority so that every state
// change of its timestamp is visible to the snapshot.
type Optimize struct {
	actionEvent
}

// NewOptimize creates an optimize event. The time is rounded up to the next
// batch boundary when batching is configured.
func NewOptimize(time float64, q *Queue) *Optimize {
	if opt := q.Env().Optimization(); opt != nil {
		if batch := opt.BatchSize(); batch > 0 {
			time = time + math.Mod(batch-math.Mod(time, batch), batch)
		}
	}
	return &Optimize{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventOptimize,
				time:     time,
				priority: LowPriority,
				queue:    q,
			},
			machine: q.Env().Optimization().StateMachine(),
		},
	}
}

// ScheduleOptimize pushes an optimize event for the given time. An optimize
// event already pending at the same (batch-rounded) time absorbs the request
// unless multiple optimize events are configured or the insertion is forced.
func ScheduleOptimize(q *Queue, time float64, force bool) {
	opt := q.Env().Optimization()
	if opt == nil {
		return
	}
	ev := NewOptimize(time, q)
	if !force && !opt.MultipleOptimizeEvents() &&
		q.IsEventInQueue(statemachine.EventOptimize, ev.Time(), "") {
		return
	}
	q.Push(ev)
}

func (e *Optimize) Process(env *Environment) error {
	opt := env.Optimization()
	if opt == nil {
		return fmt.Errorf("optimize event without an optimization")
	}

	if !opt.NeedToOptimize(env.Statistics()) {
		e.queue.Push(NewEnvironmentIdle(e.queue))
		return nil
	}

	state := env.NewState()
	state.FreezeRoutesForInterval(opt.FreezeInterval())
	result, err := opt.Dispatch(state)
	state.UnfreezeRoutes()
	if err != nil {
		if optimization.IsInfeasible(err) {
			env.Log().Warnf("optimization at %v skipped: %v", e.time, err)
			e.queue.Push(NewEnvironmentIdle(e.queue))
			return nil
		}
		return err
	}

	e.queue.Push(NewEnvironmentUpdate(result, e.queue))
	return nil
}

// EnvironmentUpdate translates an optimization result into passenger and
// vehicle events carrying the snapshot changes back into the live world.
type EnvironmentUpdate struct {
	actionEvent
	result *optimization.Result
}

func NewEnvironmentUpdate(result *optimization.Result, q *Queue) *EnvironmentUpdate {
	return &EnvironmentUpdate{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventEnvironmentUpdate,
				time:     q.Env().CurrentTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: q.Env().Optimization().StateMachine(),
		},
		result: result,
	}
}

func (e *EnvironmentUpdate) Process(env *Environment) error {
	modifiedTripIDs := make(map[string]bool, len(e.result.ModifiedTrips()))

	for _, trip := range e.result.ModifiedTrips() {
		modifiedTripIDs[trip.ID] = true

		next := trip.NextLegs()
		if len(next) == 0 {
			return fmt.Errorf("modified trip %s has no next leg", trip.ID)
		}
		assignment, err := NewPassengerAssignment(PassengerUpdate{
			AssignedVehicleID: next[0].AssignedVehicleID(),
			TripID:            trip.ID,
			NextLegs:          next,
		}, e.queue)
		if err != nil {
			return err
		}
		e.queue.Push(assignment)
	}

	for _, vehicle := range e.result.ModifiedVehicles() {
		route := e.result.State().RouteByVehicleID(vehicle.ID())
		if route == nil {
			return fmt.Errorf("modified vehicle %s has no snapshot route", vehicle.ID())
		}

		var toBoard []*model.Trip
		departure := math.NaN()
		if cur := route.CurrentStop(); cur != nil {
			for _, trip := range cur.PassengersToBoard() {
				if modifiedTripIDs[trip.ID] {
					toBoard = append(toBoard, trip)
				}
			}
			departure = cur.DepartureTime()
		}

		var assignedLegs []*model.Leg
		for _, leg := range route.AssignedLegs() {
			if modifiedTripIDs[leg.TripID()] {
				assignedLegs = append(assignedLegs, leg)
			}
		}

		e.queue.Push(NewVehicleNotification(RouteUpdate{
			VehicleID:                            vehicle.ID(),
			CurrentStopModifiedPassengersToBoard: toBoard,
			NextStops:                            route.NextStops(),
			CurrentStopDepartureTime:             departure,
			ModifiedAssignedLegs:                 assignedLegs,
		}, e.queue))
	}

	e.queue.Push(NewEnvironmentIdle(e.queue))
	return nil
}

// EnvironmentIdle closes the optimize cycle.
type EnvironmentIdle struct {
	actionEvent
}

func NewEnvironmentIdle(q *Queue) *EnvironmentIdle {
	return &EnvironmentIdle{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventEnvironmentIdle,
				time:     q.Env().CurrentTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: q.Env().Optimization().StateMachine(),
		},
	}
}

func (e *EnvironmentIdle) Process(env *Environment) error { return nil }
