package simulation

import (
	"fmt"
	"math"

	"github.com/openfleet/dispatchsim/core/model"
	"github.com/openfleet/dispatchsim/core/statemachine"
)

// PassengerRelease introduces a trip into the environment at its release time
// and triggers an optimize cycle for it.
type PassengerRelease struct {
	baseEvent
	trip *model.Trip
}

func NewPassengerRelease(trip *model.Trip, q *Queue) *PassengerRelease {
	return &PassengerRelease{
		baseEvent: baseEvent{
			name:     statemachine.EventPassengerRelease,
			time:     trip.ReleaseTime,
			priority: StandardPriority,
			queue:    q,
		},
		trip: trip,
	}
}

func (e *PassengerRelease) Process(env *Environment) error {
	env.AddTrip(e.trip)
	env.AddNonAssignedTrip(e.trip)
	ScheduleOptimize(e.queue, env.CurrentTime(), false)
	return nil
}

// PassengerUpdate carries a dispatcher's assignment for one trip back into
// the live world. The legs reference snapshot entities.
type PassengerUpdate struct {
	AssignedVehicleID string
	TripID            string
	NextLegs          []*model.Leg
}

// PassengerAssignment applies an assignment to the live trip: its pending leg
// sequence is replaced by fresh copies of the planned legs and the trip moves
// to the assigned pool.
type PassengerAssignment struct {
	actionEvent
	update PassengerUpdate
	trip   *model.Trip
}

func NewPassengerAssignment(update PassengerUpdate, q *Queue) (*PassengerAssignment, error) {
	trip := q.Env().GetTripByID(update.TripID)
	if trip == nil {
		return nil, fmt.Errorf("assignment for unknown trip %s", update.TripID)
	}
	return &PassengerAssignment{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventPassengerAssignment,
				time:     q.Env().CurrentTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: trip.StateMachine(),
		},
		update: update,
		trip:   trip,
	}, nil
}

func (e *PassengerAssignment) Process(env *Environment) error {
	if env.GetVehicleByID(e.update.AssignedVehicleID) == nil {
		return fmt.Errorf("trip %s assigned to unknown vehicle %s",
			e.trip.ID, e.update.AssignedVehicleID)
	}

	if e.update.NextLegs != nil {
		// Fresh copies: the snapshot legs stay with the snapshot.
		ctx := model.NewCloneContext()
		e.trip.AssignLegs(ctx.CloneLegs(e.update.NextLegs))
	}

	env.RemoveNonAssignedTrip(e.trip.ID)
	env.AddAssignedTrip(e.trip)

	e.queue.Push(NewPassengerReady(e.trip, e.queue, math.Max(e.trip.ReadyTime, env.CurrentTime())))
	return nil
}

// PassengerReady marks the trip ready to board once its ready time is reached.
type PassengerReady struct {
	actionEvent
	trip *model.Trip
}

func NewPassengerReady(trip *model.Trip, q *Queue, time float64) *PassengerReady {
	return &PassengerReady{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventPassengerReady,
				time:     time,
				priority: StandardPriority,
				queue:    q,
			},
			machine: trip.StateMachine(),
		},
		trip: trip,
	}
}

func (e *PassengerReady) Process(env *Environment) error { return nil }

// PassengerToBoard starts the current leg of the trip and records the
// boarding time. The matching VehicleBoarded completes the exchange.
type PassengerToBoard struct {
	actionEvent
	trip *model.Trip
}

func NewPassengerToBoard(trip *model.Trip, q *Queue) *PassengerToBoard {
	return &PassengerToBoard{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventPassengerToBoard,
				time:     q.Env().CurrentTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: trip.StateMachine(),
		},
		trip: trip,
	}
}

func (e *PassengerToBoard) Process(env *Environment) error {
	if err := e.trip.StartNextLeg(); err != nil {
		return err
	}
	e.trip.CurrentLeg().SetBoardingTime(env.CurrentTime())
	e.queue.Push(NewVehicleBoarded(e.trip, e.queue))
	return nil
}

// PassengerAlighting finishes the current leg of the trip. A trip with more
// legs becomes ready for its next vehicle; otherwise it completes.
type PassengerAlighting struct {
	actionEvent
	trip *model.Trip
}

func NewPassengerAlighting(trip *model.Trip, q *Queue) *PassengerAlighting {
	return &PassengerAlighting{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventPassengerAlighting,
				time:     q.Env().CurrentTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: trip.StateMachine(),
		},
		trip: trip,
	}
}

func (e *PassengerAlighting) Process(env *Environment) error {
	leg := e.trip.CurrentLeg()
	if leg == nil {
		return fmt.Errorf("trip %s alights without a current leg", e.trip.ID)
	}
	if err := e.trip.FinishCurrentLeg(); err != nil {
		return err
	}
	leg.SetAlightingTime(env.CurrentTime())
	e.queue.Push(NewVehicleAlighted(leg, e.trip, e.queue))

	if len(e.trip.NextLegs()) == 0 {
		e.queue.Push(NewPassengerComplete(e.trip, e.queue))
	} else {
		e.queue.Push(NewPassengerReady(e.trip, e.queue, env.CurrentTime()))
	}
	return nil
}

// PassengerComplete retires the trip.
type PassengerComplete struct {
	actionEvent
	trip *model.Trip
}

func NewPassengerComplete(trip *model.Trip, q *Queue) *PassengerComplete {
	return &PassengerComplete{
		actionEvent: actionEvent{
			baseEvent: baseEvent{
				name:     statemachine.EventPassengerComplete,
				time:     q.Env().CurrentTime(),
				priority: StandardPriority,
				queue:    q,
			},
			machine: trip.StateMachine(),
		},
		trip: trip,
	}
}

func (e *PassengerComplete) Process(env *Environment) error {
	env.Log().Debugf("trip %s complete at %v", e.trip.ID, e.time)
	return nil
}

// PassengerRejected rejects a trip that is still unassigned at its due time.
// It is conditional: a trip assigned in the meantime is left alone, so the
// event only advances the machine when the rejection actually applies.
type PassengerRejected struct {
	baseEvent
	trip *model.Trip
}

func NewPassengerRejected(trip *model.Trip, q *Queue, time float64) *PassengerRejected {
	return &PassengerRejected{
		baseEvent: baseEvent{
			name:     statemachine.EventPassengerRejected,
			time:     time,
			priority: LowPriority,
			queue:    q,
		},
		trip: trip,
	}
}

func (e *PassengerRejected) Process(env *Environment) error {
	if e.trip.Status() != statemachine.TripReleased {
		return nil
	}
	if err := e.trip.StateMachine().Apply(statemachine.EventPassengerRejected); err != nil {
		return err
	}
	env.RemoveNonAssignedTrip(e.trip.ID)
	env.Log().Infof("trip %s rejected: no assignment by %v", e.trip.ID, e.time)
	return nil
}
