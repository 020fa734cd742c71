package simulation

import (
	"context"
	"fmt"

	"github.com/openfleet/dispatchsim/core/logger"
	"github.com/openfleet/dispatchsim/core/metrics"
	"github.com/openfleet/dispatchsim/core/model"
	"github.com/openfleet/dispatchsim/core/statemachine"
	"github.com/openfleet/dispatchsim/internal/eventbus"
)

// Progress is published on the bus after each processed event.
type Progress struct {
	Event    string
	Time     float64
	Priority int
	Owner    string
}

// Simulator owns the event loop: it pops events in deterministic order,
// advances the clock and the lifecycle machines, and processes each event to
// completion before the next one.
type Simulator struct {
	env     *Environment
	queue   *Queue
	log     logger.Logger
	sink    metrics.MetricsSink
	bus     *eventbus.Bus[Progress]
	maxTime float64
}

// NewSimulator creates a simulator around the environment. The sink and bus
// are optional; maxTime of zero or less means no time limit.
func NewSimulator(env *Environment, log logger.Logger, sink metrics.MetricsSink, bus *eventbus.Bus[Progress], maxTime float64) *Simulator {
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Simulator{
		env:     env,
		queue:   NewQueue(env),
		log:     log,
		sink:    sink,
		bus:     bus,
		maxTime: maxTime,
	}
}

// Queue returns the event queue of the run.
func (s *Simulator) Queue() *Queue { return s.queue }

// Env returns the environment of the run.
func (s *Simulator) Env() *Environment { return s.env }

// AddVehicle schedules the release of a vehicle with an optional initial
// route and an optional position update step.
func (s *Simulator) AddVehicle(v *model.Vehicle, route *model.Route, positionStep float64) {
	s.queue.Push(NewVehicleReady(v, route, positionStep, s.queue))
}

// AddTrip schedules the release of a trip.
func (s *Simulator) AddTrip(t *model.Trip) {
	s.queue.Push(NewPassengerRelease(t, s.queue))
}

// Run processes events until the queue drains, the time limit is reached or
// the context is cancelled. Any event error is fatal and aborts the run; the
// environment is left as of the last successfully processed event.
func (s *Simulator) Run(ctx context.Context) error {
	for !s.queue.IsEmpty() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ev, err := s.queue.Pop()
		if err != nil {
			return err
		}
		if s.maxTime > 0 && ev.Time() > s.maxTime {
			s.log.Infof("time limit %v reached, %d events left unprocessed", s.maxTime, s.queue.Len()+1)
			return nil
		}

		if err := s.env.SetCurrentTime(ev.Time()); err != nil {
			return fmt.Errorf("event %s: %w", ev.Name(), err)
		}

		owner := eventOwner(ev)
		if ae, ok := ev.(ActionableEvent); ok {
			if err := ae.Machine().Apply(ev.Name()); err != nil {
				return fmt.Errorf("event %s at %v: %w", ev.Name(), ev.Time(), err)
			}
		}

		if err := ev.Process(s.env); err != nil {
			return fmt.Errorf("process %s at %v: %w", ev.Name(), ev.Time(), err)
		}

		s.log.Debugw("event processed", map[string]any{
			"event": ev.Name(),
			"time":  ev.Time(),
			"owner": owner,
		})
		s.record(ev, owner)
		if s.bus != nil {
			s.bus.Publish(Progress{
				Event:    ev.Name(),
				Time:     ev.Time(),
				Priority: ev.Priority(),
				Owner:    owner,
			})
		}
	}
	return nil
}

func (s *Simulator) record(ev Event, owner string) {
	if err := s.sink.RecordEvent(metrics.EventRecord{
		Name:     ev.Name(),
		Time:     ev.Time(),
		Priority: ev.Priority(),
		Owner:    owner,
	}); err != nil {
		s.log.Warnf("record event: %v", err)
	}
	if rec, ok := s.sink.(metrics.SimulationTimeRecorder); ok {
		if err := rec.RecordSimulationTime(ev.Time()); err != nil {
			s.log.Warnf("record simulation time: %v", err)
		}
	}

	switch e := ev.(type) {
	case *PassengerComplete:
		s.recordTripStatus(e.trip, ev.Time())
	case *PassengerRejected:
		if e.trip.Status() == statemachine.TripRejected {
			s.recordTripStatus(e.trip, ev.Time())
		}
	case *Optimize:
		if rec, ok := s.sink.(metrics.FleetRecorder); ok {
			stats := s.env.Statistics()
			if err := rec.RecordFleetState(metrics.FleetRecord{
				NbVehicles:       stats.NbVehicles,
				NbTrips:          stats.NbTrips,
				NbNonAssigned:    stats.NbNonAssigned,
				MeanOccupancy:    stats.MeanOccupancy,
				HighestOccupancy: stats.HighestOccupancy,
				Time:             ev.Time(),
			}); err != nil {
				s.log.Warnf("record fleet state: %v", err)
			}
		}
	}
}

func (s *Simulator) recordTripStatus(t *model.Trip, time float64) {
	rec, ok := s.sink.(metrics.TripRecorder)
	if !ok {
		return
	}
	if err := rec.RecordTripStatus(metrics.TripRecord{
		TripID: t.ID,
		Status: t.Status().String(),
		Time:   time,
	}); err != nil {
		s.log.Warnf("record trip status: %v", err)
	}
}
