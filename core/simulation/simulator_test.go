package simulation

import (
	"context"
	"testing"

	"github.com/openfleet/dispatchsim/core/dispatch"
	"github.com/openfleet/dispatchsim/core/model"
	"github.com/openfleet/dispatchsim/core/optimization"
	"github.com/openfleet/dispatchsim/core/statemachine"
	"github.com/openfleet/dispatchsim/core/travel"
	"github.com/openfleet/dispatchsim/internal/eventbus"
)

func newGreedyEnvironment(t *testing.T, durations map[string]map[string]float64) *Environment {
	t.Helper()
	strategy := dispatch.NewGreedyDispatcher(durations, nil)
	opt, err := optimization.New(optimization.Config{}, strategy, nil, nil)
	if err != nil {
		t.Fatalf("optimization: %v", err)
	}
	return NewEnvironment(opt, travel.NewMatrixTravelTimes(durations), nil, nil)
}

func TestSimulatorRunsSingleTripToCompletion(t *testing.T) {
	durations := map[string]map[string]float64{
		"depot": {"A": 100},
		"A":     {"B": 200},
	}
	env := newGreedyEnvironment(t, durations)
	sim := NewSimulator(env, nil, nil, nil, 0)

	start := model.NewStop(0, 0, model.NewLabelLocation("depot"))
	vehicle := model.NewVehicle("v1", 0, 1000, start, 4, 0, "shuttle", false)
	sim.AddVehicle(vehicle, model.NewRoute(vehicle), 0)

	trip := model.NewTrip(model.Request{
		ID:           "t1",
		Origin:       model.NewLabelLocation("A"),
		Destination:  model.NewLabelLocation("B"),
		NbPassengers: 1,
		DueTime:      10000,
	})
	trip.AssignLegs([]*model.Leg{model.NewLeg(model.Request{
		ID:          "t1-leg",
		Origin:      model.NewLabelLocation("A"),
		Destination: model.NewLabelLocation("B"),
	}, trip.ID)})
	sim.AddTrip(trip)

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if trip.Status() != statemachine.TripComplete {
		t.Fatalf("trip status: %v", trip.Status())
	}
	if vehicle.Status() != statemachine.VehicleComplete {
		t.Fatalf("vehicle status: %v", vehicle.Status())
	}

	leg := trip.PreviousLegs()[0]
	if bt, ok := leg.BoardingTime(); !ok || bt != 100 {
		t.Fatalf("boarding time: %v %v", bt, ok)
	}
	if at, ok := leg.AlightingTime(); !ok || at != 310 {
		t.Fatalf("alighting time: %v %v", at, ok)
	}
	if leg.AssignedVehicleID() != "v1" {
		t.Fatalf("assigned vehicle: %s", leg.AssignedVehicleID())
	}
	if len(env.NonAssignedTrips()) != 0 {
		t.Fatal("trip still waiting for assignment")
	}
	// The last processed event is the pending completion at the end time.
	if env.CurrentTime() != 1000 {
		t.Fatalf("final time: %v", env.CurrentTime())
	}
}

func TestSimulatorDropsStaleCompletionWhileEnRoute(t *testing.T) {
	durations := map[string]map[string]float64{
		"depot": {"A": 100},
		"A":     {"B": 200},
	}
	env := newGreedyEnvironment(t, durations)
	sim := NewSimulator(env, nil, nil, nil, 0)

	// The end-of-shift completion is scheduled for t=150, but the optimizer
	// extends the route first: the completion pops while the vehicle is en
	// route and must not abort the run.
	start := model.NewStop(0, 0, model.NewLabelLocation("depot"))
	vehicle := model.NewVehicle("v1", 0, 150, start, 4, 0, "shuttle", true)
	sim.AddVehicle(vehicle, model.NewRoute(vehicle), 0)

	trip := model.NewTrip(model.Request{
		ID:          "t1",
		Origin:      model.NewLabelLocation("A"),
		Destination: model.NewLabelLocation("B"),
	})
	trip.AssignLegs([]*model.Leg{model.NewLeg(model.Request{
		ID:          "t1-leg",
		Origin:      model.NewLabelLocation("A"),
		Destination: model.NewLabelLocation("B"),
	}, trip.ID)})
	sim.AddTrip(trip)

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if trip.Status() != statemachine.TripComplete {
		t.Fatalf("trip status: %v", trip.Status())
	}
	if vehicle.Status() != statemachine.VehicleComplete {
		t.Fatalf("vehicle status: %v", vehicle.Status())
	}
	// The dropped completion is rescheduled when the vehicle idles again.
	if env.CurrentTime() != 310 {
		t.Fatalf("final time: %v", env.CurrentTime())
	}
}

func TestSimulatorReusesVehicleForSequentialTrips(t *testing.T) {
	durations := map[string]map[string]float64{
		"depot": {"A": 100},
		"A":     {"B": 200, "C": 120},
		"B":     {"A": 150},
	}
	env := newGreedyEnvironment(t, durations)
	sim := NewSimulator(env, nil, nil, nil, 0)

	start := model.NewStop(0, 0, model.NewLabelLocation("depot"))
	vehicle := model.NewVehicle("v1", 0, 1000, start, 4, 0, "shuttle", true)
	sim.AddVehicle(vehicle, model.NewRoute(vehicle), 0)

	trips := []*model.Trip{}
	for _, tc := range []struct {
		id, origin, dest string
		release          float64
	}{
		{"t1", "A", "B", 0},
		{"t2", "A", "C", 400},
	} {
		trip := model.NewTrip(model.Request{
			ID:          tc.id,
			Origin:      model.NewLabelLocation(tc.origin),
			Destination: model.NewLabelLocation(tc.dest),
			ReleaseTime: tc.release,
		})
		trip.AssignLegs([]*model.Leg{model.NewLeg(model.Request{
			ID:          tc.id + "-leg",
			Origin:      model.NewLabelLocation(tc.origin),
			Destination: model.NewLabelLocation(tc.dest),
		}, trip.ID)})
		trips = append(trips, trip)
		sim.AddTrip(trip)
	}

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, trip := range trips {
		if trip.Status() != statemachine.TripComplete {
			t.Fatalf("trip %s status: %v", trip.ID, trip.Status())
		}
		if got := trip.PreviousLegs()[0].AssignedVehicleID(); got != "v1" {
			t.Fatalf("trip %s served by %s", trip.ID, got)
		}
	}

	// A reusable vehicle goes back to waiting after its last dropoff and
	// serves the later trip from where it stands.
	second := trips[1].PreviousLegs()[0]
	if bt, ok := second.BoardingTime(); !ok || bt != 550 {
		t.Fatalf("second boarding time: %v %v", bt, ok)
	}
	if at, ok := second.AlightingTime(); !ok || at != 680 {
		t.Fatalf("second alighting time: %v %v", at, ok)
	}
	if vehicle.Status() != statemachine.VehicleComplete {
		t.Fatalf("vehicle status: %v", vehicle.Status())
	}
	if env.CurrentTime() != 1000 {
		t.Fatalf("final time: %v", env.CurrentTime())
	}
}

func TestSimulatorServesTwoTripsWithTwoVehicles(t *testing.T) {
	durations := map[string]map[string]float64{
		"depot": {"A": 100, "C": 50},
		"A":     {"B": 200},
		"C":     {"D": 80},
	}
	env := newGreedyEnvironment(t, durations)
	sim := NewSimulator(env, nil, nil, nil, 0)

	for _, id := range []string{"v1", "v2"} {
		start := model.NewStop(0, 0, model.NewLabelLocation("depot"))
		vehicle := model.NewVehicle(id, 0, 2000, start, 4, 0, "shuttle", false)
		sim.AddVehicle(vehicle, model.NewRoute(vehicle), 0)
	}

	trips := []*model.Trip{}
	for _, tc := range []struct{ id, origin, dest string }{
		{"t1", "A", "B"},
		{"t2", "C", "D"},
	} {
		trip := model.NewTrip(model.Request{
			ID:           tc.id,
			Origin:       model.NewLabelLocation(tc.origin),
			Destination:  model.NewLabelLocation(tc.dest),
			NbPassengers: 1,
		})
		trip.AssignLegs([]*model.Leg{model.NewLeg(model.Request{
			ID:          tc.id + "-leg",
			Origin:      model.NewLabelLocation(tc.origin),
			Destination: model.NewLabelLocation(tc.dest),
		}, trip.ID)})
		trips = append(trips, trip)
		sim.AddTrip(trip)
		// A pending rejection is a no-op once the trip is assigned.
		sim.Queue().Push(NewPassengerRejected(trip, sim.Queue(), 5000))
	}

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, trip := range trips {
		if trip.Status() != statemachine.TripComplete {
			t.Fatalf("trip %s status: %v", trip.ID, trip.Status())
		}
	}
	v1 := trips[0].PreviousLegs()[0].AssignedVehicleID()
	v2 := trips[1].PreviousLegs()[0].AssignedVehicleID()
	if v1 == v2 {
		t.Fatalf("both trips served by %s", v1)
	}
}

func TestSimulatorRejectsUnservedTrip(t *testing.T) {
	env := newGreedyEnvironment(t, nil)
	sim := NewSimulator(env, nil, nil, nil, 0)

	trip := model.NewTrip(model.Request{
		ID:          "t1",
		Origin:      model.NewLabelLocation("A"),
		Destination: model.NewLabelLocation("B"),
		DueTime:     50,
	})
	trip.AssignLegs([]*model.Leg{model.NewLeg(model.Request{ID: "t1-leg"}, trip.ID)})
	sim.AddTrip(trip)
	sim.Queue().Push(NewPassengerRejected(trip, sim.Queue(), trip.DueTime))

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if trip.Status() != statemachine.TripRejected {
		t.Fatalf("trip status: %v", trip.Status())
	}
	if len(env.NonAssignedTrips()) != 0 {
		t.Fatal("rejected trip still waiting for assignment")
	}
}

func TestSimulatorStopsAtTimeLimit(t *testing.T) {
	env := NewEnvironment(nil, nil, nil, nil)
	sim := NewSimulator(env, nil, nil, nil, 10)

	var processed []string
	sim.Queue().Push(&stubEvent{baseEvent: baseEvent{name: "early", time: 5, priority: StandardPriority}, processed: &processed})
	sim.Queue().Push(&stubEvent{baseEvent: baseEvent{name: "late", time: 50, priority: StandardPriority}, processed: &processed})

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(processed) != 1 || processed[0] != "early" {
		t.Fatalf("processed: %v", processed)
	}
}

func TestSimulatorPublishesProgress(t *testing.T) {
	env := NewEnvironment(nil, nil, nil, nil)
	bus := eventbus.NewWithBuffer[Progress](16)
	sub := bus.Subscribe()
	sim := NewSimulator(env, nil, nil, bus, 0)

	sim.Queue().Push(newStubEvent("tick", 1, StandardPriority))
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	bus.Close()

	p, ok := <-sub
	if !ok {
		t.Fatal("no progress published")
	}
	if p.Event != "tick" || p.Time != 1 {
		t.Fatalf("progress: %+v", p)
	}
}

func TestSimulatorHonoursCancellation(t *testing.T) {
	env := NewEnvironment(nil, nil, nil, nil)
	sim := NewSimulator(env, nil, nil, nil, 0)
	sim.Queue().Push(newStubEvent("tick", 1, StandardPriority))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sim.Run(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
