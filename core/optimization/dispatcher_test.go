package optimization

import (
	"errors"
	"math"
	"testing"

	"github.com/openfleet/dispatchsim/core/model"
)

type stubDispatcher struct {
	fn    func(legs []*model.Leg, routes []*model.Route, currentTime float64, state *State) ([]*RoutePlan, error)
	calls int
}

func (d *stubDispatcher) Optimize(legs []*model.Leg, routes []*model.Route, currentTime float64, state *State) ([]*RoutePlan, error) {
	d.calls++
	return d.fn(legs, routes, currentTime, state)
}

func TestNewValidatesConfiguration(t *testing.T) {
	if _, err := New(Config{}, nil, nil, nil); err == nil {
		t.Fatal("nil dispatcher accepted")
	}
	if _, err := New(Config{FreezeIntervalSeconds: -1}, &stubDispatcher{}, nil, nil); err == nil {
		t.Fatal("negative freeze interval accepted")
	}
	opt, err := New(Config{BatchSeconds: 30, MultipleOptimizeEvents: true}, &stubDispatcher{}, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if opt.BatchSize() != 30 || !opt.MultipleOptimizeEvents() {
		t.Fatal("config not carried over")
	}
}

func TestDispatchSkipsEmptyInput(t *testing.T) {
	d := &stubDispatcher{fn: func([]*model.Leg, []*model.Route, float64, *State) ([]*RoutePlan, error) {
		return nil, errors.New("must not be called")
	}}
	opt, err := New(Config{}, d, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	state := NewState(0, nil, nil, nil, nil, nil)
	res, err := opt.Dispatch(state)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if d.calls != 0 {
		t.Fatal("strategy invoked with nothing to plan")
	}
	if len(res.ModifiedTrips()) != 0 || len(res.ModifiedVehicles()) != 0 {
		t.Fatal("empty round reported modifications")
	}
}

func TestDispatchAppliesRoutePlans(t *testing.T) {
	trip := newSnapshotTrip("t1", "A", "B")
	vehicle, route := newSnapshotVehicle("v1", 0)
	state := NewState(0,
		[]*model.Trip{trip}, nil, []*model.Trip{trip},
		[]*model.Vehicle{vehicle}, map[string]*model.Route{"v1": route})

	d := &stubDispatcher{fn: func(legs []*model.Leg, routes []*model.Route, currentTime float64, state *State) ([]*RoutePlan, error) {
		plan := NewRoutePlan(routes[0])
		plan.SetCurrentStopDepartureTime(100)
		plan.AppendNextStop("A", 200, 210)
		plan.AppendNextStop("B", 400, math.NaN())
		if err := plan.AssignLeg(legs[0]); err != nil {
			return nil, err
		}
		return []*RoutePlan{plan}, nil
	}}
	opt, err := New(Config{}, d, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	res, err := opt.Dispatch(state)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if route.CurrentStop().DepartureTime() != 100 {
		t.Fatalf("current stop departure: %v", route.CurrentStop().DepartureTime())
	}
	stops := route.NextStops()
	if len(stops) != 2 {
		t.Fatalf("next stops: %d", len(stops))
	}
	if !math.IsInf(stops[1].DepartureTime(), 1) {
		t.Fatalf("last stop departure must be open-ended, got %v", stops[1].DepartureTime())
	}
	if !route.HasAssignedLeg("t1-leg") {
		t.Fatal("leg not committed to the route")
	}
	if got := stops[0].PassengersToBoard(); len(got) != 1 || got[0] != trip {
		t.Fatal("trip not queued for boarding at the origin stop")
	}
	if got := stops[1].PassengersToAlight(); len(got) != 1 || got[0] != trip {
		t.Fatal("trip not queued for alighting at the destination stop")
	}
	if trip.NextLegs()[0].AssignedVehicleID() != "v1" {
		t.Fatal("leg not assigned to the vehicle")
	}
	if len(res.ModifiedTrips()) != 1 || res.ModifiedTrips()[0] != trip {
		t.Fatalf("modified trips: %v", res.ModifiedTrips())
	}
	if len(res.ModifiedVehicles()) != 1 || res.ModifiedVehicles()[0] != vehicle {
		t.Fatalf("modified vehicles: %v", res.ModifiedVehicles())
	}
}

func TestDispatchPairsBoardingAtCurrentStop(t *testing.T) {
	trip := newSnapshotTrip("t1", "depot", "B")
	vehicle, route := newSnapshotVehicle("v1", 0)
	state := NewState(0,
		[]*model.Trip{trip}, nil, []*model.Trip{trip},
		[]*model.Vehicle{vehicle}, map[string]*model.Route{"v1": route})

	d := &stubDispatcher{fn: func(legs []*model.Leg, routes []*model.Route, currentTime float64, state *State) ([]*RoutePlan, error) {
		plan := NewRoutePlan(routes[0])
		plan.AppendNextStop("B", 300, math.NaN())
		if err := plan.AssignLeg(legs[0]); err != nil {
			return nil, err
		}
		return []*RoutePlan{plan}, nil
	}}
	opt, err := New(Config{}, d, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := opt.Dispatch(state); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if got := route.CurrentStop().PassengersToBoard(); len(got) != 1 || got[0] != trip {
		t.Fatal("trip not queued for boarding at the current stop")
	}
	if got := route.NextStops()[0].PassengersToAlight(); len(got) != 1 {
		t.Fatal("trip not queued for alighting")
	}
}

func TestDispatchLeavesUnpairableLegOffStops(t *testing.T) {
	trip := newSnapshotTrip("t1", "X", "Y")
	vehicle, route := newSnapshotVehicle("v1", 0)
	state := NewState(0,
		[]*model.Trip{trip}, nil, []*model.Trip{trip},
		[]*model.Vehicle{vehicle}, map[string]*model.Route{"v1": route})

	// The planned stops match neither the leg origin nor its destination.
	d := &stubDispatcher{fn: func(legs []*model.Leg, routes []*model.Route, currentTime float64, state *State) ([]*RoutePlan, error) {
		plan := NewRoutePlan(routes[0])
		plan.AppendNextStop("A", 100, 110)
		plan.AppendNextStop("B", 300, math.NaN())
		if err := plan.AssignLeg(legs[0]); err != nil {
			return nil, err
		}
		return []*RoutePlan{plan}, nil
	}}
	opt, err := New(Config{}, d, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := opt.Dispatch(state); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	// The leg stays committed to the route, but no stop carries the trip.
	if !route.HasAssignedLeg("t1-leg") {
		t.Fatal("leg not committed to the route")
	}
	if got := route.CurrentStop().PassengersToBoard(); len(got) != 0 {
		t.Fatalf("current stop boarding list: %d", len(got))
	}
	for _, stop := range route.NextStops() {
		if len(stop.PassengersToBoard()) != 0 || len(stop.PassengersToAlight()) != 0 {
			t.Fatalf("stop %v carries the unpairable trip", stop.Location())
		}
	}
}

func TestDispatchPropagatesInfeasible(t *testing.T) {
	trip := newSnapshotTrip("t1", "A", "B")
	vehicle, route := newSnapshotVehicle("v1", 0)
	state := NewState(0,
		[]*model.Trip{trip}, nil, []*model.Trip{trip},
		[]*model.Vehicle{vehicle}, map[string]*model.Route{"v1": route})

	d := &stubDispatcher{fn: func([]*model.Leg, []*model.Route, float64, *State) ([]*RoutePlan, error) {
		return nil, &InfeasibleError{Reason: "capacity exceeded"}
	}}
	opt, err := New(Config{}, d, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = opt.Dispatch(state)
	if err == nil || !IsInfeasible(err) {
		t.Fatalf("expected infeasible error, got %v", err)
	}
	if IsInfeasible(errors.New("plain")) {
		t.Fatal("plain error classified infeasible")
	}
}

func TestNeedToOptimizePolicy(t *testing.T) {
	opt, err := New(Config{}, &stubDispatcher{}, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if opt.NeedToOptimize(EnvironmentStatistics{}) {
		t.Fatal("round wanted with no trips")
	}
	if !opt.NeedToOptimize(EnvironmentStatistics{NbTrips: 1}) {
		t.Fatal("round skipped with pending trips")
	}
}
