package model

import "testing"

func TestCloneTripIsMemoized(t *testing.T) {
	trip := NewTrip(Request{ID: "t1"})
	leg := NewLeg(Request{ID: "l1"}, trip.ID)
	trip.AssignLegs([]*Leg{leg})

	ctx := NewCloneContext()
	c1 := ctx.CloneTrip(trip)
	c2 := ctx.CloneTrip(trip)
	if c1 != c2 {
		t.Fatal("same trip cloned twice")
	}
	if c1 == trip {
		t.Fatal("clone is the live trip")
	}
	if c1.NextLegs()[0] == leg {
		t.Fatal("clone shares the live leg")
	}
	if c1.NextLegs()[0].ID != "l1" {
		t.Fatal("leg identity lost")
	}
}

func TestCloneIsolatesLiveEntities(t *testing.T) {
	trip := NewTrip(Request{ID: "t1"})
	leg := NewLeg(Request{ID: "l1"}, trip.ID)
	trip.AssignLegs([]*Leg{leg})

	ctx := NewCloneContext()
	clone := ctx.CloneTrip(trip)
	if err := clone.NextLegs()[0].AssignVehicle("v1"); err != nil {
		t.Fatalf("assign on clone: %v", err)
	}
	if leg.AssignedVehicleID() != "" {
		t.Fatal("mutating the clone touched the live leg")
	}
}

func TestCloneStopDropsTransientLists(t *testing.T) {
	stop := NewStop(0, 10, NewLabelLocation("A"))
	waiting := NewTrip(Request{ID: "waiting"})
	boarding := NewTrip(Request{ID: "boarding"})
	stop.AddPassengerToBoard(waiting)
	stop.AddPassengerToBoard(boarding)
	if err := stop.InitiateBoarding(boarding); err != nil {
		t.Fatalf("initiate boarding: %v", err)
	}

	clone := NewCloneContext().CloneStop(stop)
	if len(clone.PassengersToBoard()) != 1 {
		t.Fatalf("to board: %d", len(clone.PassengersToBoard()))
	}
	if len(clone.BoardingPassengers()) != 0 {
		t.Fatal("transient boarding list carried over")
	}
	if clone.Frozen() {
		t.Fatal("frozen mark carried over")
	}
}

func TestCloneStopSeededWithLiveTrips(t *testing.T) {
	live := NewTrip(Request{ID: "t1"})
	snapshot := NewCloneContext().CloneTrip(live)

	stop := NewStop(0, 10, NewLabelLocation("A"))
	stop.AddPassengerToBoard(snapshot)

	// Seeding the context with the live trip remaps the copy back to it.
	ctx := NewCloneContext()
	ctx.Trips[live.ID] = live
	clone := ctx.CloneStop(stop)
	if clone.PassengersToBoard()[0] != live {
		t.Fatal("stop copy does not reference the live trip")
	}
}

func TestCloneRouteDropsThePast(t *testing.T) {
	start := NewStop(0, 0, NewLabelLocation("depot"))
	vehicle := NewVehicle("v1", 0, 0, start, 2, 0, "bus", false)
	route := NewRoute(vehicle, NewStop(10, 20, NewLabelLocation("A")))
	route.Depart()
	if err := route.Arrive(); err != nil {
		t.Fatalf("arrive: %v", err)
	}

	clone := NewCloneContext().CloneRoute(route)
	if len(clone.PreviousStops()) != 0 {
		t.Fatal("previous stops carried over")
	}
	if clone.Vehicle() == vehicle {
		t.Fatal("clone shares the live vehicle")
	}
	if clone.Vehicle().ID() != "v1" || clone.Load() != route.Load() {
		t.Fatal("route identity lost")
	}
}

func TestCloneVehicleDropsPolylines(t *testing.T) {
	vehicle := NewVehicle("v1", 0, 0, NewStop(0, 0, NewLabelLocation("depot")), 2, 0, "bus", false)
	vehicle.SetPolylines(map[string]string{"A": "poly"})
	clone := NewCloneContext().CloneVehicle(vehicle)
	if clone.Polylines() != nil {
		t.Fatal("polylines carried over")
	}
}
