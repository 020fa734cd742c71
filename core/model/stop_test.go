package model

import (
	"math"
	"testing"
)

func TestStopBoardingPipeline(t *testing.T) {
	stop := NewStop(0, 10, NewLabelLocation("A"))
	trip := NewTrip(Request{ID: "t1"})

	stop.AddPassengerToBoard(trip)
	if len(stop.PassengersToBoard()) != 1 {
		t.Fatalf("to board: %d", len(stop.PassengersToBoard()))
	}
	if err := stop.InitiateBoarding(trip); err != nil {
		t.Fatalf("initiate boarding: %v", err)
	}
	if len(stop.PassengersToBoard()) != 0 || len(stop.BoardingPassengers()) != 1 {
		t.Fatal("trip did not move to boarding")
	}
	if err := stop.Board(trip); err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(stop.BoardingPassengers()) != 0 || len(stop.BoardedPassengers()) != 1 {
		t.Fatal("trip did not move to boarded")
	}
}

func TestStopAlightingPipeline(t *testing.T) {
	stop := NewStop(0, 10, NewLabelLocation("B"))
	trip := NewTrip(Request{ID: "t1"})

	stop.AddPassengerToAlight(trip)
	if err := stop.InitiateAlighting(trip); err != nil {
		t.Fatalf("initiate alighting: %v", err)
	}
	if err := stop.Alight(trip); err != nil {
		t.Fatalf("alight: %v", err)
	}
	if len(stop.AlightedPassengers()) != 1 {
		t.Fatal("trip did not move to alighted")
	}
}

func TestStopPipelineUnknownTrip(t *testing.T) {
	stop := NewStop(0, 10, NewLabelLocation("A"))
	if err := stop.InitiateBoarding(NewTrip(Request{ID: "ghost"})); err == nil {
		t.Fatal("expected error for trip not planned at the stop")
	}
}

func TestStopFrozenDepartureTime(t *testing.T) {
	stop := NewStop(0, 10, NewLabelLocation("A"))
	stop.Freeze()
	if err := stop.SetDepartureTime(20); err == nil {
		t.Fatal("expected error changing a frozen stop")
	}
	// Re-setting the same value is tolerated.
	if err := stop.SetDepartureTime(10); err != nil {
		t.Fatalf("same value on frozen stop: %v", err)
	}
	stop.Unfreeze()
	if err := stop.SetDepartureTime(20); err != nil {
		t.Fatalf("after unfreeze: %v", err)
	}
}

func TestStopMinDepartureTime(t *testing.T) {
	stop, err := NewStopWithMinDeparture(0, 10, 5, NewLabelLocation("A"))
	if err != nil {
		t.Fatalf("new stop: %v", err)
	}
	if err := stop.SetDepartureTime(3); err == nil {
		t.Fatal("expected error below minimum departure")
	}
	if err := stop.SetDepartureTime(5); err != nil {
		t.Fatalf("at minimum: %v", err)
	}
	if _, err := NewStopWithMinDeparture(0, 2, 5, NewLabelLocation("A")); err == nil {
		t.Fatal("expected error for departure below minimum at creation")
	}
}

func TestStopInfiniteDeparture(t *testing.T) {
	stop := NewStop(0, 10, NewLabelLocation("A"))
	if err := stop.SetDepartureTime(math.Inf(1)); err != nil {
		t.Fatalf("infinite departure: %v", err)
	}
	if !math.IsInf(stop.DepartureTime(), 1) {
		t.Fatal("departure not infinite")
	}
}
