package model

import (
	"github.com/openfleet/dispatchsim/core/statemachine"
)

// MaxTime is the end-of-horizon sentinel used when a vehicle has no explicit
// end time.
const MaxTime float64 = 7 * 24 * 3600

// Vehicle holds the immutable identity and capacity of one fleet vehicle plus
// its mutable position. The lifecycle state advances only through event
// processing.
type Vehicle struct {
	id          string
	startTime   float64
	endTime     float64
	startStop   *Stop
	capacity    int
	releaseTime float64
	mode        string
	reusable    bool

	position  Location
	polylines map[string]string

	machine *statemachine.Machine[statemachine.VehicleStatus]
}

// NewVehicle creates a vehicle in the released state. An endTime of zero or
// less means the end-of-horizon sentinel.
func NewVehicle(id string, startTime, endTime float64, startStop *Stop, capacity int, releaseTime float64, mode string, reusable bool) *Vehicle {
	if endTime <= 0 {
		endTime = MaxTime
	}
	return &Vehicle{
		id:          id,
		startTime:   startTime,
		endTime:     endTime,
		startStop:   startStop,
		capacity:    capacity,
		releaseTime: releaseTime,
		mode:        mode,
		reusable:    reusable,
		machine:     statemachine.NewVehicleMachine(id, statemachine.VehicleReleased),
	}
}

func newVehicleAt(v *Vehicle, status statemachine.VehicleStatus, startStop *Stop) *Vehicle {
	return &Vehicle{
		id:          v.id,
		startTime:   v.startTime,
		endTime:     v.endTime,
		startStop:   startStop,
		capacity:    v.capacity,
		releaseTime: v.releaseTime,
		mode:        v.mode,
		reusable:    v.reusable,
		position:    v.position,
		machine:     statemachine.NewVehicleMachine(v.id, status),
	}
}

func (v *Vehicle) ID() string           { return v.id }
func (v *Vehicle) StartTime() float64   { return v.startTime }
func (v *Vehicle) EndTime() float64     { return v.endTime }
func (v *Vehicle) StartStop() *Stop     { return v.startStop }
func (v *Vehicle) Capacity() int        { return v.capacity }
func (v *Vehicle) ReleaseTime() float64 { return v.releaseTime }
func (v *Vehicle) Mode() string         { return v.mode }
func (v *Vehicle) Reusable() bool       { return v.reusable }

// Position returns the most recent known location, nil before the first
// position update.
func (v *Vehicle) Position() Location { return v.position }

// SetPosition records the vehicle position; collaborator data only, the
// kernel never reads it back.
func (v *Vehicle) SetPosition(l Location) { v.position = l }

// Polylines returns the per-stop polyline traces, collaborator data.
func (v *Vehicle) Polylines() map[string]string { return v.polylines }

// SetPolylines replaces the polyline traces.
func (v *Vehicle) SetPolylines(p map[string]string) { v.polylines = p }

// Status returns the current lifecycle state.
func (v *Vehicle) Status() statemachine.VehicleStatus { return v.machine.Current() }

// StateMachine exposes the lifecycle machine for event processing.
func (v *Vehicle) StateMachine() *statemachine.Machine[statemachine.VehicleStatus] {
	return v.machine
}
