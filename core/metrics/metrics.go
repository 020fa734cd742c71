package metrics

// EventRecord describes one processed simulation event.
type EventRecord struct {
	Name     string
	Time     float64
	Priority int
	Owner    string
}

// MetricsSink records processed events for observability purposes.
type MetricsSink interface {
	RecordEvent(ev EventRecord) error
}

// TripRecord is a lifecycle milestone of one trip.
type TripRecord struct {
	TripID string
	Status string
	Time   float64
}

// TripRecorder records trip lifecycle milestones.
type TripRecorder interface {
	RecordTripStatus(ev TripRecord) error
}

// FleetRecord is a snapshot of the fleet and demand.
type FleetRecord struct {
	NbVehicles       int
	NbTrips          int
	NbNonAssigned    int
	MeanOccupancy    float64
	HighestOccupancy float64
	Time             float64
}

// FleetRecorder records fleet snapshots.
type FleetRecorder interface {
	RecordFleetState(ev FleetRecord) error
}

// SimulationTimeRecorder is implemented by sinks able to track the clock.
type SimulationTimeRecorder interface {
	RecordSimulationTime(t float64) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordEvent(EventRecord) error      { return nil }
func (NopSink) RecordTripStatus(TripRecord) error  { return nil }
func (NopSink) RecordFleetState(FleetRecord) error { return nil }
func (NopSink) RecordSimulationTime(float64) error { return nil }
