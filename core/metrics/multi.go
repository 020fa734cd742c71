package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordEvent forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordEvent(ev EventRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTripStatus forwards trip milestones to the sinks that support them.
func (m *MultiSink) RecordTripStatus(ev TripRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TripRecorder); ok {
			if err := rec.RecordTripStatus(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetState forwards fleet snapshots to the sinks that support them.
func (m *MultiSink) RecordFleetState(ev FleetRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FleetRecorder); ok {
			if err := rec.RecordFleetState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSimulationTime forwards the clock to the sinks that track it.
func (m *MultiSink) RecordSimulationTime(t float64) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SimulationTimeRecorder); ok {
			if err := rec.RecordSimulationTime(t); err != nil {
				return err
			}
		}
	}
	return nil
}
