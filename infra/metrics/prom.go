package metrics

import (
	coremetrics "github.com/openfleet/dispatchsim/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records simulation activity in Prometheus metrics.
type PromSink struct {
	events  *prometheus.CounterVec
	trips   *prometheus.CounterVec
	simTime prometheus.Gauge
	fleet   prometheus.Gauge
	waiting prometheus.Gauge
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_events_total",
		Help: "Total number of processed simulation events",
	}, []string{"event"})
	trips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_trip_status_total",
		Help: "Trip lifecycle milestones reached",
	}, []string{"status"})
	simTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_time_seconds",
		Help: "Current simulation clock",
	})
	fleet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_fleet_vehicles",
		Help: "Number of vehicles in the environment",
	})
	waiting := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_non_assigned_trips",
		Help: "Number of trips waiting for an assignment",
	})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(trips); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			trips = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(simTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			simTime = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fleet); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fleet = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(waiting); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			waiting = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{events: events, trips: trips, simTime: simTime, fleet: fleet, waiting: waiting}, nil
}

// RecordEvent increments the counter for the processed event.
func (s *PromSink) RecordEvent(ev coremetrics.EventRecord) error {
	s.events.WithLabelValues(ev.Name).Inc()
	return nil
}

// RecordTripStatus increments the milestone counter.
func (s *PromSink) RecordTripStatus(ev coremetrics.TripRecord) error {
	s.trips.WithLabelValues(ev.Status).Inc()
	return nil
}

// RecordFleetState sets the fleet gauges.
func (s *PromSink) RecordFleetState(ev coremetrics.FleetRecord) error {
	s.fleet.Set(float64(ev.NbVehicles))
	s.waiting.Set(float64(ev.NbNonAssigned))
	return nil
}

// RecordSimulationTime sets the clock gauge.
func (s *PromSink) RecordSimulationTime(t float64) error {
	s.simTime.Set(t)
	return nil
}
