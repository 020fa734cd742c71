package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/openfleet/dispatchsim/core/metrics"
	"github.com/openfleet/dispatchsim/infra/logger"
)

// InfluxSink writes simulation records to an InfluxDB instance using the
// official client. Points carry the simulation time as a field and the wall
// clock as their timestamp.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// the no-op sink if the health check fails. A simulation run never aborts
// because a metrics backend is down.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordEvent writes the processed event as a point.
func (s *InfluxSink) RecordEvent(ev coremetrics.EventRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_event").
		AddTag("event", ev.Name).
		AddField("sim_time", ev.Time).
		AddField("priority", ev.Priority)
	if ev.Owner != "" {
		p.AddTag("owner", ev.Owner)
	}
	p.SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTripStatus writes a trip milestone.
func (s *InfluxSink) RecordTripStatus(ev coremetrics.TripRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trip_status").
		AddTag("trip_id", ev.TripID).
		AddTag("status", ev.Status).
		AddField("sim_time", ev.Time).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetState writes a fleet snapshot.
func (s *InfluxSink) RecordFleetState(ev coremetrics.FleetRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_state").
		AddField("vehicles", ev.NbVehicles).
		AddField("trips", ev.NbTrips).
		AddField("non_assigned", ev.NbNonAssigned).
		AddField("mean_occupancy", ev.MeanOccupancy).
		AddField("highest_occupancy", ev.HighestOccupancy).
		AddField("sim_time", ev.Time).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
