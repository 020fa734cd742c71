// Package app assembles a simulation run from configuration: inputs, the
// optimization strategy, the environment and the event loop.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/openfleet/dispatchsim/config"
	"github.com/openfleet/dispatchsim/core/dispatch"
	coremetrics "github.com/openfleet/dispatchsim/core/metrics"
	"github.com/openfleet/dispatchsim/core/optimization"
	"github.com/openfleet/dispatchsim/core/simulation"
	"github.com/openfleet/dispatchsim/core/statemachine"
	"github.com/openfleet/dispatchsim/core/travel"
	"github.com/openfleet/dispatchsim/infra/logger"
	_ "github.com/openfleet/dispatchsim/infra/metrics" // register built-in sinks
	"github.com/openfleet/dispatchsim/infra/reader"
	"github.com/openfleet/dispatchsim/internal/eventbus"
)

// Service owns one configured simulation run.
type Service struct {
	sim *simulation.Simulator
	bus *eventbus.Bus[simulation.Progress]
	log logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", cfg.Logging.Level)
	}
	logg := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	vehicles, routes, err := reader.ReadVehicles(cfg.Data.VehiclesFile)
	if err != nil {
		return nil, err
	}
	trips, err := reader.ReadTrips(cfg.Data.TripsFile)
	if err != nil {
		return nil, err
	}

	var travelTimes travel.TravelTimes
	durations := map[string]map[string]float64{}
	if cfg.Data.TravelTimesFile != "" {
		durations, err = reader.ReadTravelTimes(cfg.Data.TravelTimesFile)
		if err != nil {
			return nil, err
		}
		travelTimes = travel.NewMatrixTravelTimes(durations)
	}

	strategy := dispatch.NewGreedyDispatcher(durations, logger.New("greedy"))
	opt, err := optimization.New(cfg.Optimization, strategy, nil, logger.New("optimization"))
	if err != nil {
		return nil, err
	}

	env := simulation.NewEnvironment(opt, travelTimes, nil, logger.New("environment"))
	bus := eventbus.New[simulation.Progress]()
	sim := simulation.NewSimulator(env, logger.New("simulator"), sink, bus, cfg.Simulation.MaxTimeSeconds)

	for _, v := range vehicles {
		sim.AddVehicle(v, routes[v.ID()], cfg.Simulation.PositionStepSeconds)
	}
	for _, t := range trips {
		sim.AddTrip(t)
		if cfg.Simulation.RejectAtDueTime {
			sim.Queue().Push(simulation.NewPassengerRejected(t, sim.Queue(), t.DueTime))
		}
	}

	logg.Infof("run prepared: %d vehicles, %d trips", len(vehicles), len(trips))
	return &Service{sim: sim, bus: bus, log: logg}, nil
}

// Simulator exposes the underlying event loop, mostly for observers that want
// to subscribe to progress before Run.
func (s *Service) Simulator() *simulation.Simulator { return s.sim }

// Progress returns a subscription to per-event progress.
func (s *Service) Progress() <-chan simulation.Progress { return s.bus.Subscribe() }

// Run executes the simulation to completion and logs a summary.
func (s *Service) Run(ctx context.Context) error {
	if err := s.sim.Run(ctx); err != nil {
		return err
	}

	env := s.sim.Env()
	completed, rejected := 0, 0
	for _, t := range env.Trips() {
		switch t.Status() {
		case statemachine.TripComplete:
			completed++
		case statemachine.TripRejected:
			rejected++
		}
	}
	s.log.Infof("run finished at %v: %d/%d trips completed, %d rejected, %d still unassigned",
		env.CurrentTime(), completed, len(env.Trips()), rejected, len(env.NonAssignedTrips()))
	return nil
}

// Close releases the progress bus.
func (s *Service) Close() error {
	s.bus.Close()
	return nil
}
