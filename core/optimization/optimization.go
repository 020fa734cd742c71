package optimization

import (
	"errors"
	"fmt"

	"github.com/openfleet/dispatchsim/core/logger"
	"github.com/openfleet/dispatchsim/core/statemachine"
)

// Config defines the optimize-cycle parameters loaded from configuration.
type Config struct {
	// FreezeIntervalSeconds is the lead time during which near-term
	// departures are immutable to the optimizer.
	FreezeIntervalSeconds float64 `json:"freeze_interval_seconds"`
	// BatchSeconds aligns optimize events to a fixed time granularity; zero
	// disables batching.
	BatchSeconds float64 `json:"batch_seconds"`
	// MultipleOptimizeEvents disables the deduplication of optimize events
	// scheduled for the same timestamp.
	MultipleOptimizeEvents bool `json:"multiple_optimize_events"`
}

// EnvironmentStatistics is the lightweight view consulted before a round.
type EnvironmentStatistics struct {
	NbVehicles       int
	NbTrips          int
	NbNonAssigned    int
	MeanOccupancy    float64
	HighestOccupancy float64
}

// NeedToOptimizePolicy decides whether a round is worth running.
type NeedToOptimizePolicy func(stats EnvironmentStatistics) bool

// OptimizeIfTrips runs a round whenever at least one trip exists.
func OptimizeIfTrips(stats EnvironmentStatistics) bool { return stats.NbTrips > 0 }

// InfeasibleError reports a proposed plan that failed a domain feasibility
// check. The round is logged and skipped; the environment is left untouched.
type InfeasibleError struct {
	Reason string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible solution: %s", e.Reason)
}

// IsInfeasible reports whether err wraps an InfeasibleError.
func IsInfeasible(err error) bool {
	var ie *InfeasibleError
	return errors.As(err, &ie)
}

// Optimization coordinates the three-phase dispatcher contract around a
// pluggable strategy.
type Optimization struct {
	dispatcher     Dispatcher
	freezeInterval float64
	batch          float64
	multipleEvents bool
	needToOptimize NeedToOptimizePolicy
	machine        *statemachine.Machine[statemachine.OptimizationStatus]
	log            logger.Logger
}

// New creates an Optimization around the given strategy. A nil dispatcher is
// a fatal configuration error: Optimize is the one capability every strategy
// must supply.
func New(cfg Config, dispatcher Dispatcher, policy NeedToOptimizePolicy, log logger.Logger) (*Optimization, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("optimization: a dispatcher implementing Optimize is required")
	}
	if cfg.FreezeIntervalSeconds < 0 {
		return nil, fmt.Errorf("optimization: freeze interval must not be negative")
	}
	if policy == nil {
		policy = OptimizeIfTrips
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Optimization{
		dispatcher:     dispatcher,
		freezeInterval: cfg.FreezeIntervalSeconds,
		batch:          cfg.BatchSeconds,
		multipleEvents: cfg.MultipleOptimizeEvents,
		needToOptimize: policy,
		machine:        statemachine.NewOptimizationMachine(),
		log:            log,
	}, nil
}

func (o *Optimization) FreezeInterval() float64    { return o.freezeInterval }
func (o *Optimization) BatchSize() float64         { return o.batch }
func (o *Optimization) MultipleOptimizeEvents() bool { return o.multipleEvents }

// Status returns the current state of the optimize cycle.
func (o *Optimization) Status() statemachine.OptimizationStatus { return o.machine.Current() }

// StateMachine exposes the optimize-cycle machine for event processing.
func (o *Optimization) StateMachine() *statemachine.Machine[statemachine.OptimizationStatus] {
	return o.machine
}

// NeedToOptimize consults the configured policy.
func (o *Optimization) NeedToOptimize(stats EnvironmentStatistics) bool {
	return o.needToOptimize(stats)
}

// Dispatch runs the three-phase contract on the snapshot: select inputs,
// optimize, translate the plans back into snapshot entities. The strategy's
// optional capabilities override the default phases.
func (o *Optimization) Dispatch(state *State) (*Result, error) {
	selectedLegs, selectedRoutes := defaultPrepareInput(state)
	if p, ok := o.dispatcher.(InputPreparer); ok {
		selectedLegs, selectedRoutes = p.PrepareInput(state)
	}
	if len(selectedLegs) == 0 || len(selectedRoutes) == 0 {
		o.log.Debugf("optimization skipped: %d legs, %d routes selected", len(selectedLegs), len(selectedRoutes))
		return &Result{state: state}, nil
	}

	plans, err := o.dispatcher.Optimize(selectedLegs, selectedRoutes, state.CurrentTime(), state)
	if err != nil {
		return nil, err
	}

	if p, ok := o.dispatcher.(RoutePlanProcessor); ok {
		return p.ProcessRoutePlans(plans, state)
	}
	return defaultProcessRoutePlans(plans, state)
}
