// Package dispatch contains the built-in optimization strategies.
package dispatch

import (
	"math"
	"sort"

	"github.com/openfleet/dispatchsim/core/logger"
	"github.com/openfleet/dispatchsim/core/model"
	"github.com/openfleet/dispatchsim/core/optimization"
)

const (
	defaultBoardingSeconds = 10
	defaultTravelSeconds   = 300
)

// GreedyDispatcher assigns each waiting leg to the idle vehicle with the most
// free places. An idle vehicle serves one leg per round: it drives to the leg
// origin, picks the passenger up and drops them at the destination. Travel
// times come from a duration matrix keyed by location labels.
type GreedyDispatcher struct {
	durations     map[string]map[string]float64
	boardingTime  float64
	defaultTravel float64
	log           logger.Logger
}

// NewGreedyDispatcher creates a greedy strategy over the given duration
// matrix. Pairs missing from the matrix get a default travel time.
func NewGreedyDispatcher(durations map[string]map[string]float64, log logger.Logger) *GreedyDispatcher {
	if log == nil {
		log = logger.Nop{}
	}
	return &GreedyDispatcher{
		durations:     durations,
		boardingTime:  defaultBoardingSeconds,
		defaultTravel: defaultTravelSeconds,
		log:           log,
	}
}

// PrepareInput narrows the round to the waiting legs and the idle routes: a
// route at a stop with nothing on board, nothing assigned and a modifiable
// current stop. Idle routes are ordered by current stop departure time so
// that the longest-idle vehicle is served first.
func (d *GreedyDispatcher) PrepareInput(state *optimization.State) ([]*model.Leg, []*model.Route) {
	legs := state.NonAssignedNextLegs()

	var routes []*model.Route
	for _, r := range state.Routes() {
		cur := r.CurrentStop()
		if cur == nil || cur.Frozen() {
			continue
		}
		if len(r.OnboardLegs()) > 0 || len(r.AssignedLegs()) > 0 {
			continue
		}
		routes = append(routes, r)
	}
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].CurrentStop().DepartureTime() < routes[j].CurrentStop().DepartureTime()
	})
	return legs, routes
}

// Optimize builds one pickup/dropoff plan per served leg. Legs that no idle
// vehicle can hold stay unassigned until a later round.
func (d *GreedyDispatcher) Optimize(legs []*model.Leg, routes []*model.Route, currentTime float64, state *optimization.State) ([]*optimization.RoutePlan, error) {
	candidates := append([]*model.Route(nil), routes...)

	var plans []*optimization.RoutePlan
	for _, leg := range legs {
		best := -1
		for i, r := range candidates {
			if r.NbFreePlaces() < leg.NbPassengers {
				continue
			}
			if best < 0 || r.NbFreePlaces() > candidates[best].NbFreePlaces() {
				best = i
			}
		}
		if best < 0 {
			d.log.Debugf("no idle vehicle for leg %s, deferring", leg.ID)
			continue
		}
		route := candidates[best]
		candidates = append(candidates[:best], candidates[best+1:]...)

		plan, err := d.planLeg(route, leg, currentTime)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	d.log.Debugf("greedy round at %v: %d legs, %d plans", currentTime, len(legs), len(plans))
	return plans, nil
}

func (d *GreedyDispatcher) planLeg(route *model.Route, leg *model.Leg, currentTime float64) (*optimization.RoutePlan, error) {
	plan := optimization.NewRoutePlan(route)

	departure := currentTime
	if min, ok := route.CurrentStop().MinDepartureTime(); ok && departure < min {
		departure = min
	}
	plan.SetCurrentStopDepartureTime(departure)

	originArrival := departure + d.travel(route.CurrentStop().Location(), leg.Origin)
	originDeparture := math.Max(originArrival+d.boardingTime, leg.ReadyTime)
	plan.AppendNextStop(locationLabel(leg.Origin), originArrival, originDeparture)

	destArrival := originDeparture + d.travel(leg.Origin, leg.Destination)
	plan.AppendNextStop(locationLabel(leg.Destination), destArrival, math.NaN())

	if err := plan.AssignLeg(leg); err != nil {
		return nil, err
	}
	return plan, nil
}

func (d *GreedyDispatcher) travel(from, to model.Location) float64 {
	if t, ok := d.durations[locationLabel(from)][locationLabel(to)]; ok {
		return t
	}
	return d.defaultTravel
}

func locationLabel(l model.Location) string {
	if ll, ok := l.(model.LabelLocation); ok {
		return ll.Label
	}
	return l.String()
}
