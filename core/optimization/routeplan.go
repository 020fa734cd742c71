package optimization

import (
	"math"

	"github.com/openfleet/dispatchsim/core/model"
)

// RoutePlan is a dispatcher's proposed mutation of one route: a new departure
// time for the current stop, a new sequence of next stops and the legs to
// commit to the route. Plans are built append-only.
type RoutePlan struct {
	route                    *model.Route
	currentStopDepartureTime float64 // NaN when not proposed
	nextStops                []*model.Stop
	assignedLegs             []*model.Leg
}

// NewRoutePlan creates an empty plan for the given snapshot route. While no
// stop is appended the original stops of the route are left untouched.
func NewRoutePlan(route *model.Route) *RoutePlan {
	return &RoutePlan{
		route:                    route,
		currentStopDepartureTime: math.NaN(),
	}
}

func (p *RoutePlan) Route() *model.Route        { return p.route }
func (p *RoutePlan) NextStops() []*model.Stop   { return p.nextStops }
func (p *RoutePlan) AssignedLegs() []*model.Leg { return p.assignedLegs }

// CurrentStopDepartureTime returns the proposed departure time of the current
// stop and whether one was proposed.
func (p *RoutePlan) CurrentStopDepartureTime() (float64, bool) {
	return p.currentStopDepartureTime, !math.IsNaN(p.currentStopDepartureTime)
}

// SetCurrentStopDepartureTime proposes a new departure time for the current
// stop of the route.
func (p *RoutePlan) SetCurrentStopDepartureTime(t float64) {
	p.currentStopDepartureTime = t
}

// AppendNextStop appends a planned stop at the labelled location. A departure
// time of NaN means the vehicle leaves as soon as it arrives.
func (p *RoutePlan) AppendNextStop(stopID string, arrivalTime, departureTime float64) *model.Stop {
	if math.IsNaN(departureTime) {
		departureTime = arrivalTime
	}
	stop := model.NewStop(arrivalTime, departureTime, model.NewLabelLocation(stopID))
	p.nextStops = append(p.nextStops, stop)
	return stop
}

// AssignLeg commits a leg to the planned route. Assigning a leg that already
// belongs to the same vehicle is a no-op; a conflicting assignment is an
// invariant violation.
func (p *RoutePlan) AssignLeg(leg *model.Leg) error {
	if err := leg.AssignVehicle(p.route.Vehicle().ID()); err != nil {
		return err
	}
	p.assignedLegs = append(p.assignedLegs, leg)
	return nil
}

// CopyRouteStops seeds the plan with the current and next stops of the route,
// so a dispatcher can extend an itinerary instead of replacing it.
func (p *RoutePlan) CopyRouteStops() {
	if cur := p.route.CurrentStop(); cur != nil {
		p.currentStopDepartureTime = cur.DepartureTime()
	}
	p.nextStops = append([]*model.Stop(nil), p.route.NextStops()...)
}
