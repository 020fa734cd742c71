package model

// CloneContext performs selective deep copies of the entity graph. Entities
// are memoized by id so that shared references (a trip listed on several
// stops, a leg held by both its trip and a route) resolve to the same copy.
//
// Seeding the maps with live entities turns cloning into a remap: stops
// copied from a snapshot then reference the live trips instead of fresh
// copies. The environment update events rely on this.
type CloneContext struct {
	Trips    map[string]*Trip
	Legs     map[string]*Leg
	Vehicles map[string]*Vehicle
}

// NewCloneContext returns an empty clone context.
func NewCloneContext() *CloneContext {
	return &CloneContext{
		Trips:    make(map[string]*Trip),
		Legs:     make(map[string]*Leg),
		Vehicles: make(map[string]*Vehicle),
	}
}

// CloneLeg copies a leg, preserving its assignment and observed times.
func (c *CloneContext) CloneLeg(l *Leg) *Leg {
	if l == nil {
		return nil
	}
	if cp, ok := c.Legs[l.ID]; ok {
		return cp
	}
	cp := &Leg{
		Request:           l.Request,
		tripID:            l.tripID,
		assignedVehicleID: l.assignedVehicleID,
		boardingTime:      l.boardingTime,
		alightingTime:     l.alightingTime,
	}
	c.Legs[l.ID] = cp
	return cp
}

// CloneLegs copies a leg slice, preserving order.
func (c *CloneContext) CloneLegs(legs []*Leg) []*Leg {
	if legs == nil {
		return nil
	}
	out := make([]*Leg, len(legs))
	for i, l := range legs {
		out[i] = c.CloneLeg(l)
	}
	return out
}

// CloneTrip copies a trip and its legs, preserving the lifecycle state.
func (c *CloneContext) CloneTrip(t *Trip) *Trip {
	if t == nil {
		return nil
	}
	if cp, ok := c.Trips[t.ID]; ok {
		return cp
	}
	cp := newTripAt(t.Request, t.Status())
	c.Trips[t.ID] = cp
	cp.previousLegs = c.CloneLegs(t.previousLegs)
	cp.currentLeg = c.CloneLeg(t.currentLeg)
	cp.nextLegs = c.CloneLegs(t.nextLegs)
	return cp
}

// CloneStop copies a stop, remapping the pending pickup and dropoff lists
// through the context. The transient boarding/boarded/alighting/alighted
// lists are dropped: a copy only ever plans the future of the stop. The
// frozen mark is not carried over.
func (c *CloneContext) CloneStop(s *Stop) *Stop {
	if s == nil {
		return nil
	}
	cp := &Stop{
		arrivalTime:        s.arrivalTime,
		departureTime:      s.departureTime,
		minDepartureTime:   s.minDepartureTime,
		location:           s.location,
		cumulativeDistance: s.cumulativeDistance,
	}
	for _, t := range s.passengersToBoard {
		cp.passengersToBoard = append(cp.passengersToBoard, c.CloneTrip(t))
	}
	for _, t := range s.passengersToAlight {
		cp.passengersToAlight = append(cp.passengersToAlight, c.CloneTrip(t))
	}
	return cp
}

// CloneStops copies a stop slice, preserving order.
func (c *CloneContext) CloneStops(stops []*Stop) []*Stop {
	if stops == nil {
		return nil
	}
	out := make([]*Stop, len(stops))
	for i, s := range stops {
		out[i] = c.CloneStop(s)
	}
	return out
}

// CloneVehicle copies a vehicle without its polyline payload.
func (c *CloneContext) CloneVehicle(v *Vehicle) *Vehicle {
	if v == nil {
		return nil
	}
	if cp, ok := c.Vehicles[v.id]; ok {
		return cp
	}
	cp := newVehicleAt(v, v.Status(), c.CloneStop(v.startStop))
	c.Vehicles[v.id] = cp
	return cp
}

// CloneRoute copies a route. The past (previous stops, alighted legs) is
// dropped; optimization only reads the present and the future.
func (c *CloneContext) CloneRoute(r *Route) *Route {
	if r == nil {
		return nil
	}
	return &Route{
		vehicle:      c.CloneVehicle(r.vehicle),
		currentStop:  c.CloneStop(r.currentStop),
		nextStops:    c.CloneStops(r.nextStops),
		onboardLegs:  c.CloneLegs(r.onboardLegs),
		assignedLegs: c.CloneLegs(r.assignedLegs),
		load:         r.load,
	}
}
