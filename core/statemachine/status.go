package statemachine

// VehicleStatus enumerates the lifecycle states of a vehicle.
type VehicleStatus int

const (
	VehicleReleased VehicleStatus = iota
	VehicleIdle
	VehicleBoarding
	VehicleEnRoute
	VehicleAlighting
	VehicleComplete
)

func (s VehicleStatus) String() string {
	switch s {
	case VehicleReleased:
		return "released"
	case VehicleIdle:
		return "idle"
	case VehicleBoarding:
		return "boarding"
	case VehicleEnRoute:
		return "enroute"
	case VehicleAlighting:
		return "alighting"
	case VehicleComplete:
		return "complete"
	}
	return "unknown"
}

// TripStatus enumerates the lifecycle states of a trip, inferred from its leg
// progression.
type TripStatus int

const (
	TripReleased TripStatus = iota
	TripAssigned
	TripReady
	TripBoarding
	TripOnBoard
	TripAlighting
	TripComplete
	TripRejected
)

func (s TripStatus) String() string {
	switch s {
	case TripReleased:
		return "released"
	case TripAssigned:
		return "assigned"
	case TripReady:
		return "ready"
	case TripBoarding:
		return "boarding"
	case TripOnBoard:
		return "onboard"
	case TripAlighting:
		return "alighting"
	case TripComplete:
		return "complete"
	case TripRejected:
		return "rejected"
	}
	return "unknown"
}

// OptimizationStatus enumerates the states of the optimize cycle.
type OptimizationStatus int

const (
	OptimizationIdle OptimizationStatus = iota
	OptimizationOptimizing
	OptimizationUpdateEnvironment
)

func (s OptimizationStatus) String() string {
	switch s {
	case OptimizationIdle:
		return "idle"
	case OptimizationOptimizing:
		return "optimizing"
	case OptimizationUpdateEnvironment:
		return "update_environment"
	}
	return "unknown"
}
