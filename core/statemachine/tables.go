package statemachine

// Event names shared between the simulation event handlers and the transition
// tables below. A state machine is advanced exclusively by processing the
// event whose name matches a table entry.
const (
	EventVehicleReady     = "VehicleReady"
	EventVehicleWaiting   = "VehicleWaiting"
	EventVehicleBoarding  = "VehicleBoarding"
	EventVehicleDeparture = "VehicleDeparture"
	EventVehicleArrival   = "VehicleArrival"
	EventVehicleBoarded   = "VehicleBoarded"
	EventVehicleAlighted  = "VehicleAlighted"
	EventVehicleComplete  = "VehicleComplete"

	// Plain events: they touch no lifecycle machine.
	EventVehicleNotification   = "VehicleNotification"
	EventVehicleUpdatePosition = "VehicleUpdatePosition"

	EventPassengerRelease    = "PassengerRelease"
	EventPassengerAssignment = "PassengerAssignment"
	EventPassengerReady      = "PassengerReady"
	EventPassengerToBoard    = "PassengerToBoard"
	EventPassengerAlighting  = "PassengerAlighting"
	EventPassengerComplete   = "PassengerComplete"
	EventPassengerRejected   = "PassengerRejected"

	EventOptimize          = "Optimize"
	EventEnvironmentUpdate = "EnvironmentUpdate"
	EventEnvironmentIdle   = "EnvironmentIdle"
)

var vehicleTransitions = []Transition[VehicleStatus]{
	{EventVehicleWaiting, VehicleReleased, VehicleIdle},
	{EventVehicleWaiting, VehicleIdle, VehicleIdle},
	{EventVehicleWaiting, VehicleBoarding, VehicleIdle},
	{EventVehicleWaiting, VehicleAlighting, VehicleIdle},
	{EventVehicleBoarding, VehicleIdle, VehicleBoarding},
	{EventVehicleBoarding, VehicleBoarding, VehicleBoarding},
	{EventVehicleDeparture, VehicleIdle, VehicleEnRoute},
	{EventVehicleArrival, VehicleEnRoute, VehicleAlighting},
	{EventVehicleComplete, VehicleIdle, VehicleComplete},
}

// NewVehicleMachine creates the vehicle lifecycle machine starting in the
// given state.
func NewVehicleMachine(owner string, initial VehicleStatus) *Machine[VehicleStatus] {
	return New(owner, initial, vehicleTransitions)
}

var tripTransitions = []Transition[TripStatus]{
	{EventPassengerAssignment, TripReleased, TripAssigned},
	{EventPassengerAssignment, TripAssigned, TripAssigned},
	{EventPassengerAssignment, TripReady, TripAssigned},
	{EventPassengerReady, TripAssigned, TripReady},
	{EventPassengerReady, TripAlighting, TripReady},
	{EventPassengerToBoard, TripReady, TripBoarding},
	{EventVehicleBoarded, TripBoarding, TripOnBoard},
	{EventPassengerAlighting, TripOnBoard, TripAlighting},
	{EventPassengerComplete, TripAlighting, TripComplete},
	{EventPassengerRejected, TripReleased, TripRejected},
}

// NewTripMachine creates the trip lifecycle machine starting in the given
// state.
func NewTripMachine(owner string, initial TripStatus) *Machine[TripStatus] {
	return New(owner, initial, tripTransitions)
}

var optimizationTransitions = []Transition[OptimizationStatus]{
	{EventOptimize, OptimizationIdle, OptimizationOptimizing},
	{EventOptimize, OptimizationOptimizing, OptimizationOptimizing},
	{EventEnvironmentUpdate, OptimizationOptimizing, OptimizationUpdateEnvironment},
	{EventEnvironmentIdle, OptimizationUpdateEnvironment, OptimizationIdle},
	{EventEnvironmentIdle, OptimizationOptimizing, OptimizationIdle},
}

// NewOptimizationMachine creates the optimize-cycle machine.
func NewOptimizationMachine() *Machine[OptimizationStatus] {
	return New("optimization", OptimizationIdle, optimizationTransitions)
}
