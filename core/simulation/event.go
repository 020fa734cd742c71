package simulation

// Priority classes for event ordering. Lower values are processed first among
// events scheduled at the same time; the optimize cycle and vehicle
// completion run after the state changes of their timestamp.
const (
	HighPriority     = 0
	StandardPriority = 5
	LowPriority      = 10
)

// Event is one pending state transition of the simulation.
type Event interface {
	Name() string
	Time() float64
	Priority() int
	// Process mutates the environment. It runs to completion before the next
	// event is popped; a returned error aborts the run.
	Process(env *Environment) error
}

// StateMachine is the slice of a lifecycle machine the event loop needs:
// advancing it by event name and identifying its owner.
type StateMachine interface {
	Apply(event string) error
	Owner() string
}

// ActionableEvent is an event attached to a lifecycle machine. The machine is
// advanced by the event name before Process runs; an illegal transition is
// fatal.
type ActionableEvent interface {
	Event
	Machine() StateMachine
}

// OwnedEvent ties a plain event to one entity for pending-event lookups
// without attaching a lifecycle machine to it.
type OwnedEvent interface {
	Event
	Owner() string
}

type baseEvent struct {
	name     string
	time     float64
	priority int
	queue    *Queue
}

func (e *baseEvent) Name() string   { return e.name }
func (e *baseEvent) Time() float64  { return e.time }
func (e *baseEvent) Priority() int  { return e.priority }

type actionEvent struct {
	baseEvent
	machine StateMachine
}

func (e *actionEvent) Machine() StateMachine { return e.machine }
