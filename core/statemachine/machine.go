package statemachine

import "fmt"

// Transition allows moving from one state to another when the named event is
// processed.
type Transition[S comparable] struct {
	Event string
	From  S
	To    S
}

// Machine is a table-driven state machine attached to one entity. It advances
// only through Apply; there is no way to set the current state directly.
type Machine[S comparable] struct {
	owner       string
	current     S
	transitions []Transition[S]
}

// New creates a machine for the given owner starting in the initial state.
func New[S comparable](owner string, initial S, transitions []Transition[S]) *Machine[S] {
	return &Machine[S]{owner: owner, current: initial, transitions: transitions}
}

// Owner returns the id of the entity this machine is attached to.
func (m *Machine[S]) Owner() string { return m.owner }

// Current returns the current state.
func (m *Machine[S]) Current() S { return m.current }

// Apply advances the machine according to the named event. An event with no
// legal transition from the current state is an invariant violation.
func (m *Machine[S]) Apply(event string) error {
	for _, t := range m.transitions {
		if t.Event == event && t.From == m.current {
			m.current = t.To
			return nil
		}
	}
	return fmt.Errorf("statemachine: illegal transition %q from state %v (owner %s)",
		event, m.current, m.owner)
}
