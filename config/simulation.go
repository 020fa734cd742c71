package config

import "fmt"

// SimulationConfig controls the event loop of a run.
type SimulationConfig struct {
	// MaxTimeSeconds stops the run past this simulation time; zero means no
	// limit.
	MaxTimeSeconds float64 `json:"max_time_seconds"`
	// PositionStepSeconds schedules periodic vehicle position updates; zero
	// disables them.
	PositionStepSeconds float64 `json:"position_step_seconds"`
	// RejectAtDueTime rejects trips still unassigned at their due time.
	RejectAtDueTime bool `json:"reject_at_due_time"`
}

// SetDefaults fills unset values.
func (c *SimulationConfig) SetDefaults() {}

// Validate checks the simulation parameters.
func (c *SimulationConfig) Validate() error {
	if c.MaxTimeSeconds < 0 {
		return fmt.Errorf("simulation: max_time_seconds must not be negative")
	}
	if c.PositionStepSeconds < 0 {
		return fmt.Errorf("simulation: position_step_seconds must not be negative")
	}
	return nil
}
