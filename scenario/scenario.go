// Package scenario holds the simulation-parameter types spec.md treats as
// largely opaque to the core (grid size, obstacles, initial population,
// partition, parameters, queries, tick count, trace flag), concretized just
// enough to load from YAML and drive the orchestrator.
package scenario

import (
	"fmt"

	"github.com/ivanpozdin/patchsim/geometry"
)

// CollectorDesign selects which OutputCollector implementation the
// orchestrator wires up. Design B (lockstep) is authoritative per spec.md
// §9; Design A (fan-in) is retained as a tested, selectable alternative.
type CollectorDesign string

const (
	CollectorLockstep CollectorDesign = "lockstep"
	CollectorFanIn    CollectorDesign = "fanin"
)

// Parameters holds the epidemiological and run parameters spec.md's
// "parameters (infection radius, incubation time, recovery time, …)" field
// concretizes to.
type Parameters struct {
	InfectionRadius int             `yaml:"infectionRadius" mapstructure:"infectionRadius"`
	IncubationTicks int             `yaml:"incubationTicks" mapstructure:"incubationTicks"`
	RecoveryTicks   int             `yaml:"recoveryTicks" mapstructure:"recoveryTicks"`
	Padding         int             `yaml:"padding" mapstructure:"padding"`
	Seed            int64           `yaml:"seed" mapstructure:"seed"`
	CollectorDesign CollectorDesign `yaml:"collectorDesign" mapstructure:"collectorDesign"`
}

// Query is a named rectangular region over which aggregate SIR counts are
// reported each tick.
type Query struct {
	Name string            `yaml:"name" mapstructure:"name"`
	Area geometry.Rectangle `yaml:"area" mapstructure:"area"`
}

// Partition is the two ordered sequences of interior cut-lines spec.md's
// patch-iteration algorithm (§4.1) consumes.
type Partition struct {
	XCuts []int `yaml:"xCuts" mapstructure:"xCuts"`
	YCuts []int `yaml:"yCuts" mapstructure:"yCuts"`
}

// Scenario is the complete, immutable simulation input.
type Scenario struct {
	GridSize          geometry.XY
	Obstacles         []geometry.Rectangle
	InitialPopulation []geometry.XY
	Partition         Partition
	Parameters        Parameters
	Queries           []Query
	Ticks             int
	TraceEnabled      bool
}

// Grid returns the scenario's grid as a Rectangle anchored at the origin.
func (s *Scenario) Grid() geometry.Rectangle {
	return geometry.NewRectangle(geometry.XY{}, s.GridSize)
}

// Patches enumerates the scenario's partition cells in row-major order —
// the same order the orchestrator uses to assign patch ids.
func (s *Scenario) Patches() []geometry.Rectangle {
	return geometry.Patches(s.GridSize, s.Partition.XCuts, s.Partition.YCuts)
}

// Validate checks the structural invariants a Scenario must satisfy before
// it can be simulated: positive grid size, obstacles that overlap the grid,
// an in-bounds initial population, a non-negative tick count, and sane
// parameters.
func (s *Scenario) Validate() error {
	if s.GridSize.X <= 0 || s.GridSize.Y <= 0 {
		return fmt.Errorf("scenario: grid size must be positive, got %+v", s.GridSize)
	}
	grid := s.Grid()
	for _, o := range s.Obstacles {
		if !grid.Overlaps(o) {
			return fmt.Errorf("scenario: obstacle %+v lies outside grid %+v", o, s.GridSize)
		}
	}
	for _, p := range s.InitialPopulation {
		if !grid.Contains(p) {
			return fmt.Errorf("scenario: initial position %+v lies outside grid %+v", p, s.GridSize)
		}
	}
	if s.Ticks < 0 {
		return fmt.Errorf("scenario: tick count must be non-negative, got %d", s.Ticks)
	}
	if s.Parameters.InfectionRadius < 0 {
		return fmt.Errorf("scenario: infection radius must be non-negative")
	}
	if s.Parameters.IncubationTicks <= 0 || s.Parameters.RecoveryTicks <= 0 {
		return fmt.Errorf("scenario: incubation and recovery ticks must be positive")
	}
	if s.Parameters.Padding <= 0 {
		return fmt.Errorf("scenario: padding must be positive")
	}
	return nil
}
