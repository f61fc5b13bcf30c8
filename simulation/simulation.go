// Package simulation assembles a complete emulation: one clock, one bench,
// the engines registered by name, and optionally a trace recorder and a
// monitoring server.
package simulation

import (
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/monitoring"
	"github.com/sarchlab/ambasim/recording"
	"github.com/sarchlab/ambasim/timing"
)

// A Simulation owns the pieces of one emulation run.
type Simulation struct {
	id    string
	clock *timing.Clock
	bench *hw.Bench

	trace   *recording.TraceRecorder
	monitor *monitoring.Monitor

	engines         map[string]any
	engineNameOrder []string
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Clock returns the clock that drives every engine of the simulation.
func (s *Simulation) Clock() *timing.Clock {
	return s.clock
}

// Bench returns the bench holding the simulation's bus lines.
func (s *Simulation) Bench() *hw.Bench {
	return s.bench
}

// Trace returns the trace recorder, or nil when recording is disabled.
func (s *Simulation) Trace() *recording.TraceRecorder {
	return s.trace
}

// Monitor returns the monitor, or nil when monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterEngine registers an engine under a unique name.
func (s *Simulation) RegisterEngine(name string, engine any) {
	if _, ok := s.engines[name]; ok {
		panic("engine " + name + " is already registered")
	}

	s.engines[name] = engine
	s.engineNameOrder = append(s.engineNameOrder, name)
}

// Engine returns the engine registered under name, or nil.
func (s *Simulation) Engine(name string) any {
	return s.engines[name]
}

// EngineNames lists registered engines in registration order.
func (s *Simulation) EngineNames() []string {
	return append([]string(nil), s.engineNameOrder...)
}

// Terminate flushes the trace recorder.
func (s *Simulation) Terminate() {
	if s.trace != nil {
		s.trace.Flush()
	}
}
