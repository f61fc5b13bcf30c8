package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/monitoring"
	"github.com/sarchlab/ambasim/recording"
	"github.com/sarchlab/ambasim/timing"
)

// Builder can be used to build a simulation.
type Builder struct {
	recordingOn    bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithRecording enables trace recording.
func (b Builder) WithRecording() Builder {
	b.recordingOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the trace
// database. Implies recording.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordingOn = true
	b.outputFileName = filename
	return b
}

// WithMonitoring enables the monitoring server.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:      xid.New().String(),
		clock:   timing.NewClock(),
		bench:   hw.NewBench(),
		engines: make(map[string]any),
	}

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "ambasim_" + s.id
		}
		s.trace = recording.NewTraceRecorder(
			recording.New(outputPath), s.clock)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor().WithPortNumber(b.monitorPort)
		s.monitor.RegisterClock(s.clock)
	}

	return s
}
