// Package axistream implements the AXI4-Stream engines: a master that
// drives an outbound byte stream with optional sideband fields, and a
// passive monitor that samples an inbound stream and hands each captured
// beat to registered sinks.
//
// Only TVALID is required by the profile. Every other line is optional;
// presence is resolved once at construction and absent lines are never
// driven or sampled.
package axistream

import (
	"log"

	"github.com/pkg/errors"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/timing"
)

// streamBus holds the resolved line handles of one AXI4-Stream bus. Nil
// handles mark lines absent from the profile.
type streamBus struct {
	tvalid hw.Line
	tready hw.Line
	tdata  hw.Line
	tstrb  hw.Line
	tkeep  hw.Line
	tlast  hw.Line
	tid    hw.Line
	tdest  hw.Line
	tuser  hw.Line
}

func bindStreamBus(e hw.Entity, name string) (streamBus, error) {
	var b streamBus

	tvalid, err := amba.MustBindLine(e, name, "TVALID")
	if err != nil {
		return b, errors.Wrap(err, "axistream")
	}

	b.tvalid = tvalid
	b.tready = amba.BindLine(e, name, "TREADY")
	b.tdata = amba.BindLine(e, name, "TDATA")
	b.tstrb = amba.BindLine(e, name, "TSTRB")
	b.tkeep = amba.BindLine(e, name, "TKEEP")
	b.tlast = amba.BindLine(e, name, "TLAST")
	b.tid = amba.BindLine(e, name, "TID")
	b.tdest = amba.BindLine(e, name, "TDEST")
	b.tuser = amba.BindLine(e, name, "TUSER")

	return b, nil
}

// MasterBuilder builds stream master engines.
type MasterBuilder struct {
	entity    hw.Entity
	clock     *timing.Clock
	bigEndian bool
	config    map[string]string
	logger    *log.Logger
}

// MakeMasterBuilder returns a new MasterBuilder.
func MakeMasterBuilder() MasterBuilder {
	return MasterBuilder{}
}

// WithEntity sets the entity exposing the bus lines.
func (b MasterBuilder) WithEntity(e hw.Entity) MasterBuilder {
	b.entity = e
	return b
}

// WithClock sets the clock the engine runs against.
func (b MasterBuilder) WithClock(c *timing.Clock) MasterBuilder {
	b.clock = c
	return b
}

// WithBigEndian reverses the byte order of frame payloads within each beat.
func (b MasterBuilder) WithBigEndian() MasterBuilder {
	b.bigEndian = true
	return b
}

// WithConfig sets named configuration options. Options are recorded and
// logged; none change engine behavior today.
func (b MasterBuilder) WithConfig(config map[string]string) MasterBuilder {
	b.config = config
	return b
}

// WithLogger sets the logger used for debug output.
func (b MasterBuilder) WithLogger(l *log.Logger) MasterBuilder {
	b.logger = l
	return b
}

// Build binds the named stream bus and resets every present line to a
// defined value: TVALID low, TDATA driven, TKEEP/TSTRB all ones, and
// TLAST/TID/TDEST/TUSER zero.
func (b MasterBuilder) Build(name string) (*Master, error) {
	if b.entity == nil {
		panic("axistream: entity is not given")
	}
	if b.clock == nil {
		panic("axistream: clock is not given")
	}

	bus, err := bindStreamBus(b.entity, name)
	if err != nil {
		return nil, err
	}

	m := &Master{
		name:      name,
		clock:     b.clock,
		bus:       bus,
		bigEndian: b.bigEndian,
		config:    b.config,
		logger:    b.logger,
	}

	for option, value := range b.config {
		m.logf("config option %s = %s", option, value)
	}

	bus.tvalid.SetUint(0)
	if bus.tdata != nil {
		bus.tdata.SetBytes(nil)
	}
	if bus.tstrb != nil {
		bus.tstrb.SetUint(allOnes(bus.tstrb.Width()))
	}
	if bus.tkeep != nil {
		bus.tkeep.SetUint(allOnes(bus.tkeep.Width()))
	}
	for _, l := range []hw.Line{bus.tlast, bus.tid, bus.tdest, bus.tuser} {
		if l != nil {
			l.SetUint(0)
		}
	}

	return m, nil
}

// MonitorBuilder builds stream monitor engines.
type MonitorBuilder struct {
	entity hw.Entity
	clock  *timing.Clock
	sinks  []Sink
	logger *log.Logger
}

// MakeMonitorBuilder returns a new MonitorBuilder.
func MakeMonitorBuilder() MonitorBuilder {
	return MonitorBuilder{}
}

// WithEntity sets the entity exposing the bus lines.
func (b MonitorBuilder) WithEntity(e hw.Entity) MonitorBuilder {
	b.entity = e
	return b
}

// WithClock sets the clock the sampling task runs against.
func (b MonitorBuilder) WithClock(c *timing.Clock) MonitorBuilder {
	b.clock = c
	return b
}

// WithSink registers a sink that receives every captured beat.
func (b MonitorBuilder) WithSink(s Sink) MonitorBuilder {
	b.sinks = append(b.sinks, s)
	return b
}

// WithLogger sets the logger used for debug output.
func (b MonitorBuilder) WithLogger(l *log.Logger) MonitorBuilder {
	b.logger = l
	return b
}

// Build binds the named stream bus and spawns the passive sampling task.
// The monitor needs TDATA to capture anything, so its absence is an error.
func (b MonitorBuilder) Build(name string) (*Monitor, error) {
	if b.entity == nil {
		panic("axistream: entity is not given")
	}
	if b.clock == nil {
		panic("axistream: clock is not given")
	}

	bus, err := bindStreamBus(b.entity, name)
	if err != nil {
		return nil, err
	}
	if bus.tdata == nil {
		return nil, errors.Errorf(
			"axistream: bus %s: monitor requires a TDATA line", name)
	}

	m := &Monitor{
		name:   name,
		bus:    bus,
		sinks:  b.sinks,
		logger: b.logger,
	}

	b.clock.Spawn(name+".Monitor", m.run)

	return m, nil
}

func allOnes(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return (1 << width) - 1
}
