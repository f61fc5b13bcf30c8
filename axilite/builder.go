// Package axilite implements an AXI4-Lite master engine. The engine issues
// single-beat writes and reads against a bus exposed by an hw.Entity,
// driving and sampling the five AXI4-Lite channels across clock edges and
// settle points.
package axilite

import (
	"log"

	"github.com/pkg/errors"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/timing"
)

// Builder builds AXI4-Lite master engines.
type Builder struct {
	entity hw.Entity
	clock  *timing.Clock
	logger *log.Logger
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEntity sets the entity exposing the bus lines.
func (b Builder) WithEntity(e hw.Entity) Builder {
	b.entity = e
	return b
}

// WithClock sets the clock the engine runs against.
func (b Builder) WithClock(c *timing.Clock) Builder {
	b.clock = c
	return b
}

// WithLogger sets the logger used for per-transaction debug output.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// Build binds every AXI4-Lite line of the named bus and returns the engine.
// All lines of the profile are required; a missing one is an error. Build
// drives the master-owned valid lines low and the response-ready lines high.
func (b Builder) Build(name string) (*Comp, error) {
	if b.entity == nil {
		panic("axilite: entity is not given")
	}
	if b.clock == nil {
		panic("axilite: clock is not given")
	}

	m := &Comp{
		name:          name,
		clock:         b.clock,
		logger:        b.logger,
		writeAddrBusy: timing.NewLock(name + ".WriteAddrBusy"),
		writeDataBusy: timing.NewLock(name + ".WriteDataBusy"),
		readAddrBusy:  timing.NewLock(name + ".ReadAddrBusy"),
	}

	lines := []struct {
		dst  *hw.Line
		name string
	}{
		{&m.awaddr, "AWADDR"}, {&m.awvalid, "AWVALID"}, {&m.awready, "AWREADY"},
		{&m.wdata, "WDATA"}, {&m.wvalid, "WVALID"}, {&m.wready, "WREADY"},
		{&m.wstrb, "WSTRB"},
		{&m.bvalid, "BVALID"}, {&m.bready, "BREADY"}, {&m.bresp, "BRESP"},
		{&m.araddr, "ARADDR"}, {&m.arvalid, "ARVALID"}, {&m.arready, "ARREADY"},
		{&m.rdata, "RDATA"}, {&m.rvalid, "RVALID"}, {&m.rready, "RREADY"},
		{&m.rresp, "RRESP"},
	}
	for _, l := range lines {
		bound, err := amba.MustBindLine(b.entity, name, l.name)
		if err != nil {
			return nil, errors.Wrap(err, "axilite")
		}
		*l.dst = bound
	}

	m.awvalid.SetUint(0)
	m.wvalid.SetUint(0)
	m.arvalid.SetUint(0)
	m.bready.SetUint(1)
	m.rready.SetUint(1)

	return m, nil
}
