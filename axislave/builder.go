// Package axislave implements a memory-backed AXI4 slave engine. The engine
// services burst writes and reads against a backing storage, running two
// responder tasks for the lifetime of its clock: one for the write channels
// and one for the read channels.
package axislave

import (
	"log"

	"github.com/pkg/errors"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/memory"
	"github.com/sarchlab/ambasim/timing"
)

// Builder builds AXI4 slave engines.
type Builder struct {
	entity    hw.Entity
	clock     *timing.Clock
	storage   *memory.Storage
	capacity  uint64
	bigEndian bool
	callback  func(amba.Transaction)
	logger    *log.Logger
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{capacity: 1 << 20}
}

// WithEntity sets the entity exposing the bus lines.
func (b Builder) WithEntity(e hw.Entity) Builder {
	b.entity = e
	return b
}

// WithClock sets the clock the responders run against.
func (b Builder) WithClock(c *timing.Clock) Builder {
	b.clock = c
	return b
}

// WithStorage sets the backing memory. The engine keeps a reference; the
// caller still owns the storage and may access it directly.
func (b Builder) WithStorage(s *memory.Storage) Builder {
	b.storage = s
	return b
}

// WithNewStorage makes Build create a fresh backing memory of the given
// capacity.
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.storage = nil
	b.capacity = capacity
	return b
}

// WithBigEndian stores beat data to memory most-significant byte first.
func (b Builder) WithBigEndian() Builder {
	b.bigEndian = true
	return b
}

// WithCallback registers a function invoked after every serviced burst.
func (b Builder) WithCallback(fn func(amba.Transaction)) Builder {
	b.callback = fn
	return b
}

// WithLogger sets the logger used for burst decode debug output.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// Build binds the AXI4 slave-profile lines of the named bus, drives the
// idle defaults, and spawns the two responder tasks. The write-response
// channel (BVALID/BREADY) is optional; when present the engine pulses a
// write response after each burst.
func (b Builder) Build(name string) (*Comp, error) {
	if b.entity == nil {
		panic("axislave: entity is not given")
	}
	if b.clock == nil {
		panic("axislave: clock is not given")
	}

	s := &Comp{
		name:      name,
		clock:     b.clock,
		storage:   b.storage,
		bigEndian: b.bigEndian,
		callback:  b.callback,
		logger:    b.logger,
	}
	if s.storage == nil {
		s.storage = memory.NewStorage(b.capacity)
	}

	required := []struct {
		dst  *hw.Line
		name string
	}{
		{&s.awaddr, "AWADDR"}, {&s.awlen, "AWLEN"}, {&s.awsize, "AWSIZE"},
		{&s.awburst, "AWBURST"}, {&s.awvalid, "AWVALID"},
		{&s.awready, "AWREADY"},
		{&s.wdata, "WDATA"}, {&s.wvalid, "WVALID"}, {&s.wready, "WREADY"},
		{&s.araddr, "ARADDR"}, {&s.arlen, "ARLEN"}, {&s.arsize, "ARSIZE"},
		{&s.arburst, "ARBURST"}, {&s.arvalid, "ARVALID"},
		{&s.arready, "ARREADY"},
		{&s.rdata, "RDATA"}, {&s.rvalid, "RVALID"}, {&s.rready, "RREADY"},
		{&s.rlast, "RLAST"},
	}
	for _, l := range required {
		bound, err := amba.MustBindLine(b.entity, name, l.name)
		if err != nil {
			return nil, errors.Wrap(err, "axislave")
		}
		*l.dst = bound
	}

	s.awprot = amba.BindLine(b.entity, name, "AWPROT")
	s.arprot = amba.BindLine(b.entity, name, "ARPROT")
	s.bvalid = amba.BindLine(b.entity, name, "BVALID")
	s.bready = amba.BindLine(b.entity, name, "BREADY")
	s.bresp = amba.BindLine(b.entity, name, "BRESP")

	s.awready.SetUint(1)
	s.wready.SetUint(0)
	s.arready.SetUint(1)
	s.rvalid.SetUint(0)
	s.rlast.SetUint(0)
	if s.bvalid != nil {
		s.bvalid.SetUint(0)
	}

	// Optional ID and response lines default to zero if present.
	if s.bresp != nil {
		s.bresp.SetUint(0)
	}
	for _, optional := range []string{"BID", "RID", "RRESP"} {
		if l := amba.BindLine(b.entity, name, optional); l != nil {
			l.SetUint(0)
		}
	}

	b.clock.Spawn(name+".WriteResponder", s.runWriteResponder)
	b.clock.Spawn(name+".ReadResponder", s.runReadResponder)

	return s, nil
}
