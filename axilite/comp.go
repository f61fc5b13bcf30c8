package axilite

import (
	"log"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/timing"
)

// A Comp is an AXI4-Lite master engine bound to one bus instance.
//
// Each channel the master drives is guarded by its own lock, so writes and
// reads issued from concurrent tasks never interleave destructively on the
// same channel. The response channels are only sampled and need no lock.
type Comp struct {
	name   string
	clock  *timing.Clock
	logger *log.Logger

	awaddr, awvalid, awready hw.Line
	wdata, wvalid, wready    hw.Line
	wstrb                    hw.Line
	bvalid, bready, bresp    hw.Line
	araddr, arvalid, arready hw.Line
	rdata, rvalid, rready    hw.Line
	rresp                    hw.Line

	writeAddrBusy *timing.Lock
	writeDataBusy *timing.Lock
	readAddrBusy  *timing.Lock
}

// WriteOpts carries the optional parameters of a write.
type WriteOpts struct {
	// ByteEnable selects the bytes of the value to write. Zero means all
	// bytes enabled.
	ByteEnable uint64

	// AddressLatency and DataLatency delay the respective phase by a
	// number of clock edges.
	AddressLatency int
	DataLatency    int

	// NoSync skips the initial synchronizing clock edge.
	NoSync bool
}

// ReadOpts carries the optional parameters of a read.
type ReadOpts struct {
	NoSync bool
}

// Name returns the name of the bus the engine masters.
func (m *Comp) Name() string {
	return m.name
}

// Write writes value to addr with all bytes enabled and no extra latency.
func (m *Comp) Write(
	tk *timing.Task,
	addr, value uint64,
) (amba.Resp, error) {
	return m.WriteWith(tk, addr, value, WriteOpts{})
}

// WriteWith writes value to addr. The address phase and the data phase run
// as two concurrent tasks, each under its own channel lock; they may
// complete in either order. After both phases finish, the engine waits for
// the write response and returns its code. A nonzero code is also returned
// as a *amba.ProtocolError.
func (m *Comp) WriteWith(
	tk *timing.Task,
	addr, value uint64,
	opts WriteOpts,
) (amba.Resp, error) {
	byteEnable := opts.ByteEnable
	if byteEnable == 0 {
		byteEnable = allOnes(m.wstrb.Width())
	}

	if !opts.NoSync {
		tk.WaitEdge()
	}

	addrTask := m.clock.Spawn(m.name+".WriteAddr", func(t *timing.Task) {
		m.sendWriteAddress(t, addr, opts.AddressLatency)
	})
	dataTask := m.clock.Spawn(m.name+".WriteData", func(t *timing.Task) {
		m.sendWriteData(t, value, byteEnable, opts.DataLatency)
	})

	tk.Join(addrTask)
	tk.Join(dataTask)

	var resp amba.Resp
	for {
		tk.WaitSettle()
		if m.bvalid.Uint() != 0 && m.bready.Uint() != 0 {
			resp = amba.Resp(m.bresp.Uint())
			break
		}
		tk.WaitEdge()
	}
	tk.WaitEdge()

	if !resp.OK() {
		return resp, &amba.ProtocolError{Op: "write", Addr: addr, Resp: resp}
	}

	m.logf("write 0x%08x <- 0x%x", addr, value)

	return resp, nil
}

// sendWriteAddress drives one address phase: delay, assert AWADDR/AWVALID,
// hold until AWREADY is observed at a settle point, deassert on the
// following edge.
func (m *Comp) sendWriteAddress(t *timing.Task, addr uint64, delay int) {
	m.writeAddrBusy.Acquire(t)
	defer m.writeAddrBusy.Release(t)

	t.WaitEdges(delay)

	m.awaddr.SetUint(addr)
	m.awvalid.SetUint(1)

	for {
		t.WaitSettle()
		if m.awready.Uint() != 0 {
			break
		}
		t.WaitEdge()
	}
	t.WaitEdge()

	m.awvalid.SetUint(0)
}

// sendWriteData mirrors sendWriteAddress for the data channel.
func (m *Comp) sendWriteData(
	t *timing.Task,
	value, byteEnable uint64,
	delay int,
) {
	m.writeDataBusy.Acquire(t)
	defer m.writeDataBusy.Release(t)

	t.WaitEdges(delay)

	m.wdata.SetUint(value)
	m.wstrb.SetUint(byteEnable)
	m.wvalid.SetUint(1)

	for {
		t.WaitSettle()
		if m.wready.Uint() != 0 {
			break
		}
		t.WaitEdge()
	}
	t.WaitEdge()

	m.wvalid.SetUint(0)
}

// Read reads from addr, returning the captured data and response code. A
// nonzero code is also returned as a *amba.ProtocolError and the data is
// not valid.
func (m *Comp) Read(tk *timing.Task, addr uint64) (uint64, amba.Resp, error) {
	return m.ReadWith(tk, addr, ReadOpts{})
}

// ReadWith reads from addr.
func (m *Comp) ReadWith(
	tk *timing.Task,
	addr uint64,
	opts ReadOpts,
) (uint64, amba.Resp, error) {
	if !opts.NoSync {
		tk.WaitEdge()
	}

	m.readAddrBusy.Acquire(tk)

	m.araddr.SetUint(addr)
	m.arvalid.SetUint(1)

	for {
		tk.WaitSettle()
		if m.arready.Uint() != 0 {
			break
		}
		tk.WaitEdge()
	}
	tk.WaitEdge()

	m.arvalid.SetUint(0)
	m.readAddrBusy.Release(tk)

	var data uint64
	var resp amba.Resp
	for {
		tk.WaitSettle()
		if m.rvalid.Uint() != 0 && m.rready.Uint() != 0 {
			data = m.rdata.Uint()
			resp = amba.Resp(m.rresp.Uint())
			break
		}
		tk.WaitEdge()
	}

	if !resp.OK() {
		return 0, resp, &amba.ProtocolError{Op: "read", Addr: addr, Resp: resp}
	}

	m.logf("read  0x%08x -> 0x%x", addr, data)

	return data, resp, nil
}

func (m *Comp) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

func allOnes(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return (1 << width) - 1
}
