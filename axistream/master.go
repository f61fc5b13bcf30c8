package axistream

import (
	"log"

	"github.com/pkg/errors"

	"github.com/sarchlab/ambasim/timing"
)

// A Beat carries the payload and sideband fields of one stream transfer.
// Fields whose lines are absent from the bus profile are ignored, except
// Data: sending data on a bus without TDATA is a configuration error.
type Beat struct {
	Data []byte

	// Strb and Keep are byte-validity masks. Zero means all bytes valid.
	Strb uint64
	Keep uint64

	Last bool
	ID   uint64
	Dest uint64
	User uint64

	// NoSync skips the synchronizing clock edge before the beat.
	NoSync bool
}

// FrameOpts carries the optional parameters of SendFrame.
type FrameOpts struct {
	ID     uint64
	Dest   uint64
	NoSync bool
}

// A Master drives an outbound AXI4-Stream byte stream.
type Master struct {
	name      string
	clock     *timing.Clock
	bus       streamBus
	bigEndian bool
	config    map[string]string
	logger    *log.Logger
}

// Name returns the name of the bus the engine drives.
func (m *Master) Name() string {
	return m.name
}

// DataWidth returns the data-bus width in bytes, or zero without TDATA.
func (m *Master) DataWidth() int {
	if m.bus.tdata == nil {
		return 0
	}

	return (m.bus.tdata.Width() + 7) / 8
}

// Send drives one beat: deassert TVALID, optionally wait a synchronizing
// edge, assert TVALID together with every present payload and sideband
// line, wait for TREADY at settle points if the profile has one (push-only
// otherwise), advance one edge, deassert TVALID.
func (m *Master) Send(tk *timing.Task, b Beat) error {
	if b.Data != nil && m.bus.tdata == nil {
		return errors.Errorf(
			"axistream: bus %s has no TDATA line", m.name)
	}

	m.bus.tvalid.SetUint(0)
	if !b.NoSync {
		tk.WaitEdge()
	}

	m.bus.tvalid.SetUint(1)
	if m.bus.tdata != nil && b.Data != nil {
		m.bus.tdata.SetBytes(m.beatBytes(b.Data))
	}
	if m.bus.tstrb != nil {
		m.bus.tstrb.SetUint(maskOrAllOnes(b.Strb, m.bus.tstrb.Width()))
	}
	if m.bus.tkeep != nil {
		m.bus.tkeep.SetUint(maskOrAllOnes(b.Keep, m.bus.tkeep.Width()))
	}
	if m.bus.tlast != nil {
		m.bus.tlast.SetUint(boolBit(b.Last))
	}
	if m.bus.tid != nil {
		m.bus.tid.SetUint(b.ID)
	}
	if m.bus.tdest != nil {
		m.bus.tdest.SetUint(b.Dest)
	}
	if m.bus.tuser != nil {
		m.bus.tuser.SetUint(b.User)
	}

	if m.bus.tready != nil {
		for {
			tk.WaitSettle()
			if m.bus.tready.Uint() != 0 {
				break
			}
			tk.WaitEdge()
		}
	}

	tk.WaitEdge()
	m.bus.tvalid.SetUint(0)

	m.logf("sent beat: % x last=%v", b.Data, b.Last)

	return nil
}

// SendFrame segments payload into beats sized to the data-bus byte width
// and sends them in order. Every beat but the last carries an all-ones
// strobe; the final, possibly partial, beat strobes only the populated low
// bytes and carries the last-beat marker.
func (m *Master) SendFrame(tk *timing.Task, payload []byte, o FrameOpts) error {
	if m.bus.tdata == nil {
		return errors.Errorf(
			"axistream: bus %s has no TDATA line", m.name)
	}

	width := m.DataWidth()

	for len(payload) > 0 {
		n := len(payload)
		if n > width {
			n = width
		}

		beat := Beat{
			Data:   payload[:n],
			ID:     o.ID,
			Dest:   o.Dest,
			NoSync: o.NoSync,
		}

		if len(payload) <= width {
			beat.Last = true
			beat.Strb = (1 << n) - 1
			payload = nil
		} else {
			payload = payload[n:]
		}

		if err := m.Send(tk, beat); err != nil {
			return err
		}
	}

	return nil
}

func (m *Master) beatBytes(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	if m.bigEndian {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}

func (m *Master) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

func maskOrAllOnes(mask uint64, width int) uint64 {
	if mask == 0 {
		return allOnes(width)
	}

	return mask
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
