package axislave

import (
	"log"

	"github.com/pkg/errors"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/memory"
	"github.com/sarchlab/ambasim/timing"
)

// A Comp is a memory-backed AXI4 slave engine bound to one bus instance.
//
// The two responder tasks run independently of each other and of any master
// transaction; ordering between them is only what the bus handshakes
// enforce. A responder that decodes an undefined burst-size code, or hits a
// storage fault, stops permanently and records the error; the process is
// never crashed by a bad transaction.
type Comp struct {
	name      string
	clock     *timing.Clock
	storage   *memory.Storage
	bigEndian bool
	callback  func(amba.Transaction)
	logger    *log.Logger

	awaddr, awlen, awsize     hw.Line
	awburst, awvalid, awready hw.Line
	awprot                    hw.Line
	wdata, wvalid, wready     hw.Line
	bvalid, bready, bresp     hw.Line
	araddr, arlen, arsize     hw.Line
	arburst, arvalid, arready hw.Line
	arprot                    hw.Line
	rdata, rvalid, rready     hw.Line
	rlast                     hw.Line

	writeErr error
	readErr  error
}

// Name returns the name of the bus the engine responds on.
func (s *Comp) Name() string {
	return s.name
}

// Storage returns the backing memory the engine services bursts against.
func (s *Comp) Storage() *memory.Storage {
	return s.storage
}

// Err returns the error that stopped a responder, if any.
func (s *Comp) Err() error {
	if s.writeErr != nil {
		return s.writeErr
	}

	return s.readErr
}

type burstHeader struct {
	addr        uint64
	length      int
	bytesInBeat uint64
	burst       amba.Burst
}

// decodeBurst reads the fields of an address-phase assertion. The burst
// type is validated but only incrementing addressing is honored. The
// protection attributes, when the profile carries them, are sampled for the
// debug log only.
func (s *Comp) decodeBurst(
	op string,
	addr, lenLine, sizeLine, burstLine, protLine hw.Line,
) (burstHeader, error) {
	h := burstHeader{
		addr:   addr.Uint(),
		length: int(lenLine.Uint()) + 1,
		burst:  amba.Burst(burstLine.Uint()),
	}

	bytesInBeat, err := amba.BytesInBeat(sizeLine.Uint())
	if err != nil {
		return h, errors.Wrapf(err, "%s burst at 0x%x", op, h.addr)
	}
	h.bytesInBeat = bytesInBeat

	if !h.burst.Valid() {
		return h, errors.Errorf(
			"%s burst at 0x%x: invalid burst type %d", op, h.addr, h.burst)
	}

	var prot uint64
	if protLine != nil {
		prot = protLine.Uint()
	}
	s.logf("%s burst: addr 0x%x len %d bytes/beat %d type %s prot %d",
		op, h.addr, h.length, h.bytesInBeat, h.burst, prot)

	return h, nil
}

// runWriteResponder services write bursts forever. Idle holds AWREADY high
// and WREADY low; a burst flips them, accepts one beat per cycle while
// WVALID holds at the settle point, and commits each beat to the backing
// memory at its burst-addressing range.
func (s *Comp) runWriteResponder(t *timing.Task) {
	for {
		s.awready.SetUint(1)
		s.wready.SetUint(0)

		for {
			t.WaitSettle()
			if s.awvalid.Uint() != 0 {
				break
			}
			t.WaitEdge()
		}

		h, err := s.decodeBurst(
			"write", s.awaddr, s.awlen, s.awsize, s.awburst, s.awprot)
		if err != nil {
			s.writeErr = err
			s.report(amba.Transaction{
				Addr: h.addr, Length: h.length, Burst: h.burst,
				Resp: amba.RespSLVERR, Write: true,
			})
			return
		}

		t.WaitEdge()
		s.awready.SetUint(0)
		s.wready.SetUint(1)

		payload := make([]byte, 0, uint64(h.length)*h.bytesInBeat)
		for count := h.length; count > 0; {
			t.WaitSettle()
			if s.wvalid.Uint() != 0 {
				beat := h.length - count
				start, _ := amba.BeatRange(h.addr, beat, h.bytesInBeat)

				data := s.beatToMemory(s.wdata.Bytes(), h.bytesInBeat)
				if err := s.storage.Write(start, data); err != nil {
					s.writeErr = err
					return
				}

				payload = append(payload, data...)
				count--
			}
			t.WaitEdge()
		}

		s.wready.SetUint(0)
		s.sendWriteResponse(t)

		s.report(amba.Transaction{
			Addr: h.addr, Data: payload, Length: h.length,
			BytesInBeat: h.bytesInBeat, Burst: h.burst,
			Resp: amba.RespOKAY, Write: true,
		})
	}
}

// sendWriteResponse pulses BVALID until BREADY is observed. Nothing is
// driven when the profile has no write-response channel.
func (s *Comp) sendWriteResponse(t *timing.Task) {
	if s.bvalid == nil {
		return
	}

	if s.bresp != nil {
		s.bresp.SetUint(uint64(amba.RespOKAY))
	}
	s.bvalid.SetUint(1)

	for {
		t.WaitSettle()
		if s.bready == nil || s.bready.Uint() != 0 {
			break
		}
		t.WaitEdge()
	}
	t.WaitEdge()

	s.bvalid.SetUint(0)
}

// runReadResponder services read bursts forever, mirroring the write
// responder: one beat per cycle while RREADY holds at the settle point,
// with RLAST asserted exactly on the final beat.
func (s *Comp) runReadResponder(t *timing.Task) {
	for {
		s.arready.SetUint(1)
		s.rvalid.SetUint(0)
		s.rlast.SetUint(0)

		for {
			t.WaitSettle()
			if s.arvalid.Uint() != 0 {
				break
			}
			t.WaitEdge()
		}

		h, err := s.decodeBurst(
			"read", s.araddr, s.arlen, s.arsize, s.arburst, s.arprot)
		if err != nil {
			s.readErr = err
			s.report(amba.Transaction{
				Addr: h.addr, Length: h.length, Burst: h.burst,
				Resp: amba.RespSLVERR,
			})
			return
		}

		t.WaitEdge()
		s.arready.SetUint(0)
		s.rvalid.SetUint(1)

		payload := make([]byte, 0, uint64(h.length)*h.bytesInBeat)
		for count := h.length; count > 0; {
			beat := h.length - count
			start, _ := amba.BeatRange(h.addr, beat, h.bytesInBeat)

			data, err := s.storage.Read(start, h.bytesInBeat)
			if err != nil {
				s.readErr = err
				s.rvalid.SetUint(0)
				return
			}

			s.rdata.SetBytes(s.beatToBus(data))
			if count == 1 {
				s.rlast.SetUint(1)
			}

			t.WaitSettle()
			if s.rready.Uint() != 0 {
				payload = append(payload, data...)
				count--
			}
			t.WaitEdge()
		}

		s.rvalid.SetUint(0)
		s.rlast.SetUint(0)

		s.report(amba.Transaction{
			Addr: h.addr, Data: payload, Length: h.length,
			BytesInBeat: h.bytesInBeat, Burst: h.burst,
			Resp: amba.RespOKAY,
		})
	}
}

// beatToMemory converts driven bus bytes into memory order, truncating the
// bus value to the beat size.
func (s *Comp) beatToMemory(busBytes []byte, bytesInBeat uint64) []byte {
	data := make([]byte, bytesInBeat)
	copy(data, busBytes)

	if s.bigEndian {
		reverse(data)
	}

	return data
}

// beatToBus converts memory bytes into the bus byte order.
func (s *Comp) beatToBus(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	if s.bigEndian {
		reverse(out)
	}

	return out
}

func (s *Comp) report(tr amba.Transaction) {
	if s.callback != nil {
		s.callback(tr)
	}
}

func (s *Comp) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
