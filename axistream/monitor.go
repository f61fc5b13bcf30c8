package axistream

import (
	"log"

	"github.com/sarchlab/ambasim/timing"
)

// A Sink receives the beats a Monitor captures, one call per successful
// handshake, in bus order.
type Sink interface {
	Capture(data []byte)
}

// A SliceSink collects captured beats in memory.
type SliceSink struct {
	Beats [][]byte
}

// Capture appends one beat.
func (s *SliceSink) Capture(data []byte) {
	s.Beats = append(s.Beats, data)
}

// A Monitor passively samples an inbound AXI4-Stream bus. Each cycle, after
// the edge and at the settle point, it evaluates the handshake -- TVALID
// together with TREADY when the profile has a ready line, TVALID alone
// otherwise -- and on success delivers the TDATA bytes to every sink. There
// is no buffering beyond the current beat.
type Monitor struct {
	name   string
	bus    streamBus
	sinks  []Sink
	logger *log.Logger
}

// Name returns the name of the bus the monitor samples.
func (m *Monitor) Name() string {
	return m.name
}

// AddSink registers an additional sink. Sinks added mid-stream only see
// beats captured after registration.
func (m *Monitor) AddSink(s Sink) {
	m.sinks = append(m.sinks, s)
}

func (m *Monitor) run(t *timing.Task) {
	for {
		t.WaitEdge()
		t.WaitSettle()

		if !m.handshake() {
			continue
		}

		data := m.bus.tdata.Bytes()
		m.logf("captured beat: % x", data)

		for _, s := range m.sinks {
			s.Capture(data)
		}
	}
}

func (m *Monitor) handshake() bool {
	if m.bus.tvalid.Uint() == 0 {
		return false
	}

	if m.bus.tready != nil {
		return m.bus.tready.Uint() != 0
	}

	return true
}

func (m *Monitor) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
