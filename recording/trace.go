package recording

import (
	"encoding/hex"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/timing"
)

// Table names used by the trace helpers.
const (
	TransactionTable = "bus_transactions"
	StreamBeatTable  = "stream_beats"
)

// A TransactionEntry is one recorded burst.
type TransactionEntry struct {
	Cycle       uint64
	Bus         string
	Write       bool
	Addr        uint64
	Length      int
	BytesInBeat uint64
	Burst       string
	Resp        uint8
	Data        string
}

// A StreamBeatEntry is one recorded stream beat.
type StreamBeatEntry struct {
	Cycle uint64
	Bus   string
	Data  string
}

// A TraceRecorder adapts a Recorder into the shapes the engines produce: an
// amba.Transaction callback for the slave and a stream Sink per monitored
// bus.
type TraceRecorder struct {
	recorder Recorder
	clock    *timing.Clock
}

// NewTraceRecorder creates the two trace tables and returns the adapter.
func NewTraceRecorder(r Recorder, clock *timing.Clock) *TraceRecorder {
	t := &TraceRecorder{recorder: r, clock: clock}

	r.CreateTable(TransactionTable, TransactionEntry{})
	r.CreateTable(StreamBeatTable, StreamBeatEntry{})

	return t
}

// TransactionCallback returns a slave-engine callback recording every
// serviced burst of the named bus.
func (t *TraceRecorder) TransactionCallback(bus string) func(amba.Transaction) {
	return func(tr amba.Transaction) {
		t.recorder.Insert(TransactionTable, TransactionEntry{
			Cycle:       t.clock.CurrentCycle(),
			Bus:         bus,
			Write:       tr.Write,
			Addr:        tr.Addr,
			Length:      tr.Length,
			BytesInBeat: tr.BytesInBeat,
			Burst:       tr.Burst.String(),
			Resp:        uint8(tr.Resp),
			Data:        hex.EncodeToString(tr.Data),
		})
	}
}

// StreamSink returns a monitor sink recording every captured beat of the
// named bus.
func (t *TraceRecorder) StreamSink(bus string) *BeatSink {
	return &BeatSink{trace: t, bus: bus}
}

// Flush flushes the underlying recorder.
func (t *TraceRecorder) Flush() {
	t.recorder.Flush()
}

// A BeatSink records captured stream beats into the trace database.
type BeatSink struct {
	trace *TraceRecorder
	bus   string
}

// Capture records one beat.
func (s *BeatSink) Capture(data []byte) {
	s.trace.recorder.Insert(StreamBeatTable, StreamBeatEntry{
		Cycle: s.trace.clock.CurrentCycle(),
		Bus:   s.bus,
		Data:  hex.EncodeToString(data),
	})
}
