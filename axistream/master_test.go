package axistream_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/axistream"
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/timing"
)

func addStreamLines(b *hw.Bench, bus string, dataWidth int, names ...string) {
	b.AddLine(amba.LineName(bus, "TVALID"), 1)
	for _, n := range names {
		switch n {
		case "TDATA":
			b.AddLine(amba.LineName(bus, n), dataWidth)
		case "TSTRB", "TKEEP":
			b.AddLine(amba.LineName(bus, n), (dataWidth+7)/8)
		default:
			b.AddLine(amba.LineName(bus, n), 1)
		}
	}
}

// beatRecord is one transfer observed at a settle point.
type beatRecord struct {
	data []byte
	strb uint64
	last bool
}

// spawnObserver samples the bus every cycle and records the data, strobe,
// and last marker of each successful handshake.
func spawnObserver(
	c *timing.Clock,
	e hw.Entity,
	bus string,
	out *[]beatRecord,
) {
	tvalid := amba.BindLine(e, bus, "TVALID")
	tready := amba.BindLine(e, bus, "TREADY")
	tdata := amba.BindLine(e, bus, "TDATA")
	tstrb := amba.BindLine(e, bus, "TSTRB")
	tlast := amba.BindLine(e, bus, "TLAST")

	c.Spawn(bus+".Observer", func(t *timing.Task) {
		for {
			t.WaitEdge()
			t.WaitSettle()

			if tvalid.Uint() == 0 {
				continue
			}
			if tready != nil && tready.Uint() == 0 {
				continue
			}

			rec := beatRecord{data: tdata.Bytes()}
			if tstrb != nil {
				rec.strb = tstrb.Uint()
			}
			if tlast != nil {
				rec.last = tlast.Uint() != 0
			}
			*out = append(*out, rec)
		}
	})
}

var _ = Describe("AXI4-Stream master", func() {
	var (
		bench *hw.Bench
		clock *timing.Clock
	)

	BeforeEach(func() {
		bench = hw.NewBench()
		clock = timing.NewClock()
	})

	It("should segment a frame into beats with last on the final one", func() {
		addStreamLines(bench, "T0", 8, "TREADY", "TDATA", "TSTRB", "TLAST")
		amba.BindLine(bench, "T0", "TREADY").SetUint(1)

		var seen []beatRecord
		spawnObserver(clock, bench, "T0", &seen)

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		driver := clock.Spawn("Driver", func(t *timing.Task) {
			Expect(master.SendFrame(t, []byte("AXI"), axistream.FrameOpts{})).
				To(Succeed())
		})

		Expect(clock.RunUntil(driver, 100)).To(BeTrue())
		Expect(seen).To(HaveLen(3))
		Expect(seen[0].data).To(Equal([]byte{'A'}))
		Expect(seen[1].data).To(Equal([]byte{'X'}))
		Expect(seen[2].data).To(Equal([]byte{'I'}))
		Expect(seen[0].last).To(BeFalse())
		Expect(seen[1].last).To(BeFalse())
		Expect(seen[2].last).To(BeTrue())
	})

	It("should strobe only the populated bytes of a partial final beat", func() {
		addStreamLines(bench, "T0", 32, "TREADY", "TDATA", "TSTRB", "TLAST")
		amba.BindLine(bench, "T0", "TREADY").SetUint(1)

		var seen []beatRecord
		spawnObserver(clock, bench, "T0", &seen)

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		driver := clock.Spawn("Driver", func(t *timing.Task) {
			payload := []byte{1, 2, 3, 4, 5, 6}
			Expect(master.SendFrame(t, payload, axistream.FrameOpts{})).
				To(Succeed())
		})

		Expect(clock.RunUntil(driver, 100)).To(BeTrue())
		Expect(seen).To(HaveLen(2))
		Expect(seen[0].data).To(Equal([]byte{1, 2, 3, 4}))
		Expect(seen[0].strb).To(Equal(uint64(0b1111)))
		Expect(seen[0].last).To(BeFalse())
		Expect(seen[1].data[:2]).To(Equal([]byte{5, 6}))
		Expect(seen[1].strb).To(Equal(uint64(0b0011)))
		Expect(seen[1].last).To(BeTrue())
	})

	It("should hold a beat until the receiver is ready", func() {
		addStreamLines(bench, "T0", 8, "TREADY", "TDATA")
		tready := amba.BindLine(bench, "T0", "TREADY")
		tready.SetUint(0)

		var seen []beatRecord
		spawnObserver(clock, bench, "T0", &seen)

		clock.Spawn("Receiver", func(t *timing.Task) {
			t.WaitEdges(4)
			tready.SetUint(1)
		})

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		driver := clock.Spawn("Driver", func(t *timing.Task) {
			Expect(master.Send(t, axistream.Beat{Data: []byte{0x5A}})).
				To(Succeed())
		})

		Expect(clock.RunUntil(driver, 100)).To(BeTrue())
		Expect(seen).To(HaveLen(1))
		Expect(seen[0].data).To(Equal([]byte{0x5A}))
		Expect(clock.CurrentCycle()).To(BeNumerically(">=", 4))
	})

	It("should push beats without a ready line", func() {
		addStreamLines(bench, "T0", 8, "TDATA")

		var seen []beatRecord
		spawnObserver(clock, bench, "T0", &seen)

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		driver := clock.Spawn("Driver", func(t *timing.Task) {
			Expect(master.Send(t, axistream.Beat{Data: []byte{0xA5}})).
				To(Succeed())
		})

		Expect(clock.RunUntil(driver, 100)).To(BeTrue())
		Expect(seen).To(HaveLen(1))
	})

	It("should reject data on a bus without a data line", func() {
		addStreamLines(bench, "T0", 8)

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		var sendErr error
		driver := clock.Spawn("Driver", func(t *timing.Task) {
			sendErr = master.Send(t, axistream.Beat{Data: []byte{1}})
		})

		Expect(clock.RunUntil(driver, 10)).To(BeTrue())
		Expect(sendErr).To(HaveOccurred())
		Expect(sendErr.Error()).To(ContainSubstring("no TDATA"))
	})

	It("should reverse beat bytes on a big-endian bus", func() {
		addStreamLines(bench, "T0", 32, "TREADY", "TDATA")
		amba.BindLine(bench, "T0", "TREADY").SetUint(1)

		var seen []beatRecord
		spawnObserver(clock, bench, "T0", &seen)

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			WithBigEndian().
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		driver := clock.Spawn("Driver", func(t *timing.Task) {
			Expect(master.Send(t, axistream.Beat{
				Data: []byte{0x11, 0x22, 0x33, 0x44},
			})).To(Succeed())
		})

		Expect(clock.RunUntil(driver, 100)).To(BeTrue())
		Expect(seen).To(HaveLen(1))
		Expect(seen[0].data).To(Equal([]byte{0x44, 0x33, 0x22, 0x11}))
	})
})

var _ = Describe("AXI4-Stream monitor", func() {
	var (
		bench *hw.Bench
		clock *timing.Clock
	)

	BeforeEach(func() {
		bench = hw.NewBench()
		clock = timing.NewClock()
	})

	It("should capture handshaken beats into a slice sink", func() {
		addStreamLines(bench, "T0", 8, "TREADY", "TDATA", "TSTRB", "TLAST")
		amba.BindLine(bench, "T0", "TREADY").SetUint(1)

		sink := &axistream.SliceSink{}
		_, err := axistream.MakeMonitorBuilder().
			WithEntity(bench).
			WithClock(clock).
			WithSink(sink).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		driver := clock.Spawn("Driver", func(t *timing.Task) {
			Expect(master.SendFrame(t, []byte("AXI"), axistream.FrameOpts{})).
				To(Succeed())
		})

		Expect(clock.RunUntil(driver, 100)).To(BeTrue())
		Expect(sink.Beats).To(Equal([][]byte{{'A'}, {'X'}, {'I'}}))
	})

	It("should not capture while the receiver is stalled", func() {
		addStreamLines(bench, "T0", 8, "TREADY", "TDATA")
		tready := amba.BindLine(bench, "T0", "TREADY")
		tready.SetUint(0)

		sink := &axistream.SliceSink{}
		_, err := axistream.MakeMonitorBuilder().
			WithEntity(bench).
			WithClock(clock).
			WithSink(sink).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		clock.Spawn("Receiver", func(t *timing.Task) {
			t.WaitEdges(5)
			tready.SetUint(1)
		})
		driver := clock.Spawn("Driver", func(t *timing.Task) {
			Expect(master.Send(t, axistream.Beat{Data: []byte{0x42}})).
				To(Succeed())
		})

		Expect(clock.RunUntil(driver, 100)).To(BeTrue())
		Expect(sink.Beats).To(HaveLen(1))
	})

	It("should deliver beats to every registered sink in order", func() {
		addStreamLines(bench, "T0", 8, "TREADY", "TDATA", "TLAST")
		amba.BindLine(bench, "T0", "TREADY").SetUint(1)

		ctrl := gomock.NewController(GinkgoT())
		sink := NewMockSink(ctrl)
		gomock.InOrder(
			sink.EXPECT().Capture([]byte{'A'}),
			sink.EXPECT().Capture([]byte{'X'}),
			sink.EXPECT().Capture([]byte{'I'}),
		)

		monitor, err := axistream.MakeMonitorBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())
		monitor.AddSink(sink)

		master, err := axistream.MakeMasterBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")
		Expect(err).ToNot(HaveOccurred())

		driver := clock.Spawn("Driver", func(t *timing.Task) {
			Expect(master.SendFrame(t, []byte("AXI"), axistream.FrameOpts{})).
				To(Succeed())
		})

		Expect(clock.RunUntil(driver, 100)).To(BeTrue())
	})

	It("should require a data line", func() {
		addStreamLines(bench, "T0", 8, "TREADY")

		_, err := axistream.MakeMonitorBuilder().
			WithEntity(bench).
			WithClock(clock).
			Build("T0")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("TDATA"))
	})
})
