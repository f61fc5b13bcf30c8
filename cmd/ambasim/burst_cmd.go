package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/axislave"
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/simulation"
	"github.com/sarchlab/ambasim/timing"
)

var burstCmd = &cobra.Command{
	Use:   "burst",
	Short: "Run a write burst and read it back through an AXI4 slave.",
	Run: func(_ *cobra.Command, _ []string) {
		runBurstDemo()
	},
}

var burstMonitorFlag bool

func init() {
	burstCmd.Flags().BoolVar(&burstMonitorFlag, "monitor", false,
		"serve the emulation state over HTTP while running")
	rootCmd.AddCommand(burstCmd)
}

func runBurstDemo() {
	builder := simulation.MakeBuilder()
	if tracingEnabled() {
		builder = builder.WithOutputFileName(traceFileName())
	}
	if burstMonitorFlag {
		builder = builder.WithMonitoring()
	}
	sim := builder.Build()
	defer sim.Terminate()

	bench := sim.Bench()
	addAXI4Lines(bench, "S0", 32, 32)

	slaveBuilder := axislave.MakeBuilder().
		WithEntity(bench).
		WithClock(sim.Clock()).
		WithNewStorage(1 << 20).
		WithLogger(log.Default())
	if sim.Trace() != nil {
		slaveBuilder = slaveBuilder.WithCallback(
			sim.Trace().TransactionCallback("S0"))
	}
	if sim.Monitor() != nil {
		slaveBuilder = slaveBuilder.WithCallback(
			sim.Monitor().RecordTransaction)
	}

	slave, err := slaveBuilder.Build("S0")
	if err != nil {
		log.Fatal(err)
	}
	sim.RegisterEngine("S0", slave)

	if sim.Monitor() != nil {
		sim.Monitor().StartServer()
	}

	words := []uint64{0x11223344, 0x55667788, 0x99AABBCC, 0xDDEEFF00}
	beats := make([][]byte, len(words))
	for i, w := range words {
		beats[i] = []byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
	}

	driver := sim.Clock().Spawn("Driver", func(t *timing.Task) {
		driveWriteBurst(t, bench, "S0", 0x100, 2, beats)
		got := driveReadBurst(t, bench, "S0", 0x100, 2, len(beats))
		for i, beat := range got {
			fmt.Printf("beat %d: % x\n", i, beat)
		}
	})

	if !sim.Clock().RunUntil(driver, 1000) {
		log.Fatal("burst scenario did not finish")
	}
	if err := slave.Err(); err != nil {
		log.Fatal(err)
	}

	mem, err := slave.Storage().Read(0x100, 16)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("memory 0x100: % x\n", mem)
}

// addAXI4Lines registers the slave-profile lines of one AXI4 bus, with the
// given address and data widths in bits.
func addAXI4Lines(b *hw.Bench, bus string, addrWidth, dataWidth int) {
	for _, l := range []struct {
		name  string
		width int
	}{
		{"AWADDR", addrWidth}, {"AWLEN", 8}, {"AWSIZE", 3}, {"AWBURST", 2},
		{"AWVALID", 1}, {"AWREADY", 1},
		{"WDATA", dataWidth}, {"WVALID", 1}, {"WREADY", 1},
		{"BVALID", 1}, {"BREADY", 1}, {"BRESP", 2},
		{"ARADDR", addrWidth}, {"ARLEN", 8}, {"ARSIZE", 3}, {"ARBURST", 2},
		{"ARVALID", 1}, {"ARREADY", 1},
		{"RDATA", dataWidth}, {"RVALID", 1}, {"RREADY", 1}, {"RLAST", 1},
		{"RRESP", 2},
	} {
		b.AddLine(amba.LineName(bus, l.name), l.width)
	}
}

// driveWriteBurst plays the master side of one incrementing write burst.
func driveWriteBurst(
	t *timing.Task,
	e hw.Entity,
	bus string,
	addr, sizeCode uint64,
	beats [][]byte,
) {
	awaddr := amba.BindLine(e, bus, "AWADDR")
	awlen := amba.BindLine(e, bus, "AWLEN")
	awsize := amba.BindLine(e, bus, "AWSIZE")
	awburst := amba.BindLine(e, bus, "AWBURST")
	awvalid := amba.BindLine(e, bus, "AWVALID")
	awready := amba.BindLine(e, bus, "AWREADY")
	wdata := amba.BindLine(e, bus, "WDATA")
	wvalid := amba.BindLine(e, bus, "WVALID")
	wready := amba.BindLine(e, bus, "WREADY")
	bready := amba.BindLine(e, bus, "BREADY")

	t.WaitEdge()
	awaddr.SetUint(addr)
	awlen.SetUint(uint64(len(beats) - 1))
	awsize.SetUint(sizeCode)
	awburst.SetUint(uint64(amba.BurstIncr))
	awvalid.SetUint(1)
	if bready != nil {
		bready.SetUint(1)
	}

	for {
		t.WaitSettle()
		if awready.Uint() != 0 {
			break
		}
		t.WaitEdge()
	}
	t.WaitEdge()
	awvalid.SetUint(0)

	for _, beat := range beats {
		wdata.SetBytes(beat)
		wvalid.SetUint(1)
		for {
			t.WaitSettle()
			if wready.Uint() != 0 {
				break
			}
			t.WaitEdge()
		}
		t.WaitEdge()
	}
	wvalid.SetUint(0)
}

// driveReadBurst plays the master side of one incrementing read burst and
// returns the captured beats.
func driveReadBurst(
	t *timing.Task,
	e hw.Entity,
	bus string,
	addr, sizeCode uint64,
	length int,
) [][]byte {
	araddr := amba.BindLine(e, bus, "ARADDR")
	arlen := amba.BindLine(e, bus, "ARLEN")
	arsize := amba.BindLine(e, bus, "ARSIZE")
	arburst := amba.BindLine(e, bus, "ARBURST")
	arvalid := amba.BindLine(e, bus, "ARVALID")
	arready := amba.BindLine(e, bus, "ARREADY")
	rdata := amba.BindLine(e, bus, "RDATA")
	rvalid := amba.BindLine(e, bus, "RVALID")
	rready := amba.BindLine(e, bus, "RREADY")

	t.WaitEdge()
	araddr.SetUint(addr)
	arlen.SetUint(uint64(length - 1))
	arsize.SetUint(sizeCode)
	arburst.SetUint(uint64(amba.BurstIncr))
	arvalid.SetUint(1)
	rready.SetUint(1)

	for {
		t.WaitSettle()
		if arready.Uint() != 0 {
			break
		}
		t.WaitEdge()
	}
	t.WaitEdge()
	arvalid.SetUint(0)

	beats := make([][]byte, 0, length)
	for len(beats) < length {
		t.WaitSettle()
		if rvalid.Uint() != 0 {
			beats = append(beats, rdata.Bytes())
		}
		t.WaitEdge()
	}

	return beats
}
