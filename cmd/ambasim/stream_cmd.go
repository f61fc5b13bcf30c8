package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/axistream"
	"github.com/sarchlab/ambasim/simulation"
	"github.com/sarchlab/ambasim/timing"
)

var streamCmd = &cobra.Command{
	Use:   "stream [payload]",
	Short: "Send a payload over an AXI4-Stream bus and monitor it.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		payload := "AXI"
		if len(args) == 1 {
			payload = args[0]
		}
		runStreamDemo([]byte(payload))
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)
}

func runStreamDemo(payload []byte) {
	builder := simulation.MakeBuilder()
	if tracingEnabled() {
		builder = builder.WithOutputFileName(traceFileName())
	}
	sim := builder.Build()
	defer sim.Terminate()

	bench := sim.Bench()
	for _, l := range []struct {
		name  string
		width int
	}{
		{"TVALID", 1}, {"TREADY", 1}, {"TDATA", 8},
		{"TSTRB", 1}, {"TLAST", 1},
	} {
		bench.AddLine(amba.LineName("M0", l.name), l.width)
	}

	sink := &axistream.SliceSink{}
	monitorBuilder := axistream.MakeMonitorBuilder().
		WithEntity(bench).
		WithClock(sim.Clock()).
		WithSink(sink)
	if sim.Trace() != nil {
		monitorBuilder = monitorBuilder.WithSink(
			sim.Trace().StreamSink("M0"))
	}
	if _, err := monitorBuilder.Build("M0"); err != nil {
		log.Fatal(err)
	}

	master, err := axistream.MakeMasterBuilder().
		WithEntity(bench).
		WithClock(sim.Clock()).
		Build("M0")
	if err != nil {
		log.Fatal(err)
	}
	sim.RegisterEngine("M0", master)

	// The demo receiver is always ready.
	tready, _ := bench.Line(amba.LineName("M0", "TREADY"))
	tready.SetUint(1)

	sender := sim.Clock().Spawn("Sender", func(t *timing.Task) {
		if err := master.SendFrame(t, payload, axistream.FrameOpts{}); err != nil {
			log.Fatal(err)
		}
	})

	if !sim.Clock().RunUntil(sender, 10*len(payload)+10) {
		log.Fatal("stream scenario did not finish")
	}

	for i, beat := range sink.Beats {
		fmt.Printf("beat %d: %q\n", i, beat)
	}
}
