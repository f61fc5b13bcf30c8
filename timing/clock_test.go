package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Clock", func() {
	var clock *Clock

	BeforeEach(func() {
		clock = NewClock()
	})

	It("should run a spawned task until its first suspension", func() {
		trace := make([]string, 0)

		clock.Spawn("T", func(t *Task) {
			trace = append(trace, "started")
			t.WaitEdge()
			trace = append(trace, "after edge")
		})

		Expect(trace).To(Equal([]string{"started"}))

		clock.Cycle()

		Expect(trace).To(Equal([]string{"started", "after edge"}))
	})

	It("should run the edge phase before the settle phase", func() {
		trace := make([]string, 0)

		clock.Spawn("Settle", func(t *Task) {
			t.WaitSettle()
			trace = append(trace, "settle")
		})
		clock.Spawn("Edge", func(t *Task) {
			t.WaitEdge()
			trace = append(trace, "edge")
		})

		clock.Cycle()

		Expect(trace).To(Equal([]string{"edge", "settle"}))
	})

	It("should let a task see the settle point of the cycle it woke in", func() {
		cycles := make([]uint64, 0)

		clock.Spawn("T", func(t *Task) {
			for i := 0; i < 3; i++ {
				t.WaitEdge()
				t.WaitSettle()
				cycles = append(cycles, t.clock.CurrentCycle())
			}
		})

		clock.Run(3)

		Expect(cycles).To(Equal([]uint64{1, 2, 3}))
	})

	It("should resume tasks of one phase in spawn order", func() {
		trace := make([]string, 0)

		for _, name := range []string{"A", "B", "C"} {
			n := name
			clock.Spawn(n, func(t *Task) {
				t.WaitEdge()
				trace = append(trace, n)
			})
		}

		clock.Cycle()

		Expect(trace).To(Equal([]string{"A", "B", "C"}))
	})

	It("should give fork semantics to Spawn from inside a task", func() {
		trace := make([]string, 0)

		clock.Spawn("Parent", func(t *Task) {
			t.WaitEdge()
			trace = append(trace, "parent before fork")

			clock.Spawn("Child", func(c *Task) {
				trace = append(trace, "child until first wait")
				c.WaitEdge()
				trace = append(trace, "child after edge")
			})

			trace = append(trace, "parent after fork")
		})

		clock.Cycle()

		Expect(trace).To(Equal([]string{
			"parent before fork",
			"child until first wait",
			"parent after fork",
		}))
	})

	It("should join a parent on its children in either order", func() {
		done := make([]string, 0)

		slow := clock.Spawn("Slow", func(t *Task) {
			t.WaitEdges(3)
			done = append(done, "slow")
		})
		fast := clock.Spawn("Fast", func(t *Task) {
			t.WaitEdge()
			done = append(done, "fast")
		})

		parent := clock.Spawn("Parent", func(t *Task) {
			t.Join(slow)
			t.Join(fast)
			done = append(done, "parent")
		})

		Expect(clock.RunUntil(parent, 10)).To(BeTrue())
		Expect(done).To(Equal([]string{"fast", "slow", "parent"}))
		Expect(clock.CurrentCycle()).To(Equal(uint64(3)))
	})

	It("should return immediately when joining a finished task", func() {
		child := clock.Spawn("Child", func(t *Task) {})

		joined := false
		clock.Spawn("Parent", func(t *Task) {
			t.Join(child)
			joined = true
		})

		Expect(joined).To(BeTrue())
	})

	It("should leave a forever-waiting task suspended without blocking Run", func() {
		resumes := 0

		blocked := clock.Spawn("Blocked", func(t *Task) {
			for {
				t.WaitEdge()
				resumes++
			}
		})

		clock.Run(5)

		Expect(blocked.Finished()).To(BeFalse())
		Expect(resumes).To(Equal(5))
		Expect(clock.CurrentCycle()).To(Equal(uint64(5)))
	})

	It("should stop RunUntil as soon as the task finishes", func() {
		task := clock.Spawn("T", func(t *Task) {
			t.WaitEdges(2)
		})

		Expect(clock.RunUntil(task, 100)).To(BeTrue())
		Expect(clock.CurrentCycle()).To(Equal(uint64(2)))
	})

	It("should report an unfinished task from RunUntil", func() {
		task := clock.Spawn("T", func(t *Task) {
			for {
				t.WaitEdge()
			}
		})

		Expect(clock.RunUntil(task, 10)).To(BeFalse())
	})
})
