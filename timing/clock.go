// Package timing provides the clock that bus engines run against. The clock
// is both the edge source and a cooperative task scheduler: engines suspend
// on clock edges and on the per-cycle settle point, and the clock resumes
// them one at a time in spawn order. Only one task ever executes at once, so
// the model is deterministic and signal accesses need no locking.
//
// Each cycle has exactly two phases, in order: the rising edge and the
// settle point. Signal assertions belong right after an edge; sampling a
// partner's valid or ready line belongs at the settle point.
//
// There are no timeouts. A task polling for a condition that never becomes
// true stays suspended forever; Run still returns after its cycle count.
package timing

// A Clock generates the edge/settle sequence and schedules tasks on it.
type Clock struct {
	cycle uint64
	tasks []*Task
}

// NewClock creates a clock at cycle zero with no tasks.
func NewClock() *Clock {
	return &Clock{}
}

// CurrentCycle returns the number of completed Cycle calls.
func (c *Clock) CurrentCycle() uint64 {
	return c.cycle
}

// Spawn starts fn as a new task and runs it synchronously until its first
// suspension point (or until it returns). It may be called from outside the
// clock, before or between cycles, or from inside a running task, which
// gives fork semantics: the child runs first, the spawner continues once the
// child suspends.
func (c *Clock) Spawn(name string, fn func(t *Task)) *Task {
	t := &Task{
		clock:  c,
		name:   name,
		parked: make(chan struct{}),
		resume: make(chan struct{}),
	}
	c.tasks = append(c.tasks, t)

	go func() {
		fn(t)
		t.exit()
	}()

	c.waitParked(t)

	return t
}

// Cycle advances the clock by one cycle: every task waiting for an edge is
// resumed, then every task waiting for the settle point. Tasks resumed in a
// phase run to their next suspension before the next task is resumed.
func (c *Clock) Cycle() {
	c.cycle++
	c.runPhase(parkEdge)
	c.runPhase(parkSettle)
}

// Run advances the clock by n cycles.
func (c *Clock) Run(n int) {
	for i := 0; i < n; i++ {
		c.Cycle()
	}
}

// RunUntil advances the clock until t finishes, up to limit cycles. It
// reports whether the task finished.
func (c *Clock) RunUntil(t *Task, limit int) bool {
	for i := 0; i < limit && !t.finished; i++ {
		c.Cycle()
	}

	return t.finished
}

func (c *Clock) runPhase(reason parkReason) {
	waiting := make([]*Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if t.reason == reason {
			waiting = append(waiting, t)
		}
	}

	for _, t := range waiting {
		c.resumeTask(t)
	}
}

func (c *Clock) resumeTask(t *Task) {
	t.reason = parkNone
	t.resume <- struct{}{}
	c.waitParked(t)
}

// waitParked blocks until t suspends again or returns. A finished task
// immediately hands control to its joiners, still within the current phase.
func (c *Clock) waitParked(t *Task) {
	<-t.parked

	if t.finished {
		c.removeTask(t)
		c.resumeJoiners(t)
	}
}

func (c *Clock) resumeJoiners(t *Task) {
	joiners := make([]*Task, 0)
	for _, j := range c.tasks {
		if j.reason == parkJoin && j.joinee == t {
			joiners = append(joiners, j)
		}
	}

	for _, j := range joiners {
		c.resumeTask(j)
	}
}

func (c *Clock) removeTask(t *Task) {
	for i, x := range c.tasks {
		if x == t {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return
		}
	}
}
