package timing

// parkReason tells the clock what a suspended task is waiting for.
type parkReason uint8

const (
	parkNone parkReason = iota
	parkEdge
	parkSettle
	parkJoin
)

// A Task is one cooperative thread of control driven by a Clock. Tasks run
// strictly one at a time: a task only executes between being resumed by the
// clock and its next suspension point, so tasks never race on signal values.
type Task struct {
	clock  *Clock
	name   string
	reason parkReason
	joinee *Task

	// parked carries control back to whoever resumed the task. resume
	// carries control into the task.
	parked   chan struct{}
	resume   chan struct{}
	finished bool
}

// Name returns the name the task was spawned with.
func (t *Task) Name() string {
	return t.name
}

// Finished reports whether the task function has returned.
func (t *Task) Finished() bool {
	return t.finished
}

// WaitEdge suspends the task until the next rising clock edge.
func (t *Task) WaitEdge() {
	t.park(parkEdge)
}

// WaitEdges suspends the task for n rising clock edges.
func (t *Task) WaitEdges(n int) {
	for i := 0; i < n; i++ {
		t.WaitEdge()
	}
}

// WaitSettle suspends the task until the next point at which all signal
// values for the cycle have settled. The settle point of a cycle always
// falls after that cycle's rising edge and before the next one, so the
// pattern "assert after WaitEdge, sample after WaitSettle" observes values
// driven in the same cycle.
func (t *Task) WaitSettle() {
	t.park(parkSettle)
}

// Join suspends the task until other finishes. Returns immediately if it
// already has.
func (t *Task) Join(other *Task) {
	if other.finished {
		return
	}

	t.joinee = other
	t.park(parkJoin)
	t.joinee = nil
}

func (t *Task) park(reason parkReason) {
	t.reason = reason
	t.parked <- struct{}{}
	<-t.resume
}

func (t *Task) exit() {
	t.finished = true
	t.parked <- struct{}{}
}
