package timing

import "fmt"

// A Lock is a binary mutual-exclusion primitive scoped to one logical bus
// channel. An engine acquires the lock before asserting the channel's
// control signals and releases it after deasserting them, so two
// transactions issued concurrently on the same channel never overlap their
// valid assertions.
//
// Contending tasks retry at each rising edge; among tasks waiting at the
// same edge, spawn order decides who acquires first.
type Lock struct {
	name   string
	holder *Task
}

// NewLock creates a released lock. The name only shows up in panic messages.
func NewLock(name string) *Lock {
	return &Lock{name: name}
}

// Acquire blocks t until the lock is free, then takes it.
func (l *Lock) Acquire(t *Task) {
	for l.holder != nil {
		t.WaitEdge()
	}

	l.holder = t
}

// TryAcquire takes the lock if it is free and reports whether it did.
func (l *Lock) TryAcquire(t *Task) bool {
	if l.holder != nil {
		return false
	}

	l.holder = t

	return true
}

// Release frees the lock. Releasing a lock held by another task, or not held
// at all, is a programming error.
func (l *Lock) Release(t *Task) {
	if l.holder != t {
		panic(fmt.Sprintf("lock %s released by task that does not hold it",
			l.name))
	}

	l.holder = nil
}

// Held reports whether some task currently holds the lock.
func (l *Lock) Held() bool {
	return l.holder != nil
}
