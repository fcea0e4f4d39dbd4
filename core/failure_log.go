package core

import "sync"

const defaultFailureLogCapacity = 16

// failureLog retains task failures for a TaskSet: the first failure is
// what Wait re-surfaces, the next few are kept for diagnostics and any
// beyond capacity are counted but dropped. Completion order within a
// single waiter is deterministic because add serializes under the
// mutex.
type failureLog struct {
	mu    sync.Mutex
	items []error
	count int
	total int
}

func newFailureLog(capacity int) failureLog {
	if capacity < 1 {
		capacity = defaultFailureLogCapacity
	}
	return failureLog{items: make([]error, capacity)}
}

func (l *failureLog) add(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total++
	if l.count < len(l.items) {
		l.items[l.count] = err
		l.count++
	}
}

func (l *failureLog) first() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		return nil
	}
	return l.items[0]
}

func (l *failureLog) all() []error {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]error, l.count)
	copy(out, l.items[:l.count])
	return out
}

// totalCount reports every failure ever recorded, including dropped ones.
func (l *failureLog) totalCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}
