package core

import "runtime"

// currentGoroutineID returns the current goroutine's ID by parsing the
// "goroutine N" header of a single-frame stack dump. Go deliberately
// hides goroutine identity, and the pool only needs it for two things:
// routing worker self-submissions to the worker's own queue, and
// detecting reentrant TaskSet.Wait calls so the waiter drains instead
// of parking.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
