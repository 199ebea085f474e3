package ws

import "time"

// loopTimer is a wall-clock ports.Timer. Callbacks are handed to post instead of running on
// the timer goroutine, so they execute on the session's event loop.
type loopTimer struct {
	post func(func())
}

func (t loopTimer) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { t.post(fn) })
}
