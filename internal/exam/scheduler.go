package exam

import (
	"sync"
	"time"
)

// Scheduler runs a callback at a fixed period until the returned stop
// function is called. Stopping guarantees no further callbacks begin; it is
// the single scoped-resource release a session uses on teardown.
type Scheduler interface {
	Start(period time.Duration, fn func()) (stop func())
}

// TickerScheduler schedules callbacks on a time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Start(period time.Duration, fn func()) (stop func()) {
	ticker := time.NewTicker(period)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
