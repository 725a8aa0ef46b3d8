package app

import (
	"sync"
	"time"
)

// countdown calls fn on every interval until stopped. Stop never waits for the
// goroutine, so it is safe to call while holding a lock fn also takes; the
// engine discards ticks from stopped countdowns by generation.
type countdown struct {
	stop chan struct{}
	once sync.Once
}

func startCountdown(every time.Duration, fn func()) *countdown {
	c := &countdown{stop: make(chan struct{})}
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-t.C:
				fn()
			}
		}
	}()
	return c
}

func (c *countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
}
