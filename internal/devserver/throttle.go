package devserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// throttle limits login attempts per user name. A zero interval disables it.
type throttle struct {
	every time.Duration
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newThrottle(every time.Duration, burst int) *throttle {
	if burst <= 0 {
		burst = 5
	}
	return &throttle{every: every, burst: burst, limiters: map[string]*rate.Limiter{}}
}

func (t *throttle) allow(username string) bool {
	if t.every <= 0 {
		return true
	}
	t.mu.Lock()
	l, ok := t.limiters[username]
	if !ok {
		l = rate.NewLimiter(rate.Every(t.every), t.burst)
		t.limiters[username] = l
	}
	t.mu.Unlock()
	return l.Allow()
}
