package devserver

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/faciam-dev/crudkit/internal/logger"
)

// Revocations remembers logged-out session IDs until the session would have
// expired anyway.
type Revocations struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

func NewRevocations() *Revocations {
	return &Revocations{ids: map[string]time.Time{}, now: time.Now}
}

// Revoke marks id as logged out until exp.
func (r *Revocations) Revoke(id string, exp time.Time) {
	if id == "" {
		return
	}
	r.mu.Lock()
	r.ids[id] = exp
	r.mu.Unlock()
}

func (r *Revocations) Revoked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

// Prune drops entries whose session has expired and returns how many were
// removed.
func (r *Revocations) Prune() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, exp := range r.ids {
		if !exp.After(now) {
			delete(r.ids, id)
			n++
		}
	}
	return n
}

func (r *Revocations) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// SchedulePrune registers a pruning job on s running every interval.
func (r *Revocations) SchedulePrune(s *gocron.Scheduler, every time.Duration) error {
	_, err := s.Every(every).Do(func() {
		if n := r.Prune(); n > 0 {
			logger.L.Debug("pruned revoked sessions", "count", n)
		}
	})
	return err
}
