package challenges

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes expired challenges so abandoned mints do not
// accumulate. The request path checks expiry on its own; the sweep only
// reclaims rows, so the two can interleave freely.
type Sweeper struct {
	store    *Store
	expiry   time.Duration
	interval time.Duration
	log      *zap.SugaredLogger
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewSweeper builds a sweeper. The interval is fixed and independent of the
// expiry duration; expiry must match the value the request path checks with.
func NewSweeper(store *Store, expiry, interval time.Duration, log *zap.SugaredLogger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		store:    store,
		expiry:   expiry,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Start launches the background loop. The first sweep happens one full
// interval after start, not immediately.
func (s *Sweeper) Start() {
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run()
}

// Stop terminates the loop and waits for any sweep in flight to finish.
func (s *Sweeper) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := s.now().Add(-s.expiry)
	removed, remaining, err := s.store.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.log.Warnw("challenge sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.log.Infow("challenge sweep", "removed", removed, "remaining", remaining)
	} else {
		s.log.Debugw("challenge sweep", "removed", removed, "remaining", remaining)
	}
}
