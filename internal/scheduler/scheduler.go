// Package scheduler runs the single tick-producer loop and fans the
// resulting snapshots out to subscribers without ever blocking on a slow
// one.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/veigaco/biomarket-cas/internal/engine"
)

// subscriberBuffer is how many pending snapshots a subscriber can lag by
// before it is dropped, mirroring the non-blocking-send-with-default
// pattern used by the push-channel hub.
const subscriberBuffer = 4

// Scheduler owns the drift-corrected loop described in the timing contract:
// it advances the engine at a fixed tick interval and publishes a snapshot
// every broadcastEvery ticks.
type Scheduler struct {
	eng            *engine.Engine
	log            *zap.Logger
	tickInterval   time.Duration
	broadcastEvery int

	mu          sync.Mutex
	subscribers map[chan engine.Snapshot]struct{}
}

// New constructs a Scheduler. broadcastEvery must be >= 1.
func New(eng *engine.Engine, log *zap.Logger, tickInterval time.Duration, broadcastEvery int) *Scheduler {
	if broadcastEvery < 1 {
		broadcastEvery = 1
	}
	return &Scheduler{
		eng:            eng,
		log:            log,
		tickInterval:   tickInterval,
		broadcastEvery: broadcastEvery,
		subscribers:    make(map[chan engine.Snapshot]struct{}),
	}
}

// Subscribe registers a new subscriber and returns a channel that will
// receive a snapshot every broadcast cadence, plus an unsubscribe func.
// The channel carries only the periodic broadcasts; no initial snapshot is
// queued on it at subscription time.
func (s *Scheduler) Subscribe() (ch <-chan engine.Snapshot, unsubscribe func()) {
	c := make(chan engine.Snapshot, subscriberBuffer)
	s.mu.Lock()
	s.subscribers[c] = struct{}{}
	s.mu.Unlock()

	return c, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[c]; ok {
			delete(s.subscribers, c)
			close(c)
		}
	}
}

// Run drives the drift-corrected loop until ctx is cancelled. It maintains
// next_tick = start + n*interval and sleeps max(0, next_tick-now), so
// scheduler error never accumulates across ticks.
func (s *Scheduler) Run(ctx context.Context) {
	nextTick := time.Now()
	tickCounter := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.tickOnce(&tickCounter)

		nextTick = nextTick.Add(s.tickInterval)
		sleepFor := time.Until(nextTick)
		if sleepFor < 0 {
			sleepFor = 0
		}

		timer := time.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) tickOnce(tickCounter *int) {
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Error("scheduler tick panic recovered", zap.Any("panic", r))
			}
		}
	}()

	s.eng.Tick()
	*tickCounter++

	if *tickCounter%s.broadcastEvery == 0 {
		s.broadcast(s.eng.Snapshot())
	}
}

// broadcast hands a snapshot to every subscriber without blocking; a
// subscriber that isn't keeping up is dropped rather than allowed to stall
// the producer.
func (s *Scheduler) broadcast(snap engine.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			delete(s.subscribers, ch)
			close(ch)
			if s.log != nil {
				s.log.Warn("dropped slow snapshot subscriber")
			}
		}
	}
}
