// Package gameserver drives level sessions in real time: a fixed-rate tick
// loop, an input mailbox, snapshot subscribers and level progression.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/input"
	"github.com/cory-johannsen/skirmish/internal/game/level"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/progress"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// ErrLevelLocked is returned when the start level has not been unlocked.
var ErrLevelLocked = errors.New("level locked")

// ErrUnknownLevel is returned when a level number is not in the catalog.
var ErrUnknownLevel = errors.New("unknown level")

// Runner plays the campaign: it runs one session at a time at the configured
// tick rate, advances to the next level on victory and restarts the same
// level after a delay on defeat.
//
// Submit, Subscribe and Unsubscribe are safe for concurrent use with Start.
type Runner struct {
	sim     config.SimulationConfig
	catalog *level.Catalog
	store   progress.Store
	scripts *scripting.Manager
	logger  *zap.Logger

	inbox mailbox

	mu          sync.Mutex
	subscribers map[chan<- session.Snapshot]struct{}
	current     int
	cancel      context.CancelFunc
}

// NewRunner creates a stopped Runner.
//
// Precondition: sim.TickRate > 0; catalog, store and logger are non-nil.
// scripts may be nil, in which case sessions run without hooks.
func NewRunner(sim config.SimulationConfig, catalog *level.Catalog, store progress.Store, scripts *scripting.Manager, logger *zap.Logger) *Runner {
	if sim.TickRate <= 0 {
		panic("gameserver.NewRunner: tick rate must be > 0")
	}
	return &Runner{
		sim:         sim,
		catalog:     catalog,
		store:       store,
		scripts:     scripts,
		logger:      logger,
		subscribers: make(map[chan<- session.Snapshot]struct{}),
	}
}

// Submit queues in as the input for the next tick.
func (r *Runner) Submit(in input.Snapshot) { r.inbox.put(in) }

// Subscribe registers ch to receive the snapshot after every tick.
// If ch is full the snapshot is dropped for that subscriber (non-blocking).
//
// Precondition: ch must not be nil.
func (r *Runner) Subscribe(ch chan<- session.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (r *Runner) Unsubscribe(ch chan<- session.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, ch)
}

// Level returns the number of the level being played, or 0 before Start.
func (r *Runner) Level() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Start plays from sim.StartLevel until ctx is cancelled, Stop is called, or
// the last catalog level is won.
//
// Postcondition: Returns nil when the campaign completes or the runner is
// stopped; ErrLevelLocked or ErrUnknownLevel (wrapped) when a level cannot
// be started; any store error otherwise.
func (r *Runner) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()

	n := r.sim.StartLevel
	for {
		outcome, err := r.play(ctx, n)
		if err != nil {
			return err
		}
		switch outcome {
		case session.Victory:
			next, ok := r.catalog.Next(n)
			if !ok {
				r.logger.Info("campaign complete", zap.Int("level", n))
				return nil
			}
			if err := r.store.Unlock(ctx, next); err != nil {
				return fmt.Errorf("unlocking level %d: %w", next, err)
			}
			r.logger.Info("level unlocked", zap.Int("level", next))
			n = next
		case session.Defeat:
			r.logger.Info("restarting level",
				zap.Int("level", n),
				zap.Duration("delay", r.sim.RestartDelay),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.sim.RestartDelay):
			}
		default:
			return nil
		}
	}
}

// Stop ends Start. Calling Stop is idempotent.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// play runs level n to a terminal status. It returns Ongoing when ctx ends first.
func (r *Runner) play(ctx context.Context, n int) (session.Status, error) {
	cfg, ok := r.catalog.Get(n)
	if !ok {
		return session.Ongoing, fmt.Errorf("level %d: %w", n, ErrUnknownLevel)
	}
	unlocked, err := r.store.IsUnlocked(ctx, n)
	if err != nil {
		return session.Ongoing, fmt.Errorf("checking unlock for level %d: %w", n, err)
	}
	if !unlocked {
		return session.Ongoing, fmt.Errorf("level %d: %w", n, ErrLevelLocked)
	}

	opts := []session.Option{session.WithLogger(r.logger)}
	if r.scripts != nil {
		opts = append(opts, session.WithHooks(scriptHooks{scripts: r.scripts, level: n}))
	}
	s := session.New(cfg, r.source(n), opts...)

	r.mu.Lock()
	r.current = n
	r.mu.Unlock()
	r.inbox.reset()

	ticker := time.NewTicker(r.sim.TickInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return session.Ongoing, nil
		case <-ticker.C:
			st := s.Tick(r.inbox.take())
			r.publish(s.Snapshot())
			if st != session.Ongoing {
				return st, nil
			}
		}
	}
}

// source returns the randomness for level n. Draws are logged when the
// runner's logger has debug enabled.
func (r *Runner) source(n int) dice.Source {
	var src dice.Source
	if r.sim.Seed == 0 {
		src = dice.NewCryptoSource()
	} else {
		src = dice.NewSeededSource(r.sim.Seed + uint64(n))
	}
	if r.logger.Core().Enabled(zapcore.DebugLevel) {
		src = dice.NewLoggedSource(src, r.logger.Named("dice"))
	}
	return src
}

func (r *Runner) publish(snap session.Snapshot) {
	r.mu.Lock()
	subs := make([]chan<- session.Snapshot, 0, len(r.subscribers))
	for ch := range r.subscribers {
		subs = append(subs, ch)
	}
	r.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
