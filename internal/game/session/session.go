// Package session binds the simulation components into one LevelSession:
// the aggregate constructed fresh per level and torn down by dropping it.
// Tick runs the phases in a fixed order; genre rules plug into each phase.
package session

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ballistics"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/economy"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/input"
	"github.com/cory-johannsen/skirmish/internal/game/level"
)

// Status is the terminal signal raised once per tick.
type Status uint8

const (
	Ongoing Status = iota
	Victory
	Defeat
)

func (s Status) String() string {
	switch s {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "ongoing"
	}
}

// shotMargin is how far past the field edge a projectile survives.
const shotMargin = 10

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithHooks installs level hooks.
func WithHooks(h Hooks) Option {
	return func(s *Session) { s.hooks = h }
}

// WithID fixes the session identity.
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.id = id }
}

// rules is one genre's contribution to each tick phase. Every method is
// called exactly once per tick in phase order, except moved, which is called
// for each actor whose motion reported a non-Moving outcome.
type rules interface {
	setup(s *Session)
	command(s *Session)
	moved(s *Session, a *actor.Actor, o actor.Outcome)
	afterMove(s *Session)
	fire(s *Session)
	collide(s *Session)
	schedule(s *Session)
	detect(s *Session)
	status(s *Session) Status
	view(s *Session, snap *Snapshot)
}

// baseRules supplies no-op phases for genres that ignore them.
type baseRules struct{}

func (baseRules) setup(*Session) {}
func (baseRules) command(*Session) {}
func (baseRules) moved(*Session, *actor.Actor, actor.Outcome) {}
func (baseRules) afterMove(*Session) {}
func (baseRules) fire(*Session) {}
func (baseRules) collide(*Session) {}
func (baseRules) schedule(*Session) {}
func (baseRules) detect(*Session) {}
func (baseRules) view(*Session, *Snapshot) {}

func (baseRules) status(s *Session) Status {
	if s.player != nil && !s.player.Alive() {
		return Defeat
	}
	return Ongoing
}

// Session is one running level.
//
// A Session is driven by a single goroutine and is not safe for concurrent use.
type Session struct {
	id     uuid.UUID
	cfg    *level.Config
	logger *zap.Logger
	hooks  Hooks
	src    dice.Source

	reg    *actor.Registry
	shots  *ballistics.Field
	ledger economy.Ledger
	player *actor.Actor
	in     input.Snapshot
	tick   uint64
	status Status
	rules  rules
}

// New builds a session for cfg.
//
// Precondition: cfg.Validate() == nil and src is non-nil. Panics otherwise.
// Postcondition: the returned session is at tick 0 with status Ongoing.
func New(cfg *level.Config, src dice.Source, opts ...Option) *Session {
	if err := cfg.Validate(); err != nil {
		panic("session: invalid level config: " + err.Error())
	}
	if src == nil {
		panic("session: nil dice source")
	}
	s := &Session{
		id:     uuid.New(),
		cfg:    cfg,
		logger: zap.NewNop(),
		hooks:  NopHooks{},
		src:    src,
		reg:    actor.NewRegistry(),
		shots:  ballistics.NewField(shotMargin),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With(
		zap.String("session", s.id.String()),
		zap.Int("level", cfg.Number),
		zap.String("genre", string(cfg.Genre)),
	)
	s.rules = rulesFor(cfg.Genre)
	s.rules.setup(s)
	s.logger.Info("level session started", zap.String("name", cfg.Name))
	return s
}

func rulesFor(g level.Genre) rules {
	switch g {
	case level.GenreShooter:
		return &shooterRules{}
	case level.GenrePlatformer:
		return &platformerRules{}
	case level.GenreDefense:
		return &defenseRules{}
	case level.GenreStealth:
		return &stealthRules{}
	case level.GenreSurvival:
		return &survivalRules{}
	case level.GenreStrategy:
		return &strategyRules{}
	case level.GenreFinal:
		return &finalRules{}
	}
	panic(fmt.Sprintf("session: no rules for genre %q", g))
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID { return s.id }

// Config returns the level layout.
func (s *Session) Config() *level.Config { return s.cfg }

// Registry exposes the actor arena.
func (s *Session) Registry() *actor.Registry { return s.reg }

// Shots exposes the projectile store.
func (s *Session) Shots() *ballistics.Field { return s.shots }

// Ledger returns a copy of the player's resources.
func (s *Session) Ledger() economy.Ledger { return s.ledger }

// Player returns the player avatar, or nil for levels without one.
func (s *Session) Player() *actor.Actor { return s.player }

// Ticks returns the number of completed ticks.
func (s *Session) Ticks() uint64 { return s.tick }

// Status returns the last terminal signal.
func (s *Session) Status() Status { return s.status }

// Lookup implements actor.Env.
func (s *Session) Lookup(id actor.ID) (*actor.Actor, bool) { return s.reg.Get(id) }

// Input implements actor.Env.
func (s *Session) Input() input.Snapshot { return s.in }

// Field implements actor.Env.
func (s *Session) Field() geom.Rect { return s.cfg.Field }

var _ actor.Env = (*Session)(nil)

// Tick advances the session by one tick with in as the input snapshot and
// returns the terminal signal. Once a terminal status is raised further
// calls are no-ops that return it again.
//
// Phase order: command, movement, ballistics, collision (then compaction),
// schedule, detection, terminal check.
func (s *Session) Tick(in input.Snapshot) Status {
	if s.status != Ongoing {
		return s.status
	}
	s.tick++
	s.in = in

	s.rules.command(s)

	for _, a := range s.reg.Snapshot() {
		if a.Has(actor.Regenerates) && a.Frozen == 0 {
			a.Heal(1)
		}
		if o := a.Move(s); o != actor.Moving {
			s.rules.moved(s, a, o)
		}
	}
	s.rules.afterMove(s)

	s.shots.Advance(s.cfg.Field)
	s.rules.fire(s)

	s.rules.collide(s)
	s.reg.Compact()
	s.shots.Compact()

	s.rules.schedule(s)
	s.rules.detect(s)

	s.status = s.rules.status(s)
	if s.status != Ongoing {
		s.logger.Info("level ended",
			zap.Stringer("outcome", s.status),
			zap.Uint64("tick", s.tick),
			zap.Int("score", s.ledger.Score),
		)
		s.hooks.LevelEnd(s.status)
	}
	return s.status
}

// spawn registers a and logs it at debug level.
func (s *Session) spawn(a *actor.Actor) *actor.Actor {
	s.reg.Add(a)
	s.logger.Debug("actor spawned",
		zap.Uint64("id", uint64(a.ID)),
		zap.Stringer("kind", a.Kind),
		zap.String("variant", a.Variant),
	)
	return a
}

// spawnPlayer creates the player avatar from the level's player spec.
func (s *Session) spawnPlayer(m actor.Mover) *actor.Actor {
	p := s.cfg.Player
	s.player = s.spawn(&actor.Actor{
		Kind:      actor.KindPlayer,
		Faction:   actor.FactionPlayer,
		Pos:       p.Start,
		Size:      p.Size,
		Health:    p.Health,
		MaxHealth: p.Health,
		Heading:   -math.Pi / 2,
		Motion:    m,
		Caps:      actor.CanShoot,
	})
	return s.player
}

// spawnEnemy creates one hostile of the named kind at pos for wave.
func (s *Session) spawnEnemy(kind actor.Kind, name string, pos geom.Vec2, wave int, m actor.Mover) *actor.Actor {
	e := s.cfg.Enemies[name]
	hp := e.HealthAt(wave)
	a := &actor.Actor{
		Kind:      kind,
		Variant:   name,
		Faction:   actor.FactionHostile,
		Pos:       pos,
		Size:      e.Size,
		Health:    hp,
		MaxHealth: hp,
		Reward:    e.Reward,
		Damage:    e.Damage,
		Motion:    m,
	}
	if e.Regen {
		a.Caps |= actor.Regenerates
	}
	if e.Reach > 0 {
		a.Payload = &actor.Melee{Range: e.Reach, Interval: e.Cooldown}
	}
	return s.spawn(a)
}

// enemySpec returns the content entry behind a's variant.
func (s *Session) enemySpec(a *actor.Actor) level.EnemySpec {
	return s.cfg.Enemies[a.Variant]
}

// waveComplete pays the scripted bonus for a finished wave and logs it.
func (s *Session) waveComplete(wave, reward int) {
	bonus := s.hooks.WaveComplete(wave)
	s.ledger.Earn(reward + bonus)
	s.logger.Info("wave complete",
		zap.Int("wave", wave),
		zap.Int("reward", reward),
		zap.Int("bonus", bonus),
	)
}
