package session

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ballistics"
	"github.com/cory-johannsen/skirmish/internal/game/boss"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/level"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

// encounter couples a boss machine to the session: it spawns the boss actor
// and turns the machine's orders into projectiles.
type encounter struct {
	spec *level.BossSpec
	b    *boss.Boss
}

func spawnBoss(s *Session) *encounter {
	spec := s.cfg.Boss
	a := s.spawn(&actor.Actor{
		Kind:      actor.KindBoss,
		Variant:   string(s.cfg.Genre),
		Faction:   actor.FactionHostile,
		Pos:       spec.Start,
		Size:      spec.Size,
		Health:    spec.MaxHealth,
		MaxHealth: spec.MaxHealth,
		Damage:    spec.ContactDamage,
		Caps:      actor.CanShoot,
		Motion: &movement.Bounce{
			Box:            spec.Box,
			Speed:          spec.BaseSpeed,
			VerticalFactor: spec.VerticalFactor,
			Dir:            spec.Dir,
		},
	})
	s.logger.Info("boss spawned", zap.Int("health", spec.MaxHealth), zap.Int("phases", spec.Phases()))
	return &encounter{spec: spec, b: boss.New(spec.Config, a)}
}

// muzzle is the bottom-center of the boss.
func (e *encounter) muzzle() geom.Vec2 {
	a := e.b.Actor()
	return geom.V(a.Pos.X, a.Pos.Y+a.Size.Y/2)
}

// center is the middle of the boss, where rockets and centered patterns start.
func (e *encounter) center() geom.Vec2 { return e.b.Actor().Pos }

func (e *encounter) shot(damage int, tag ballistics.Tag) ballistics.Shot {
	size := e.spec.Attack.Size
	if size <= 0 {
		size = 8
	}
	return ballistics.Shot{
		Owner:   e.b.Actor().ID,
		Faction: actor.FactionHostile,
		Size:    geom.V(size, size),
		Damage:  damage,
		Tag:     tag,
	}
}

// tick advances the machine and fires whatever it orders. aim supplies the
// target of aimed shots; structures are the candidates for lasers.
func (e *encounter) tick(s *Session, aim func() (geom.Vec2, bool), structures []*actor.Actor) boss.Orders {
	o := e.b.Tick(s.src)
	if o.Defeated {
		return o
	}
	if o.Entered {
		s.logger.Info("boss phase entered", zap.Int("phase", o.Phase), zap.Bool("rage", e.b.Rage()))
		s.hooks.PhaseEnter(o.Phase)
	}
	if o.Teleported {
		s.logger.Debug("boss teleported", zap.Float64("x", e.b.Actor().Pos.X))
	}

	origin := e.muzzle()
	atk := e.spec.Attack
	if o.Basic {
		speed := atk.Speed + atk.SpeedPerPhase*float64(o.Phase)
		switch {
		case atk.LaserChance > 0:
			if len(structures) > 0 && dice.Chance(s.src, atk.LaserChance) {
				t := structures[s.src.Intn(len(structures))]
				s.shots.Add(ballistics.Volley(e.shot(atk.LaserDamage, ballistics.TagLaser), origin,
					[]geom.Vec2{ballistics.Aimed(origin, t.Pos, speed)})...)
			}
		case atk.Speed > 0:
			if target, ok := aim(); ok {
				s.shots.Add(ballistics.Volley(e.shot(atk.Damage, ballistics.TagNormal), origin,
					[]geom.Vec2{ballistics.Aimed(origin, target, speed)})...)
			}
		}
		if atk.RocketDivisor > 0 {
			n := max(1, o.Phase/atk.RocketDivisor)
			s.shots.Add(ballistics.Volley(e.shot(atk.RocketDamage, ballistics.TagRocket), e.center(),
				ballistics.Scatter(s.src, n, atk.RocketSpeed, atk.RocketSpeed))...)
		}
	}

	if len(o.Special) > 0 {
		target, ok := aim()
		if !ok {
			target = origin.Add(geom.V(0, 1))
		}
		for _, p := range o.Special {
			from := origin
			if p.FromCenter {
				from = e.center()
			}
			s.shots.Add(p.Fire(e.b.Actor().ID, actor.FactionHostile, from, target, e.spec.LobArea, s.src)...)
		}
		s.logger.Debug("boss special attack", zap.Int("phase", o.Phase), zap.Int("volleys", len(o.Special)))
	}
	return o
}

func (e *encounter) view() *BossView {
	a := e.b.Actor()
	return &BossView{
		ID:        uint64(a.ID),
		Health:    a.Health,
		MaxHealth: a.MaxHealth,
		Phase:     e.b.Phase(),
		Phases:    e.b.Config().Phases(),
		Rage:      e.b.Rage(),
		Shielded:  e.b.Shielded(),
	}
}
