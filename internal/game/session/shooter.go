package session

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/collision"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

// shooterRules: the player shoots down homing missiles until the score
// target is reached. A missile reaching the player ends the level.
type shooterRules struct {
	baseRules
	gun   *gun
	timer int
}

func (r *shooterRules) setup(s *Session) {
	s.spawnPlayer(&movement.KeyDrive{Speed: s.cfg.Player.Speed})
	r.gun = newGun(*s.cfg.Player.Weapon)
}

func (r *shooterRules) moved(s *Session, a *actor.Actor, o actor.Outcome) {
	if a.Kind == actor.KindMissile && o == actor.OutOfBounds {
		s.reg.Remove(a.ID)
	}
}

func (r *shooterRules) fire(s *Session) {
	r.gun.tick()
	r.gun.trigger(s, s.player)
}

func (r *shooterRules) collide(s *Session) {
	missiles := s.reg.Select(actor.OfKind(actor.KindMissile))
	for _, h := range collision.ResolveProjectiles(s.shots.Live(), missiles) {
		if h.Killed {
			s.ledger.AddScore(s.enemySpec(h.Target).Score)
			s.reg.Remove(h.Target.ID)
		}
	}
	if len(collision.Touching(s.player, s.reg.Select(actor.OfKind(actor.KindMissile)))) > 0 {
		s.player.Kill()
	}
}

func (r *shooterRules) schedule(s *Session) {
	sp := s.cfg.Shooter.Spawner
	r.timer++
	if r.timer < sp.Every {
		return
	}
	r.timer = 0
	pos := geom.V(dice.FloatRange(s.src, sp.MinX, sp.MaxX), sp.Y)
	speed := s.cfg.Enemies[sp.Kind].Speed
	s.spawnEnemy(actor.KindMissile, sp.Kind, pos, 0, movement.NewHoming(s.player.ID, speed, geom.V(0, 1)))
}

func (r *shooterRules) status(s *Session) Status {
	if !s.player.Alive() {
		return Defeat
	}
	if s.ledger.Score >= s.cfg.Shooter.TargetScore {
		return Victory
	}
	return Ongoing
}
