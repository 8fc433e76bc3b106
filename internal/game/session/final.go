package session

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/collision"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

// finalRules: a single boss duel. Every hit that lands on an unshielded
// boss scores.
type finalRules struct {
	baseRules
	gun *gun
	enc *encounter
}

func (r *finalRules) setup(s *Session) {
	s.spawnPlayer(&movement.KeyDrive{Speed: s.cfg.Player.Speed})
	r.gun = newGun(*s.cfg.Player.Weapon)
	r.enc = spawnBoss(s)
}

func (r *finalRules) fire(s *Session) {
	r.gun.tick()
	r.gun.trigger(s, s.player)
}

func (r *finalRules) collide(s *Session) {
	b := r.enc.b.Actor()
	for _, h := range collision.ResolveProjectiles(s.shots.Live(), []*actor.Actor{s.player, b}) {
		if h.Target == b && !h.Absorbed {
			s.ledger.AddScore(r.enc.spec.Score)
		}
	}
	if b.Alive() && s.player.Alive() && s.player.Bounds().Intersects(b.Bounds()) {
		s.player.TakeDamage(r.enc.spec.ContactDamage)
	}
}

func (r *finalRules) schedule(s *Session) {
	r.enc.tick(s, func() (geom.Vec2, bool) {
		return s.player.Pos, s.player.Alive()
	}, nil)
}

func (r *finalRules) status(s *Session) Status {
	switch {
	case r.enc.b.Defeated():
		return Victory
	case !s.player.Alive():
		return Defeat
	}
	return Ongoing
}

func (r *finalRules) view(s *Session, snap *Snapshot) {
	snap.Boss = r.enc.view()
	snap.HUD.Ammo = r.gun.ammo
}
