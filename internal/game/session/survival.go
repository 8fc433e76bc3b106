package session

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/collision"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/input"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/wave"
)

// survivalRules: hold out against zombie waves behind barricades.
type survivalRules struct {
	baseRules
	waves *wave.Scheduler
	gun   *gun
}

func (r *survivalRules) setup(s *Session) {
	s.spawnPlayer(movement.Chain{
		&movement.KeyDrive{Speed: s.cfg.Player.Speed},
		&movement.PointerSteer{},
	})
	r.gun = newGun(*s.cfg.Player.Weapon)
	r.waves = wave.NewScheduler(*s.cfg.Wave, s.src)
}

func (r *survivalRules) command(s *Session) {
	if s.in.Pressed.Has(input.KeyReload) {
		r.gun.startReload()
	}
}

func (r *survivalRules) afterMove(s *Session) {
	collision.PushOut(s.player, s.cfg.Obstacles)
	for _, z := range s.reg.Select(actor.OfKind(actor.KindZombie)) {
		collision.PushOut(z, s.cfg.Obstacles)
	}
}

func (r *survivalRules) fire(s *Session) {
	r.gun.tick()
	r.gun.trigger(s, s.player)
}

func (r *survivalRules) collide(s *Session) {
	zombies := s.reg.Select(actor.OfKind(actor.KindZombie))
	for _, h := range collision.ResolveProjectiles(s.shots.Live(), zombies) {
		if h.Killed {
			s.ledger.AddScore(s.enemySpec(h.Target).Score)
		}
	}
	for _, z := range zombies {
		m, ok := z.Payload.(*actor.Melee)
		if !ok || !z.Alive() {
			continue
		}
		m.Tick()
		if m.Ready() && geom.Distance(z.Pos, s.player.Pos) < m.Range {
			s.player.TakeDamage(z.Damage)
			m.Fire()
		}
	}
}

func (r *survivalRules) schedule(s *Session) {
	d := r.waves.Tick(s.reg.Count(actor.OfKind(actor.KindZombie)))
	if d.Spawn {
		r.spawnZombie(s, d.Kind)
	}
	if d.Completed {
		sv := s.cfg.Survival
		s.ledger.AddScore(sv.WaveScore)
		s.player.Heal(sv.WaveHeal)
		r.gun.refill()
		s.waveComplete(d.CompletedWave, d.Reward)
	}
}

// spawnZombie places a zombie just outside a random edge.
func (r *survivalRules) spawnZombie(s *Session, kind string) {
	f := s.cfg.Field
	m := s.cfg.Survival.EdgeMargin
	var pos geom.Vec2
	switch s.src.Intn(4) {
	case 0:
		pos = geom.V(dice.FloatRange(s.src, f.X, f.Right()), f.Y-m)
	case 1:
		pos = geom.V(f.Right()+m, dice.FloatRange(s.src, f.Y, f.Bottom()))
	case 2:
		pos = geom.V(dice.FloatRange(s.src, f.X, f.Right()), f.Bottom()+m)
	default:
		pos = geom.V(f.X-m, dice.FloatRange(s.src, f.Y, f.Bottom()))
	}
	e := s.cfg.Enemies[kind]
	s.spawnEnemy(actor.KindZombie, kind, pos, r.waves.State().Wave,
		&movement.Pursuit{Target: s.player.ID, Speed: e.Speed})
}

func (r *survivalRules) status(s *Session) Status {
	switch {
	case !s.player.Alive():
		return Defeat
	case r.waves.State().Phase == wave.Finished:
		return Victory
	}
	return Ongoing
}

func (r *survivalRules) view(_ *Session, snap *Snapshot) {
	snap.Wave = waveView(r.waves.State())
	snap.HUD.Ammo = r.gun.ammo
	snap.HUD.Reloading = r.gun.reload > 0
}
