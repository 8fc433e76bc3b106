package session

import (
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/collision"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/tower"
	"github.com/cory-johannsen/skirmish/internal/game/wave"
)

// Boss minions appear on minionRow, at least minionInset from either side.
const (
	minionRow   = 50
	minionInset = 50
)

// defenseRules: hostiles walk the path while the player builds and upgrades
// towers. After the final wave the siege boss arrives.
type defenseRules struct {
	baseRules
	waves    *wave.Scheduler
	grid     *tower.Grid
	towers   []*tower.Tower
	byActor  map[actor.ID]*tower.Tower
	selected tower.Kind
	enc      *encounter
}

func (r *defenseRules) setup(s *Session) {
	d := s.cfg.Defense
	s.ledger.Lives = d.Lives
	s.ledger.Money = d.Money
	r.waves = wave.NewScheduler(*s.cfg.Wave, s.src)
	r.grid = tower.NewGrid(d.Build.Area, d.Build.Step, d.Build.Exclude)
	r.byActor = make(map[actor.ID]*tower.Tower)
	r.selected = tower.KindBasic
}

func (r *defenseRules) command(s *Session) {
	in := s.in
	if k, ok := tower.KindForSlot(in.SelectedSlot()); ok {
		r.selected = k
	}
	if !in.HasAim {
		return
	}
	if in.Primary {
		r.build(s, in.Aim)
	}
	if in.Secondary {
		r.upgrade(s, in.Aim)
	}
}

// build places the selected kind on the free spot nearest aim. Unaffordable
// or out-of-reach requests are ignored.
func (r *defenseRules) build(s *Session, aim geom.Vec2) {
	i, ok := r.grid.NearestFree(aim, s.cfg.Defense.Build.Reach)
	if !ok {
		return
	}
	stats, err := tower.Lookup(r.selected)
	if err != nil || !s.ledger.TrySpend(stats.Cost) {
		return
	}
	t := tower.New(r.selected, r.grid.Spots[i].Pos, i)
	s.spawn(t.Actor)
	r.grid.Occupy(i)
	r.towers = append(r.towers, t)
	r.byActor[t.Actor.ID] = t
}

func (r *defenseRules) upgrade(s *Session, aim geom.Vec2) {
	t, ok := tower.At(r.towers, aim)
	if !ok || !t.CanUpgrade() {
		return
	}
	if cost := t.UpgradeCost(); s.ledger.TrySpend(cost) {
		t.Upgrade()
		s.logger.Debug("tower upgraded", zap.String("kind", string(t.Kind)), zap.Int("level", t.Level))
	}
}

func (r *defenseRules) moved(s *Session, a *actor.Actor, o actor.Outcome) {
	if hostileUnit(a) && o == actor.ReachedEnd {
		s.ledger.LoseLives(a.Damage)
		s.reg.Remove(a.ID)
	}
}

func hostileUnit(a *actor.Actor) bool {
	return a.Kind == actor.KindRunner || a.Kind == actor.KindMinion
}

func (r *defenseRules) fire(s *Session) {
	targets := s.reg.Select(hostileUnit)
	if len(targets) == 0 && r.enc != nil && !r.enc.b.Defeated() {
		targets = []*actor.Actor{r.enc.b.Actor()}
	}
	for _, t := range r.towers {
		if p, ok := t.Tick(targets); ok {
			s.shots.Add(p)
		}
	}
}

func (r *defenseRules) collide(s *Session) {
	for _, h := range collision.ResolveProjectiles(s.shots.Live(), s.reg.Snapshot()) {
		if !h.Killed {
			continue
		}
		if h.Target.Kind == actor.KindTower {
			r.destroy(s, h.Target)
			continue
		}
		s.ledger.Earn(h.Target.Reward)
		if t, ok := r.byActor[h.Projectile.Owner]; ok {
			t.Kills++
		}
	}
}

// destroy drops a tower hit by a boss shot and frees the spots around it.
func (r *defenseRules) destroy(s *Session, a *actor.Actor) {
	t, ok := r.byActor[a.ID]
	if !ok {
		return
	}
	delete(r.byActor, a.ID)
	r.towers = slices.DeleteFunc(r.towers, func(o *tower.Tower) bool { return o == t })
	reach := s.cfg.Defense.SpotClearance
	for i, spot := range r.grid.Spots {
		if geom.Distance(spot.Pos, a.Pos) <= reach {
			r.grid.Release(i)
		}
	}
	r.grid.Release(t.Spot)
	s.logger.Info("tower destroyed", zap.String("kind", string(t.Kind)), zap.Int("level", t.Level))
}

func (r *defenseRules) schedule(s *Session) {
	if r.waves.State().Phase != wave.BossPhase {
		d := r.waves.Tick(s.reg.Count(actor.OfKind(actor.KindRunner)))
		if d.Spawn {
			r.spawnRunner(s, d.Kind)
		}
		if d.Completed {
			s.waveComplete(d.CompletedWave, d.Reward)
		}
		if d.EnteredBoss {
			r.enc = spawnBoss(s)
			s.ledger.Earn(s.cfg.Boss.Bonus)
		}
	}
	if r.enc == nil {
		return
	}
	structures := make([]*actor.Actor, 0, len(r.towers))
	for _, t := range r.towers {
		structures = append(structures, t.Actor)
	}
	o := r.enc.tick(s, func() (geom.Vec2, bool) { return geom.Vec2{}, false }, structures)
	for i := 0; i < o.Minions; i++ {
		r.spawnMinion(s)
	}
}

func (r *defenseRules) spawnRunner(s *Session, kind string) {
	d := s.cfg.Defense
	e := s.cfg.Enemies[kind]
	s.spawnEnemy(actor.KindRunner, kind, d.Path[0], r.waves.State().Wave,
		movement.NewPathFollow(d.Path, e.Speed, d.Tolerance))
}

// spawnMinion drops a minion on the boss row. It heads for the second
// waypoint and walks the rest of the path like any runner.
func (r *defenseRules) spawnMinion(s *Session) {
	d := s.cfg.Defense
	name := s.cfg.Boss.MinionKind
	f := s.cfg.Field
	x := dice.IntRange(s.src, int(f.X)+minionInset, int(f.Right())-minionInset)
	start := geom.V(float64(x), minionRow)
	path := append([]geom.Vec2{start}, d.Path[1:]...)
	s.spawnEnemy(actor.KindMinion, name, start, 0,
		movement.NewPathFollow(path, s.cfg.Enemies[name].Speed, d.Tolerance))
}

func (r *defenseRules) status(s *Session) Status {
	switch {
	case s.ledger.Lives <= 0:
		return Defeat
	case r.enc != nil && r.enc.b.Defeated():
		return Victory
	case r.waves.State().Phase == wave.Finished:
		return Victory
	}
	return Ongoing
}

func (r *defenseRules) view(_ *Session, snap *Snapshot) {
	snap.Wave = waveView(r.waves.State())
	if r.enc != nil {
		snap.Boss = r.enc.view()
	}
	snap.HUD.Selection = string(r.selected)
	snap.HUD.Towers = len(r.towers)
	snap.HUD.FreeSpots = r.grid.Free()
}

func waveView(st wave.State) *WaveView {
	return &WaveView{
		Wave:      st.Wave,
		Spawned:   st.Spawned,
		Quota:     st.Quota,
		Phase:     st.Phase.String(),
		DelayLeft: st.DelayLeft,
	}
}
