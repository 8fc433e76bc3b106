package session

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/economy"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/level"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

var unitKinds = map[string]actor.Kind{
	"worker": actor.KindWorker,
	"marine": actor.KindMarine,
	"tank":   actor.KindTank,
}

func isUnit(a *actor.Actor) bool {
	return a.Kind == actor.KindWorker || a.Kind == actor.KindMarine || a.Kind == actor.KindTank
}

// strategyRules: two economies gather minerals and train units; the side
// that loses its command center loses the level.
type strategyRules struct {
	baseRules
	enemy    economy.Ledger
	center   *actor.Actor
	rival    *actor.Actor
	selected actor.ID
	timer    int
}

func (r *strategyRules) setup(s *Session) {
	st := s.cfg.Strategy
	s.spawnPlayer(&movement.KeyDrive{Speed: s.cfg.Player.Speed})
	s.ledger.Minerals = st.Minerals
	s.ledger.SupplyMax = st.Supply
	r.enemy = economy.Ledger{Minerals: st.EnemyMinerals, SupplyMax: st.EnemySupply}
	r.center = s.spawn(r.building(st, actor.FactionPlayer, st.CommandCenter))
	r.rival = s.spawn(r.building(st, actor.FactionHostile, st.EnemyCenter))
	for _, p := range st.Patches {
		s.spawn(&actor.Actor{
			Kind:      actor.KindDeposit,
			Faction:   actor.FactionNeutral,
			Pos:       p,
			Size:      geom.V(40, 30),
			Health:    1,
			MaxHealth: 1,
			Caps:      actor.Intangible,
			Payload:   &actor.Deposit{Remaining: st.PatchMinerals},
		})
	}
	for _, p := range st.Workers {
		r.unit(s, actor.FactionPlayer, "worker", p)
		s.ledger.SupplyUsed += st.Units["worker"].Supply
	}
}

func (r *strategyRules) building(st *level.StrategySpec, f actor.Faction, pos geom.Vec2) *actor.Actor {
	return &actor.Actor{
		Kind:      actor.KindBuilding,
		Variant:   "command_center",
		Faction:   f,
		Pos:       pos,
		Size:      st.BaseSize,
		Health:    st.BaseHealth,
		MaxHealth: st.BaseHealth,
	}
}

// side returns the ledger, command center and rally offset of faction f.
func (r *strategyRules) side(s *Session, f actor.Faction) (*economy.Ledger, *actor.Actor, geom.Vec2) {
	if f == actor.FactionHostile {
		return &r.enemy, r.rival, s.cfg.Strategy.EnemyRally
	}
	return &s.ledger, r.center, s.cfg.Strategy.Rally
}

// unit creates a unit of the named type for faction f at pos. Hostile
// combat units use the enemy AI's movement and weapon stats.
func (r *strategyRules) unit(s *Session, f actor.Faction, name string, pos geom.Vec2) *actor.Actor {
	st := s.cfg.Strategy
	u := st.Units[name]
	a := &actor.Actor{
		Kind:      unitKinds[name],
		Variant:   name,
		Faction:   f,
		Pos:       pos,
		Size:      u.Size,
		Health:    u.Health,
		MaxHealth: u.Health,
		Damage:    u.Damage,
	}
	seek := &movement.Seek{Speed: u.Speed, Arrive: 1}
	switch {
	case u.Harvester():
		a.Payload = &actor.Harvester{Capacity: u.Capacity}
	case f == actor.FactionHostile:
		seek.Speed = st.Enemy.Speed
		a.Damage = st.Enemy.Damage
		a.Payload = &actor.Melee{Range: st.Enemy.Range, Interval: st.Enemy.Cooldown}
	default:
		a.Payload = &actor.Melee{Range: u.Range, Interval: u.Cooldown}
	}
	a.Motion = seek
	return s.spawn(a)
}

// train spends resources for one unit at the faction's rally point.
func (r *strategyRules) train(s *Session, f actor.Faction, name string) bool {
	ledger, home, rally := r.side(s, f)
	u := s.cfg.Strategy.Units[name]
	if !home.Alive() || !ledger.TryTrain(u.Minerals, u.Supply) {
		return false
	}
	a := r.unit(s, f, name, home.Pos.Add(rally))
	s.logger.Debug("unit trained", zap.Stringer("faction", f), zap.String("unit", name), zap.Uint64("id", uint64(a.ID)))
	return true
}

func (r *strategyRules) command(s *Session) {
	in := s.in
	if slot := in.SelectedSlot(); slot >= 1 && slot <= len(level.StrategyUnits) {
		r.train(s, actor.FactionPlayer, level.StrategyUnits[slot-1])
	}
	if in.HasAim && in.Primary {
		mine := s.reg.Select(func(a *actor.Actor) bool {
			return a.Faction == actor.FactionPlayer && (a.Kind == actor.KindMarine || a.Kind == actor.KindTank)
		})
		if a, ok := movement.Nearest(in.Aim, mine, 20); ok {
			r.selected = a.ID
		}
	}
	if in.HasAim && in.Secondary {
		if a, ok := s.reg.Get(r.selected); ok {
			if m, ok := a.Payload.(*actor.Melee); ok {
				m.Goal = in.Aim
				m.HasGoal = true
			}
		}
	}

	for _, a := range s.reg.Snapshot() {
		switch p := a.Payload.(type) {
		case *actor.Harvester:
			r.harvest(s, a, p)
		case *actor.Melee:
			p.Tick()
			if a.Faction == actor.FactionHostile {
				r.engage(a, p, r.rivalTarget(s, a))
			} else {
				r.order(s, a, p)
			}
		}
	}
}

// harvest walks a worker between its deposit and its command center.
func (r *strategyRules) harvest(s *Session, a *actor.Actor, h *actor.Harvester) {
	st := s.cfg.Strategy
	seek := a.Motion.(*movement.Seek)
	ledger, home, _ := r.side(s, a.Faction)
	if h.Carry == 0 {
		dep, ok := s.reg.Get(h.Deposit)
		if !ok || dep.Payload.(*actor.Deposit).Remaining <= 0 {
			dep, ok = movement.Nearest(a.Pos, s.reg.Select(func(o *actor.Actor) bool {
				d, isDep := o.Payload.(*actor.Deposit)
				return isDep && d.Remaining > 0
			}), 0)
			if !ok {
				seek.Active = false
				return
			}
			h.Deposit = dep.ID
		}
		if geom.Distance(a.Pos, dep.Pos) < st.GatherReach {
			h.Carry = dep.Payload.(*actor.Deposit).Take(h.Capacity)
			seek.Active = false
			return
		}
		seek.Goal, seek.Active = dep.Pos, true
		return
	}
	if !home.Alive() {
		seek.Active = false
		return
	}
	if geom.Distance(a.Pos, home.Pos) < st.DepositReach {
		ledger.Deposit(h.Carry)
		h.Carry = 0
		h.Deposit = 0
		seek.Active = false
		return
	}
	seek.Goal, seek.Active = home.Pos, true
}

// order runs a player combat unit: a commanded move takes priority, then
// the nearest hostile unit or building.
func (r *strategyRules) order(s *Session, a *actor.Actor, m *actor.Melee) {
	seek := a.Motion.(*movement.Seek)
	if m.HasGoal {
		if geom.Distance(a.Pos, m.Goal) < s.cfg.Strategy.Arrive {
			m.HasGoal = false
		} else {
			m.Target = 0
			seek.Goal, seek.Active = m.Goal, true
			return
		}
	}
	t, _ := movement.Nearest(a.Pos, s.reg.Select(func(o *actor.Actor) bool {
		return o.Faction == actor.FactionHostile && (isUnit(o) || o.Kind == actor.KindBuilding)
	}), 0)
	r.engage(a, m, t)
}

// rivalTarget picks an enemy combat unit's victim: the nearest player
// building, then units once buildings are beyond UnitReach, then the player
// avatar once everything is beyond PlayerReach.
func (r *strategyRules) rivalTarget(s *Session, a *actor.Actor) *actor.Actor {
	ai := s.cfg.Strategy.Enemy
	best, dist := (*actor.Actor)(nil), 0.0
	consider := func(cands []*actor.Actor) {
		if t, ok := movement.Nearest(a.Pos, cands, 0); ok {
			if d := geom.Distance(a.Pos, t.Pos); best == nil || d < dist {
				best, dist = t, d
			}
		}
	}
	consider(s.reg.Select(func(o *actor.Actor) bool {
		return o.Faction == actor.FactionPlayer && o.Kind == actor.KindBuilding
	}))
	if best == nil || dist > ai.UnitReach {
		consider(s.reg.Select(func(o *actor.Actor) bool {
			return o.Faction == actor.FactionPlayer && isUnit(o)
		}))
	}
	if (best == nil || dist > ai.PlayerReach) && s.player.Alive() {
		consider([]*actor.Actor{s.player})
	}
	return best
}

// engage holds position when t is in reach and walks toward it otherwise.
func (r *strategyRules) engage(a *actor.Actor, m *actor.Melee, t *actor.Actor) {
	seek := a.Motion.(*movement.Seek)
	if t == nil {
		m.Target = 0
		seek.Active = false
		return
	}
	m.Target = t.ID
	if geom.Distance(a.Pos, t.Pos) < m.Range {
		seek.Active = false
		return
	}
	seek.Goal, seek.Active = t.Pos, true
}

func (r *strategyRules) collide(s *Session) {
	for _, a := range s.reg.Snapshot() {
		m, ok := a.Payload.(*actor.Melee)
		if !ok || !a.Alive() || m.Target == 0 || !m.Ready() {
			continue
		}
		t, ok := s.reg.Get(m.Target)
		if !ok || geom.Distance(a.Pos, t.Pos) >= m.Range {
			continue
		}
		m.Fire()
		if t.TakeDamage(a.Damage) {
			r.killed(s, t)
		}
	}
}

func (r *strategyRules) killed(s *Session, t *actor.Actor) {
	st := s.cfg.Strategy
	if isUnit(t) {
		ledger, _, _ := r.side(s, t.Faction)
		ledger.Release(st.Units[t.Variant].Supply)
	}
	if t.Faction != actor.FactionHostile {
		return
	}
	if t.Kind == actor.KindBuilding {
		s.ledger.AddScore(st.BuildingScore)
		s.logger.Info("enemy building destroyed")
		return
	}
	s.ledger.AddScore(st.UnitScore)
}

func (r *strategyRules) schedule(s *Session) {
	ai := s.cfg.Strategy.Enemy
	r.timer++
	if r.timer < ai.TrainEvery {
		return
	}
	r.timer = 0
	n := s.reg.Count(func(a *actor.Actor) bool { return a.Faction == actor.FactionHostile && isUnit(a) })
	name := "marine"
	if n < ai.MinWorkers {
		name = "worker"
	}
	r.train(s, actor.FactionHostile, name)
}

func (r *strategyRules) status(s *Session) Status {
	switch {
	case !r.center.Alive() || !s.player.Alive():
		return Defeat
	case s.reg.Count(func(a *actor.Actor) bool {
		return a.Faction == actor.FactionHostile && a.Kind == actor.KindBuilding
	}) == 0:
		return Victory
	}
	return Ongoing
}

func (r *strategyRules) view(s *Session, snap *Snapshot) {
	snap.HUD.EnemyMinerals = r.enemy.Minerals
	if a, ok := s.reg.Get(r.selected); ok {
		snap.HUD.Selection = a.Variant
	}
}
