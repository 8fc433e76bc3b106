package session

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/detection"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
)

// stealthRules: reach the target without the detection accumulator filling.
// A capture returns the player to the mission start.
type stealthRules struct {
	baseRules
	model *detection.Model
	stage int
}

func (r *stealthRules) setup(s *Session) {
	st := s.cfg.Stealth
	s.spawnPlayer(&movement.KeyDrive{Speed: s.cfg.Player.Speed})
	guards := make([]*detection.Guard, 0, len(st.Guards))
	for _, spec := range st.Guards {
		g := detection.NewGuard(spec)
		s.spawn(g.Actor)
		guards = append(guards, g)
	}
	cover := append(s.cfg.ObstacleRects(), st.Cover...)
	r.model = detection.NewModel(*st.Tuning, guards, cover)
	r.stage = detection.Stage(s.player.Pos.Y, st.Stages)
}

func (r *stealthRules) detect(s *Session) {
	res := r.model.Update(s.player.Pos)
	if res.AlarmRaised {
		s.logger.Info("alarm raised", zap.Float64("detection", r.model.Level()))
	}
	if res.AlarmCleared {
		s.logger.Debug("alarm cleared")
	}
	if res.Captured {
		s.player.Pos = s.cfg.Player.Start
		s.player.Vel = geom.Vec2{}
		s.logger.Info("player captured", zap.Int("captures", r.model.Captures()))
		s.hooks.Capture(r.model.Captures())
	}
	r.stage = detection.Stage(s.player.Pos.Y, s.cfg.Stealth.Stages)
}

func (r *stealthRules) status(s *Session) Status {
	st := s.cfg.Stealth
	p := s.player.Pos
	if math.Abs(p.X-st.Target.X) < st.Reach && math.Abs(p.Y-st.Target.Y) < st.Reach {
		return Victory
	}
	return Ongoing
}

func (r *stealthRules) view(_ *Session, snap *Snapshot) {
	dv := &DetectionView{
		Level:    r.model.Level(),
		Max:      r.model.Max(),
		Alarm:    r.model.Alarm(),
		Captures: r.model.Captures(),
		Stage:    r.stage,
	}
	for _, g := range r.model.Guards() {
		dv.Guards = append(dv.Guards, GuardView{
			ID:     uint64(g.Actor.ID),
			Kind:   string(g.Spec.Kind),
			Alert:  g.Alert,
			Facing: g.Facing,
			Vision: g.Spec.Vision,
		})
	}
	snap.Detection = dv
}
