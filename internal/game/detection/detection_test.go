package detection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/detection"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

func patrolGuard(x, y, vision float64) *detection.Guard {
	return detection.NewGuard(detection.GuardSpec{Kind: detection.KindPatrol, Pos: geom.V(x, y), Range: 50, Vision: vision, Dir: 1})
}

func TestGuardSpecValidate(t *testing.T) {
	assert.NoError(t, detection.GuardSpec{Kind: detection.KindElite, Vision: 100}.Validate())
	assert.ErrorContains(t, detection.GuardSpec{Kind: "ninja", Vision: 100}.Validate(), "unknown guard kind")
	assert.ErrorContains(t, detection.GuardSpec{Kind: detection.KindPatrol}.Validate(), "vision")
}

func TestOccluded_SpanBoxTest(t *testing.T) {
	wall := []geom.Rect{{X: 140, Y: 250, W: 20, H: 100}}
	assert.True(t, detection.Occluded(geom.V(100, 300), geom.V(200, 300), wall))
	assert.False(t, detection.Occluded(geom.V(100, 300), geom.V(130, 300), wall))
}

func TestExposedPlayerAccumulates(t *testing.T) {
	g := patrolGuard(100, 300, 300)
	m := detection.NewModel(detection.DefaultTuning(), []*detection.Guard{g}, nil)
	for i := 0; i < 5; i++ {
		r := m.Update(geom.V(200, 300))
		assert.Equal(t, 1, r.Spotted)
	}
	assert.InDelta(t, 4.5, m.Level(), 1e-9)
	assert.InDelta(t, 10, g.Alert, 1e-9)
}

func TestCoverDecreasesAccumulatorEveryTick(t *testing.T) {
	g := patrolGuard(100, 300, 300)
	cover := []geom.Rect{{X: 300, Y: 280, W: 40, H: 40}}
	m := detection.NewModel(detection.DefaultTuning(), []*detection.Guard{g}, cover)
	for i := 0; i < 5; i++ {
		m.Update(geom.V(200, 300))
	}
	require.Greater(t, m.Level(), 0.0)

	prev := m.Level()
	for i := 0; i < 5; i++ {
		r := m.Update(geom.V(320, 300))
		assert.True(t, r.Hidden)
		assert.Zero(t, r.Spotted)
		assert.Less(t, m.Level(), prev, "tick %d", i)
		prev = m.Level()
	}
	assert.Less(t, g.Alert, 10.0, "guard alert decays while the player hides")
}

func TestCoverMarginCountsAsHidden(t *testing.T) {
	m := detection.NewModel(detection.DefaultTuning(), nil, []geom.Rect{{X: 300, Y: 280, W: 40, H: 40}})
	assert.True(t, m.Hidden(geom.V(297, 300)))
	assert.False(t, m.Hidden(geom.V(290, 300)))
}

func TestAlarmRaisedFloorsEveryGuard(t *testing.T) {
	elite := detection.NewGuard(detection.GuardSpec{Kind: detection.KindElite, Pos: geom.V(100, 300), Range: 0, Vision: 300, Dir: 1})
	far := patrolGuard(700, 50, 40)
	m := detection.NewModel(detection.DefaultTuning(), []*detection.Guard{elite, far}, nil)

	raised := false
	for i := 0; i < 40 && !raised; i++ {
		raised = m.Update(geom.V(180, 300)).AlarmRaised
	}
	require.True(t, raised)
	assert.True(t, m.Alarm())
	assert.GreaterOrEqual(t, far.Alert, 30.0)
	assert.Less(t, m.Level(), m.Max())

	// Vision scales under alarm: 55 is outside 40 but inside 60.
	assert.True(t, m.Sees(far, geom.V(far.Actor.Pos.X, far.Actor.Pos.Y+55)))
}

func TestAlarmExpires(t *testing.T) {
	elite := detection.NewGuard(detection.GuardSpec{Kind: detection.KindElite, Pos: geom.V(100, 300), Vision: 300, Dir: 1})
	m := detection.NewModel(detection.DefaultTuning(), []*detection.Guard{elite}, nil)
	for !m.Alarm() {
		m.Update(geom.V(180, 300))
	}
	away := geom.V(5000, 5000)
	for i := 0; i < 300; i++ {
		r := m.Update(away)
		require.False(t, r.AlarmCleared, "tick %d", i)
	}
	assert.True(t, m.Update(away).AlarmCleared)
	assert.False(t, m.Alarm())
}

func TestCaptureIsFullReset(t *testing.T) {
	tuning := detection.DefaultTuning()
	tuning.Max = 10
	g := patrolGuard(100, 300, 200)
	m := detection.NewModel(tuning, []*detection.Guard{g}, nil)

	var captured bool
	for i := 0; i < 100 && !captured; i++ {
		captured = m.Update(geom.V(150, 300)).Captured
	}
	require.True(t, captured)
	assert.Equal(t, 1, m.Captures())
	assert.Zero(t, m.Level())
	assert.False(t, m.Alarm())
	assert.Zero(t, g.Alert)
	assert.Equal(t, geom.V(100, 300), g.Actor.Pos)
}

func TestSniperTurnsInPlaceAndSeesBothWays(t *testing.T) {
	s := detection.NewGuard(detection.GuardSpec{Kind: detection.KindSniper, Pos: geom.V(400, 300), Vision: 250, Dir: 1})
	m := detection.NewModel(detection.DefaultTuning(), []*detection.Guard{s}, nil)
	assert.True(t, m.Sees(s, geom.V(500, 300)))
	assert.True(t, m.Sees(s, geom.V(300, 300)), "facing does not limit vision")

	away := geom.V(5000, 5000)
	for i := 0; i < 120; i++ {
		m.Update(away)
	}
	assert.Equal(t, -1.0, s.Facing)
	assert.Equal(t, geom.V(400, 300), s.Actor.Pos, "snipers do not walk")
	assert.True(t, m.Sees(s, geom.V(300, 300)))
}

func TestGuardSpeedScalesUnderAlarm(t *testing.T) {
	elite := detection.NewGuard(detection.GuardSpec{Kind: detection.KindElite, Pos: geom.V(100, 300), Range: 500, Vision: 300, Dir: 1})
	m := detection.NewModel(detection.DefaultTuning(), []*detection.Guard{elite}, nil)
	m.Update(geom.V(5000, 5000))
	assert.InDelta(t, 1.4, elite.Actor.Vel.X, 1e-9)
	for !m.Alarm() {
		m.Update(geom.V(elite.Actor.Pos.X+20, 300))
	}
	m.Update(geom.V(5000, 5000))
	assert.InDelta(t, 2.1, elite.Actor.Vel.X, 1e-9)
}

func TestStage(t *testing.T) {
	th := []float64{550, 420, 300, 200}
	assert.Equal(t, 1, detection.Stage(590, th))
	assert.Equal(t, 2, detection.Stage(500, th))
	assert.Equal(t, 3, detection.Stage(350, th))
	assert.Equal(t, 4, detection.Stage(250, th))
	assert.Equal(t, 5, detection.Stage(100, th))
}

// Property: the accumulator and every alert level stay within their bounds
// for any roster, cover layout and player path.
func TestPropertyAccumulatorBounded(t *testing.T) {
	kinds := []detection.Kind{detection.KindPatrol, detection.KindOffice, detection.KindElite, detection.KindSniper}
	rapid.Check(t, func(rt *rapid.T) {
		tuning := detection.DefaultTuning()
		var guards []*detection.Guard
		ng := rapid.IntRange(1, 5).Draw(rt, "guards")
		for i := 0; i < ng; i++ {
			guards = append(guards, detection.NewGuard(detection.GuardSpec{
				Kind:   rapid.SampledFrom(kinds).Draw(rt, "kind"),
				Pos:    geom.V(rapid.Float64Range(0, 800).Draw(rt, "gx"), rapid.Float64Range(0, 600).Draw(rt, "gy")),
				Range:  rapid.Float64Range(0, 200).Draw(rt, "range"),
				Vision: rapid.Float64Range(50, 400).Draw(rt, "vision"),
				Dir:    1,
			}))
		}
		var cover []geom.Rect
		nc := rapid.IntRange(0, 4).Draw(rt, "cover")
		for i := 0; i < nc; i++ {
			cover = append(cover, geom.Rect{
				X: rapid.Float64Range(0, 800).Draw(rt, "cx"), Y: rapid.Float64Range(0, 600).Draw(rt, "cy"),
				W: rapid.Float64Range(10, 120).Draw(rt, "cw"), H: rapid.Float64Range(10, 120).Draw(rt, "ch"),
			})
		}
		m := detection.NewModel(tuning, guards, cover)
		ticks := rapid.IntRange(1, 300).Draw(rt, "ticks")
		for i := 0; i < ticks; i++ {
			p := geom.V(rapid.Float64Range(0, 800).Draw(rt, "px"), rapid.Float64Range(0, 600).Draw(rt, "py"))
			r := m.Update(p)
			if m.Level() < 0 || m.Level() > tuning.Max {
				rt.Fatalf("accumulator %f out of [0, %f]", m.Level(), tuning.Max)
			}
			for _, g := range guards {
				if g.Alert < 0 || g.Alert > tuning.AlertMax {
					rt.Fatalf("alert %f out of bounds", g.Alert)
				}
				if r.Captured && (g.Alert != 0 || g.Actor.Pos != g.Spec.Pos) {
					rt.Fatalf("capture left guard state unreset")
				}
			}
		}
	})
}
