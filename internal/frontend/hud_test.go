package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/skirmish/internal/frontend"
	"github.com/cory-johannsen/skirmish/internal/game/economy"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

func TestStatusLine_Defense(t *testing.T) {
	snap := session.Snapshot{
		Level: 6, Genre: "defense", Status: "ongoing",
		Ledger: economy.Ledger{Money: 70, Lives: 18, Score: 4},
		HUD:    session.HUD{Towers: 1, FreeSpots: 9, Selection: "basic"},
		Wave:   &session.WaveView{Wave: 2, Phase: "spawning", Spawned: 3, Quota: 9},
	}
	assert.Equal(t, "L6 defense  score 4  money 70  lives 18  towers 1/10  sel basic  wave 2 spawning 3/9", frontend.StatusLine(snap))
}

func TestStatusLine_TerminalAndBoss(t *testing.T) {
	snap := session.Snapshot{
		Level: 10, Genre: "final", Status: "victory",
		HUD:  session.HUD{Ammo: 3},
		Boss: &session.BossView{Health: 0, MaxHealth: 500, Phase: 3, Phases: 3, Rage: true},
	}
	line := frontend.StatusLine(snap)
	assert.Contains(t, line, "ammo 3")
	assert.Contains(t, line, "boss 0/500 p3/3 RAGE")
	assert.Contains(t, line, "VICTORY")
}

func TestStatusLine_Stealth(t *testing.T) {
	snap := session.Snapshot{
		Level: 7, Genre: "stealth", Status: "ongoing",
		Detection: &session.DetectionView{Level: 42.4, Max: 100, Alarm: true, Stage: 2, Captures: 1},
	}
	assert.Contains(t, frontend.StatusLine(snap), "detect 42/100 stage 2 caught 1 ALARM")
}

func TestCamera_FollowsPlayerWithinField(t *testing.T) {
	snap := session.Snapshot{
		Field:  geom.Rect{X: 0, Y: -350, W: 800, H: 950},
		Actors: []session.ActorView{{Kind: "player", Pos: geom.V(100, 500)}},
	}
	assert.Equal(t, geom.V(0, 0), frontend.Camera(snap, 800, 600), "clamped to the field bottom")

	snap.Actors[0].Pos = geom.V(100, -300)
	assert.Equal(t, geom.V(0, -350), frontend.Camera(snap, 800, 600), "clamped to the field top")

	snap.Actors[0].Pos = geom.V(100, 100)
	assert.Equal(t, geom.V(0, -200), frontend.Camera(snap, 800, 600))

	snap.Actors = nil
	assert.Equal(t, geom.V(0, -350), frontend.Camera(snap, 800, 600), "no player shows the field origin")
}
