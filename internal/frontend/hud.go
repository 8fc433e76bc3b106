// Package frontend holds presentation helpers shared by the desktop and
// terminal front ends. Front ends only read session snapshots.
package frontend

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

// StatusLine renders the one-line HUD for snap. Only counters the genre uses
// are shown.
func StatusLine(snap session.Snapshot) string {
	parts := []string{fmt.Sprintf("L%d %s", snap.Level, snap.Genre)}
	l := snap.Ledger
	parts = append(parts, fmt.Sprintf("score %d", l.Score))

	switch snap.Genre {
	case "defense":
		parts = append(parts, fmt.Sprintf("money %d", l.Money), fmt.Sprintf("lives %d", l.Lives),
			fmt.Sprintf("towers %d/%d", snap.HUD.Towers, snap.HUD.Towers+snap.HUD.FreeSpots))
	case "strategy":
		parts = append(parts, fmt.Sprintf("minerals %d", l.Minerals),
			fmt.Sprintf("supply %d/%d", l.SupplyUsed, l.SupplyMax),
			fmt.Sprintf("enemy %d", snap.HUD.EnemyMinerals))
	case "platformer":
		if snap.HUD.Charge > 0 {
			parts = append(parts, "charge "+strings.Repeat("|", snap.HUD.Charge))
		}
	}
	if snap.HUD.Selection != "" {
		parts = append(parts, "sel "+snap.HUD.Selection)
	}
	if snap.HUD.Ammo > 0 || snap.HUD.Reloading {
		ammo := fmt.Sprintf("ammo %d", snap.HUD.Ammo)
		if snap.HUD.Reloading {
			ammo += " (reloading)"
		}
		parts = append(parts, ammo)
	}
	if w := snap.Wave; w != nil {
		parts = append(parts, fmt.Sprintf("wave %d %s %d/%d", w.Wave, w.Phase, w.Spawned, w.Quota))
	}
	if b := snap.Boss; b != nil {
		boss := fmt.Sprintf("boss %d/%d p%d/%d", b.Health, b.MaxHealth, b.Phase, b.Phases)
		if b.Shielded {
			boss += " shield"
		}
		if b.Rage {
			boss += " RAGE"
		}
		parts = append(parts, boss)
	}
	if d := snap.Detection; d != nil {
		det := fmt.Sprintf("detect %.0f/%.0f stage %d caught %d", d.Level, d.Max, d.Stage, d.Captures)
		if d.Alarm {
			det += " ALARM"
		}
		parts = append(parts, det)
	}
	if snap.Status != session.Ongoing.String() {
		parts = append(parts, strings.ToUpper(snap.Status))
	}
	return strings.Join(parts, "  ")
}

// Camera returns the top-left world point of a view w by h over snap's
// field. The view follows the player on any axis where the field is larger
// than the view, and stays inside the field.
func Camera(snap session.Snapshot, w, h float64) geom.Vec2 {
	f := snap.Field
	origin := geom.V(f.X, f.Y)
	var player *session.ActorView
	for i := range snap.Actors {
		if snap.Actors[i].Kind == "player" {
			player = &snap.Actors[i]
			break
		}
	}
	if player == nil {
		return origin
	}
	if f.W > w {
		origin.X = min(max(player.Pos.X-w/2, f.X), f.Right()-w)
	}
	if f.H > h {
		origin.Y = min(max(player.Pos.Y-h/2, f.Y), f.Bottom()-h)
	}
	return origin
}
