// Package desktop is the ebiten front end for local play. It turns device
// state into input snapshots and draws the latest session snapshot.
package desktop

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/cory-johannsen/skirmish/internal/frontend"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/input"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

const (
	ScreenWidth  = 800
	ScreenHeight = 600
)

// Submitter accepts input for the next simulation tick.
type Submitter interface {
	Submit(in input.Snapshot)
}

// Game implements ebiten.Game over a running simulation.
type Game struct {
	sink   Submitter
	device Device
	frames <-chan session.Snapshot
	done   <-chan error

	mu   sync.Mutex
	last session.Snapshot
}

// NewGame returns a Game that submits input to sink and draws snapshots
// received on frames. The window closes when done yields.
func NewGame(sink Submitter, frames <-chan session.Snapshot, done <-chan error) *Game {
	return &Game{sink: sink, device: ebitenDevice{}, frames: frames, done: done}
}

// Update drains pending snapshots and submits this frame's input. It ends
// the game with the simulation's error, or ebiten.Termination on a clean end.
func (g *Game) Update() error {
	select {
	case err := <-g.done:
		if err != nil {
			return err
		}
		return ebiten.Termination
	default:
	}
	g.drain()
	g.mu.Lock()
	cam := frontend.Camera(g.last, ScreenWidth, ScreenHeight)
	g.mu.Unlock()
	g.sink.Submit(ReadInput(g.device, cam))
	return nil
}

func (g *Game) drain() {
	for {
		select {
		case snap := <-g.frames:
			g.mu.Lock()
			g.last = snap
			g.mu.Unlock()
		default:
			return
		}
	}
}

// Draw renders the latest snapshot.
func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	snap := g.last
	g.mu.Unlock()

	screen.Fill(color.RGBA{0x10, 0x12, 0x18, 0xff})
	cam := frontend.Camera(snap, ScreenWidth, ScreenHeight)
	for _, a := range snap.Actors {
		fillRect(screen, geom.CenteredRect(a.Pos, a.Size.X, a.Size.Y), cam, actorColor(a))
		if a.MaxHealth > 1 && a.Health < a.MaxHealth {
			drawHealthBar(screen, a, cam)
		}
	}
	for _, s := range snap.Shots {
		fillRect(screen, geom.CenteredRect(s.Pos, s.Size.X, s.Size.Y), cam, shotColor(s))
	}
	text.Draw(screen, frontend.StatusLine(snap), basicfont.Face7x13, 8, 16, color.White)
}

// Layout fixes the logical screen size.
func (g *Game) Layout(int, int) (int, int) { return ScreenWidth, ScreenHeight }

func fillRect(dst *ebiten.Image, r geom.Rect, cam geom.Vec2, c color.Color) {
	vector.DrawFilledRect(dst, float32(r.X-cam.X), float32(r.Y-cam.Y), float32(r.W), float32(r.H), c, false)
}

func drawHealthBar(dst *ebiten.Image, a session.ActorView, cam geom.Vec2) {
	r := geom.CenteredRect(a.Pos, a.Size.X, a.Size.Y)
	bar := geom.Rect{X: r.X, Y: r.Y - 5, W: r.W, H: 3}
	fillRect(dst, bar, cam, color.RGBA{0x40, 0x00, 0x00, 0xff})
	bar.W = r.W * float64(max(a.Health, 0)) / float64(a.MaxHealth)
	fillRect(dst, bar, cam, color.RGBA{0x20, 0xd0, 0x20, 0xff})
}

var kindColors = map[string]color.RGBA{
	"player":   {0x40, 0xa0, 0xff, 0xff},
	"tower":    {0x80, 0x80, 0xff, 0xff},
	"boss":     {0xff, 0x30, 0x80, 0xff},
	"hazard":   {0xff, 0x80, 0x00, 0xff},
	"guard":    {0xff, 0xe0, 0x40, 0xff},
	"building": {0x90, 0x90, 0x90, 0xff},
	"deposit":  {0x30, 0xd0, 0xd0, 0xff},
}

var factionColors = map[string]color.RGBA{
	"player":    {0x40, 0xc0, 0x70, 0xff},
	"hostile":   {0xe0, 0x40, 0x40, 0xff},
	"structure": {0x60, 0x60, 0x70, 0xff},
	"neutral":   {0x70, 0x70, 0x70, 0xff},
}

func actorColor(a session.ActorView) color.Color {
	c, ok := kindColors[a.Kind]
	if !ok {
		c = factionColors[a.Faction]
	}
	if a.Kind == "building" && a.Faction == "hostile" {
		c = factionColors["hostile"]
	}
	if a.Frozen > 0 {
		c = color.RGBA{0xa0, 0xe0, 0xff, 0xff}
	}
	if a.Immune {
		c.A = 0x80
	}
	return c
}

func shotColor(s session.ShotView) color.Color {
	switch s.Tag {
	case "freeze":
		return color.RGBA{0xa0, 0xe0, 0xff, 0xff}
	case "laser":
		return color.RGBA{0xff, 0x20, 0x20, 0xff}
	case "acid":
		return color.RGBA{0x80, 0xff, 0x20, 0xff}
	case "fire", "rocket":
		return color.RGBA{0xff, 0x60, 0x10, 0xff}
	}
	if s.Faction == "hostile" {
		return color.RGBA{0xff, 0x90, 0x40, 0xff}
	}
	return color.RGBA{0xff, 0xff, 0xa0, 0xff}
}
