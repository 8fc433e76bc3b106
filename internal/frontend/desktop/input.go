package desktop

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/input"
)

// Device is the subset of ebiten input state the front end reads.
type Device interface {
	Held(k ebiten.Key) bool
	JustPressed(k ebiten.Key) bool
	Cursor() (x, y int)
	JustClicked(b ebiten.MouseButton) bool
}

// ebitenDevice reads the live ebiten input state.
type ebitenDevice struct{}

func (ebitenDevice) Held(k ebiten.Key) bool { return ebiten.IsKeyPressed(k) }

func (ebitenDevice) JustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

func (ebitenDevice) Cursor() (int, int) { return ebiten.CursorPosition() }

func (ebitenDevice) JustClicked(b ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustPressed(b)
}

// bindings lists the physical keys for each logical key.
var bindings = map[input.Key][]ebiten.Key{
	input.KeyLeft:    {ebiten.KeyArrowLeft, ebiten.KeyA},
	input.KeyRight:   {ebiten.KeyArrowRight, ebiten.KeyD},
	input.KeyUp:      {ebiten.KeyArrowUp, ebiten.KeyW},
	input.KeyDown:    {ebiten.KeyArrowDown, ebiten.KeyS},
	input.KeyFire:    {ebiten.KeySpace},
	input.KeyJump:    {ebiten.KeyArrowUp, ebiten.KeyW},
	input.KeyReload:  {ebiten.KeyR},
	input.KeySelect1: {ebiten.Key1},
	input.KeySelect2: {ebiten.Key2},
	input.KeySelect3: {ebiten.Key3},
	input.KeySelect4: {ebiten.Key4},
}

// ReadInput samples d into a snapshot. cam is the world point drawn at the
// screen's top-left corner.
func ReadInput(d Device, cam geom.Vec2) input.Snapshot {
	var in input.Snapshot
	for k, keys := range bindings {
		for _, p := range keys {
			if d.Held(p) {
				in.Held = in.Held.With(k)
			}
			if d.JustPressed(p) {
				in.Pressed = in.Pressed.With(k)
			}
		}
	}
	x, y := d.Cursor()
	in.Aim = cam.Add(geom.V(float64(x), float64(y)))
	in.HasAim = true
	in.Primary = d.JustClicked(ebiten.MouseButtonLeft)
	in.Secondary = d.JustClicked(ebiten.MouseButtonRight)
	return in
}
