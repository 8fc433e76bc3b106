// Package terminal draws spectator frames on a character-cell screen.
package terminal

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/cory-johannsen/skirmish/internal/frontend"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/spectator"
)

var glyphs = map[string]rune{
	"player":   '@',
	"missile":  'v',
	"runner":   'r',
	"minion":   'm',
	"zombie":   'z',
	"guard":    'G',
	"tower":    'T',
	"boss":     'B',
	"hazard":   '^',
	"worker":   'w',
	"marine":   'M',
	"tank":     'K',
	"building": '#',
	"deposit":  '$',
}

// Glyph returns the cell rune for an actor kind.
func Glyph(kind string) rune {
	if r, ok := glyphs[kind]; ok {
		return r
	}
	return '?'
}

var factionStyles = map[string]tcell.Style{
	"player":    tcell.StyleDefault.Foreground(tcell.ColorGreen),
	"hostile":   tcell.StyleDefault.Foreground(tcell.ColorRed),
	"structure": tcell.StyleDefault.Foreground(tcell.ColorBlue),
	"neutral":   tcell.StyleDefault.Foreground(tcell.ColorTeal),
}

// Renderer scales the play field onto a tcell screen. Row 0 is the status
// line; the field fills the rest.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer wraps an initialized screen.
func NewRenderer(s tcell.Screen) *Renderer { return &Renderer{screen: s} }

// Draw renders f and shows it.
func (r *Renderer) Draw(f spectator.Frame) {
	r.screen.Clear()
	w, h := r.screen.Size()
	snap := f.Snapshot
	r.text(0, 0, frontend.StatusLine(snap), tcell.StyleDefault.Reverse(true))
	if h > 1 && snap.Field.W > 0 && snap.Field.H > 0 {
		for _, s := range snap.Shots {
			if x, y, ok := r.cell(snap, s.Pos.X, s.Pos.Y, w, h); ok {
				r.screen.SetContent(x, y, '.', nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
			}
		}
		for _, a := range snap.Actors {
			if x, y, ok := r.cell(snap, a.Pos.X, a.Pos.Y, w, h); ok {
				r.screen.SetContent(x, y, Glyph(a.Kind), nil, factionStyles[a.Faction])
			}
		}
	}
	r.screen.Show()
}

// cell maps a field point to a screen cell below the status line.
func (r *Renderer) cell(snap session.Snapshot, px, py float64, w, h int) (int, int, bool) {
	fx := (px - snap.Field.X) / snap.Field.W
	fy := (py - snap.Field.Y) / snap.Field.H
	if fx < 0 || fx >= 1 || fy < 0 || fy >= 1 {
		return 0, 0, false
	}
	x := int(math.Floor(fx * float64(w)))
	y := 1 + int(math.Floor(fy*float64(h-1)))
	return x, y, true
}

func (r *Renderer) text(x, y int, s string, style tcell.Style) {
	for _, c := range s {
		r.screen.SetContent(x, y, c, nil, style)
		x++
	}
}
