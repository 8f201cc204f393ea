package view

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gohe/pkg/link"
	"github.com/itohio/gohe/pkg/matrix"
)

const (
	margin      = float32(10)
	axesHeight  = float32(40)
	minCellSize = float32(36)
)

// KeyGrid is a custom Fyne widget that displays key travel as a heat map.
// Pressed keys are outlined; cells without a sensor are drawn dark.
type KeyGrid struct {
	widget.BaseWidget

	mu        sync.RWMutex
	state     *State
	maxTravel uint8

	// OnTapped is called with the tapped cell. Secondary taps report
	// secondary = true.
	OnTapped func(row, col uint8, secondary bool)
}

// NewKeyGrid creates a new KeyGrid for a rows x cols board. maxTravel is the
// displacement drawn at full heat.
func NewKeyGrid(rows, cols uint8, mask []matrix.Row, maxTravel uint8) *KeyGrid {
	g := &KeyGrid{
		state:     NewState(rows, cols, mask),
		maxTravel: max(1, maxTravel),
	}
	g.ExtendBaseWidget(g)
	return g
}

// Apply merges a frame and refreshes the widget.
// This should be called from the frame consumer using fyne.Do().
func (g *KeyGrid) Apply(f link.Frame, half int) {
	g.mu.Lock()
	g.state.Apply(f, half)
	g.mu.Unlock()

	g.Refresh()
}

// State returns a copy of the displayed state.
func (g *KeyGrid) State() *State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.Clone()
}

// Tapped implements fyne.Tappable.
func (g *KeyGrid) Tapped(ev *fyne.PointEvent) {
	g.tap(ev.Position, false)
}

// TappedSecondary implements fyne.SecondaryTappable.
func (g *KeyGrid) TappedSecondary(ev *fyne.PointEvent) {
	g.tap(ev.Position, true)
}

func (g *KeyGrid) tap(pos fyne.Position, secondary bool) {
	if g.OnTapped == nil {
		return
	}
	g.mu.RLock()
	rows, cols := g.state.Rows, g.state.Cols
	g.mu.RUnlock()

	if row, col, ok := CellAt(pos, g.Size(), rows, cols); ok {
		g.OnTapped(row, col, secondary)
	}
}

// CreateRenderer creates the widget renderer.
func (g *KeyGrid) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &gridRenderer{
		grid:    g,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}

// cellSize returns the size of one key cell inside a widget of the given size.
func cellSize(size fyne.Size, rows, cols uint8) (w, h float32) {
	if rows == 0 || cols == 0 {
		return 0, 0
	}
	w = (size.Width - 2*margin) / float32(cols)
	h = (size.Height - 2*margin - axesHeight) / float32(rows)
	return w, h
}

// CellAt maps a widget-relative position onto a key cell.
func CellAt(pos fyne.Position, size fyne.Size, rows, cols uint8) (row, col uint8, ok bool) {
	w, h := cellSize(size, rows, cols)
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	x, y := pos.X-margin, pos.Y-margin
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	c, r := int(x/w), int(y/h)
	if c >= int(cols) || r >= int(rows) {
		return 0, 0, false
	}
	return uint8(r), uint8(c), true
}

// Heat maps a displacement onto a blue to red gradient.
func Heat(d, maxTravel uint8) color.RGBA {
	if maxTravel == 0 {
		maxTravel = 1
	}
	v := uint32(min(d, maxTravel)) * 255 / uint32(maxTravel)
	return color.RGBA{R: uint8(v), G: uint8(64 - v/4), B: uint8(255 - v), A: 255}
}
