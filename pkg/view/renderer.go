package view

import (
	"fmt"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gohe/pkg/axes"
)

var (
	unsensedColor = color.RGBA{R: 35, G: 35, B: 35, A: 255}
	pressedColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	textColor     = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	axisNames     = [axes.Groups]string{"joy L", "joy R", "mouse", "scroll"}
)

// gridRenderer renders the key grid widget.
type gridRenderer struct {
	grid *KeyGrid

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

// MinSize returns the minimum size of the widget.
func (r *gridRenderer) MinSize() fyne.Size {
	r.grid.mu.RLock()
	rows, cols := r.grid.state.Rows, r.grid.state.Cols
	r.grid.mu.RUnlock()
	return fyne.NewSize(
		2*margin+float32(cols)*minCellSize,
		2*margin+axesHeight+float32(rows)*minCellSize,
	)
}

// Layout arranges the widget components.
func (r *gridRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.Refresh()
}

// Refresh rebuilds the cells from the current state.
func (r *gridRenderer) Refresh() {
	state := r.grid.State()
	maxTravel := r.grid.maxTravel

	r.objects = []fyne.CanvasObject{r.bg}

	size := r.grid.Size()
	w, h := cellSize(size, state.Rows, state.Cols)
	if w <= 0 || h <= 0 {
		return
	}

	for row := uint8(0); row < state.Rows; row++ {
		for col := uint8(0); col < state.Cols; col++ {
			x := margin + float32(col)*w
			y := margin + float32(row)*h

			cell := canvas.NewRectangle(unsensedColor)
			if state.Sensed(row, col) {
				cell.FillColor = Heat(state.Travel[row][col], maxTravel)
			}
			if state.IsPressed(row, col) {
				cell.StrokeColor = pressedColor
				cell.StrokeWidth = 2
			}
			cell.Move(fyne.NewPos(x+1, y+1))
			cell.Resize(fyne.NewSize(w-2, h-2))
			r.objects = append(r.objects, cell)

			if d := state.Travel[row][col]; d > 0 {
				text := canvas.NewText(strconv.Itoa(int(d)), textColor)
				text.TextSize = 10
				text.Alignment = fyne.TextAlignCenter
				text.Move(fyne.NewPos(x+w/2, y+h/2-6))
				r.objects = append(r.objects, text)
			}
		}
	}

	r.drawAxes(state.Combined(), margin, margin+float32(state.Rows)*h+8)
}

// drawAxes prints the combined axis groups below the grid.
func (r *gridRenderer) drawAxes(buf axes.Buffer, x, y float32) {
	for g := range buf {
		label := fmt.Sprintf("%s %v", axisNames[g], buf[g])
		text := canvas.NewText(label, textColor)
		text.TextSize = 11
		text.Move(fyne.NewPos(x+float32(g%2)*220, y+float32(g/2)*14))
		r.objects = append(r.objects, text)
	}
}

// Objects returns all canvas objects for rendering.
func (r *gridRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *gridRenderer) Destroy() {
	// Cleanup handled by Fyne
}
