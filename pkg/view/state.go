package view

import (
	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/link"
	"github.com/itohio/gohe/pkg/matrix"
)

// Halves is the number of board halves a State tracks.
const Halves = 2

// State is the last known picture of a board assembled from link frames.
type State struct {
	Rows, Cols uint8
	Mask       []matrix.Row
	Pressed    []matrix.Row
	Travel     [][]uint8
	Axes       [Halves]axes.Buffer
	Frames     uint64
}

// NewState creates an empty state for a rows x cols board.
func NewState(rows, cols uint8, mask []matrix.Row) *State {
	s := &State{
		Rows:    rows,
		Cols:    cols,
		Mask:    make([]matrix.Row, rows),
		Pressed: make([]matrix.Row, rows),
		Travel:  make([][]uint8, rows),
	}
	copy(s.Mask, mask)
	for r := range s.Travel {
		s.Travel[r] = make([]uint8, cols)
	}
	return s
}

// Apply merges a frame received from the given half. Rows outside the board
// are ignored.
func (s *State) Apply(f link.Frame, half int) {
	s.Frames++
	switch f.Kind {
	case link.KindMatrix:
		for i, bits := range f.Rows {
			r := int(f.Row) + i
			if r >= int(s.Rows) {
				break
			}
			s.Pressed[r] = bits
		}
	case link.KindTravel:
		if f.Row >= s.Rows {
			return
		}
		copy(s.Travel[f.Row], f.Travel)
	case link.KindAxes:
		if half >= 0 && half < Halves {
			s.Axes[half] = f.Axes
		}
	}
}

// IsPressed reports whether the key at (row, col) is down.
func (s *State) IsPressed(row, col uint8) bool {
	return s.Pressed[row]&(1<<col) != 0
}

// Sensed reports whether (row, col) has a sensor.
func (s *State) Sensed(row, col uint8) bool {
	return s.Mask[row]&(1<<col) != 0
}

// Combined sums the axis buffers of both halves, saturating every channel.
func (s *State) Combined() axes.Buffer {
	var out axes.Buffer
	for g := range out {
		for c := range out[g] {
			v := uint32(0)
			for h := range s.Axes {
				v += uint32(s.Axes[h][g][c])
			}
			out[g][c] = uint16(min(v, 0xffff))
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.Mask = append([]matrix.Row(nil), s.Mask...)
	c.Pressed = append([]matrix.Row(nil), s.Pressed...)
	c.Travel = make([][]uint8, len(s.Travel))
	for r := range s.Travel {
		c.Travel[r] = append([]uint8(nil), s.Travel[r]...)
	}
	return &c
}
