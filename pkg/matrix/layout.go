package matrix

import (
	"errors"
	"fmt"
	"time"

	"github.com/itohio/gohe/pkg/axes"
)

// MaxCols is the widest row a Row bitmask can hold.
const MaxCols = 32

// ErrLayout is wrapped by every layout validation error.
var ErrLayout = errors.New("invalid layout")

// Row is a column bitmask of one matrix row.
type Row = uint32

// Position is a matrix coordinate.
type Position = axes.Position

// DirectRow describes a row whose sensors are wired straight to converter
// inputs instead of through the multiplexer. Channels sensors share the
// converters in groups of Layout.MuxesPerADC.
type DirectRow struct {
	Row      int   // absolute row index, -1 when absent
	Channels uint8 // direct sensors on the row
}

// Layout is the board description the scanner is built from.
type Layout struct {
	Rows  uint8 // rows of the whole board, both halves
	Cols  uint8
	Split bool
	Mask  []Row // analog-sensed cells, one mask per row

	DirectLeft  DirectRow
	DirectRight DirectRow
	MuxesPerADC uint8

	DKS     bool
	Axes    bool
	Sources []axes.Source

	Rest         RestPolicy
	RestPeriod   uint32 // ms
	StartupDelay time.Duration
}

// RowsPerHand returns the number of rows scanned by one controller.
func (l *Layout) RowsPerHand() uint8 {
	if l.Split {
		return l.Rows / 2
	}
	return l.Rows
}

// Direct returns the direct row description for the given hand.
func (l *Layout) Direct(left bool) DirectRow {
	if left || !l.Split {
		return l.DirectLeft
	}
	return l.DirectRight
}

// Active reports whether the cell is analog-sensed.
func (l *Layout) Active(row, col uint8) bool {
	return int(row) < len(l.Mask) && col < MaxCols && l.Mask[row]&(1<<col) != 0
}

// Validate checks the structural invariants the scanner relies on.
func (l *Layout) Validate() error {
	if l.Rows == 0 || l.Cols == 0 {
		return fmt.Errorf("%w: empty matrix %dx%d", ErrLayout, l.Rows, l.Cols)
	}
	if l.Cols > MaxCols {
		return fmt.Errorf("%w: %d columns exceed %d", ErrLayout, l.Cols, MaxCols)
	}
	if l.Split && l.Rows%2 != 0 {
		return fmt.Errorf("%w: split board needs an even row count, got %d", ErrLayout, l.Rows)
	}
	if len(l.Mask) != int(l.Rows) {
		return fmt.Errorf("%w: mask has %d rows, want %d", ErrLayout, len(l.Mask), l.Rows)
	}
	for r, m := range l.Mask {
		if m>>l.Cols != 0 {
			return fmt.Errorf("%w: mask row %d has bits beyond column %d", ErrLayout, r, l.Cols-1)
		}
	}
	if l.MuxesPerADC == 0 {
		return fmt.Errorf("%w: muxes per ADC must be at least 1", ErrLayout)
	}

	hands := []bool{true}
	if l.Split {
		hands = append(hands, false)
	}
	for _, left := range hands {
		d := l.Direct(left)
		if d.Row < 0 {
			continue
		}
		lo := 0
		if !left {
			lo = int(l.RowsPerHand())
		}
		if d.Row < lo || d.Row >= lo+int(l.RowsPerHand()) {
			return fmt.Errorf("%w: direct row %d outside its half", ErrLayout, d.Row)
		}
		if d.Channels == 0 || d.Channels > l.Cols {
			return fmt.Errorf("%w: direct row %d has %d channels", ErrLayout, d.Row, d.Channels)
		}
	}

	for _, s := range l.Sources {
		if s.Group < 0 || s.Group >= axes.Groups {
			return fmt.Errorf("%w: axis source %q uses group %d", ErrLayout, s.Name, s.Group)
		}
		if s.Toggle == 0 {
			return fmt.Errorf("%w: axis source %q has no toggle bit", ErrLayout, s.Name)
		}
		for _, p := range s.Coords {
			if p == axes.None {
				continue
			}
			if p.Row >= l.Rows || p.Col >= l.Cols {
				return fmt.Errorf("%w: axis source %q references (%d,%d)", ErrLayout, s.Name, p.Row, p.Col)
			}
		}
	}
	return nil
}
