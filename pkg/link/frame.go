package link

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/matrix"
)

// Kind identifies a frame on the line.
type Kind byte

// Frame kinds.
const (
	// KindAxes carries a virtual axis buffer: A,<16 decimal values>
	KindAxes Kind = 'A'
	// KindMatrix carries the rows of one half: M,<first row>,<one hex value per row>
	KindMatrix Kind = 'M'
	// KindTravel carries the displacement of one row: T,<row>,<distances>
	KindTravel Kind = 'T'
)

// Frame is one line exchanged between the halves or sent to a host tool.
// Row is the first row of a matrix frame and the row of a travel frame.
type Frame struct {
	Kind   Kind
	Axes   axes.Buffer
	Rows   []matrix.Row
	Row    uint8
	Travel []uint8
}

// AxesFrame creates an axes frame.
func AxesFrame(b axes.Buffer) Frame {
	return Frame{Kind: KindAxes, Axes: b}
}

// MatrixFrame creates a matrix frame for rows starting at first.
func MatrixFrame(first uint8, rows []matrix.Row) Frame {
	return Frame{Kind: KindMatrix, Row: first, Rows: rows}
}

// TravelFrame creates a travel frame.
func TravelFrame(row uint8, travel []uint8) Frame {
	return Frame{Kind: KindTravel, Row: row, Travel: travel}
}

// Append appends the line form of f, without the newline, to dst.
func (f *Frame) Append(dst []byte) []byte {
	dst = append(dst, byte(f.Kind))
	switch f.Kind {
	case KindAxes:
		for g := range f.Axes {
			for c := range f.Axes[g] {
				dst = append(dst, ',')
				dst = strconv.AppendUint(dst, uint64(f.Axes[g][c]), 10)
			}
		}
	case KindMatrix:
		dst = append(dst, ',')
		dst = strconv.AppendUint(dst, uint64(f.Row), 10)
		for _, r := range f.Rows {
			dst = append(dst, ',')
			dst = strconv.AppendUint(dst, uint64(r), 16)
		}
	case KindTravel:
		dst = append(dst, ',')
		dst = strconv.AppendUint(dst, uint64(f.Row), 10)
		for _, d := range f.Travel {
			dst = append(dst, ',')
			dst = strconv.AppendUint(dst, uint64(d), 10)
		}
	}
	return dst
}

func (f Frame) String() string {
	return string(f.Append(nil))
}

// ParseFrame parses a line into a Frame.
// Examples: A,0,0,127,0,0,0,0,0,0,0,0,0,0,0,0,0  M,6,ff,0,f0  T,2,0,0,200,0
func ParseFrame(line string) (Frame, error) {
	parts := strings.Split(line, ",")
	if len(parts[0]) != 1 {
		return Frame{}, fmt.Errorf("invalid frame kind %q", parts[0])
	}

	f := Frame{Kind: Kind(parts[0][0])}
	values := parts[1:]
	switch f.Kind {
	case KindAxes:
		if len(values) != axes.Groups*axes.Channels {
			return Frame{}, fmt.Errorf("invalid axes frame: expected %d values, got %d", axes.Groups*axes.Channels, len(values))
		}
		for i, s := range values {
			v, err := strconv.ParseUint(s, 10, 16)
			if err != nil {
				return Frame{}, fmt.Errorf("invalid axis value %d: %w", i, err)
			}
			f.Axes[i/axes.Channels][i%axes.Channels] = uint16(v)
		}
	case KindMatrix:
		if len(values) < 2 {
			return Frame{}, fmt.Errorf("invalid matrix frame: expected first row and rows")
		}
		first, err := strconv.ParseUint(values[0], 10, 8)
		if err != nil {
			return Frame{}, fmt.Errorf("invalid matrix first row: %w", err)
		}
		f.Row = uint8(first)
		f.Rows = make([]matrix.Row, len(values)-1)
		for i, s := range values[1:] {
			v, err := strconv.ParseUint(s, 16, 32)
			if err != nil {
				return Frame{}, fmt.Errorf("invalid matrix row %d: %w", i, err)
			}
			f.Rows[i] = matrix.Row(v)
		}
	case KindTravel:
		if len(values) < 2 {
			return Frame{}, fmt.Errorf("invalid travel frame: expected row and distances")
		}
		row, err := strconv.ParseUint(values[0], 10, 8)
		if err != nil {
			return Frame{}, fmt.Errorf("invalid travel row: %w", err)
		}
		f.Row = uint8(row)
		f.Travel = make([]uint8, len(values)-1)
		for i, s := range values[1:] {
			v, err := strconv.ParseUint(s, 10, 8)
			if err != nil {
				return Frame{}, fmt.Errorf("invalid distance %d: %w", i, err)
			}
			f.Travel[i] = uint8(v)
		}
	default:
		return Frame{}, fmt.Errorf("unknown frame kind %q", parts[0])
	}
	return f, nil
}
