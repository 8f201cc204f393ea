package view

import (
	"testing"

	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/link"
	"github.com/itohio/gohe/pkg/matrix"
	"github.com/stretchr/testify/assert"
)

func TestState_Apply(t *testing.T) {
	s := NewState(4, 4, []matrix.Row{0x0f, 0x0f, 0x0f, 0x03})

	s.Apply(link.MatrixFrame(0, []matrix.Row{0x01, 0x02}), 0)
	s.Apply(link.MatrixFrame(2, []matrix.Row{0x04, 0x08}), 1)
	assert.Equal(t, []matrix.Row{0x01, 0x02, 0x04, 0x08}, s.Pressed)
	assert.True(t, s.IsPressed(3, 3))
	assert.False(t, s.IsPressed(3, 2))

	// A later frame of one half leaves the other half alone
	s.Apply(link.MatrixFrame(0, []matrix.Row{0, 0}), 0)
	assert.Equal(t, []matrix.Row{0, 0, 0x04, 0x08}, s.Pressed)

	s.Apply(link.TravelFrame(2, []uint8{0, 50, 200, 0}), 1)
	assert.Equal(t, []uint8{0, 50, 200, 0}, s.Travel[2])

	assert.Equal(t, uint64(4), s.Frames)
}

func TestState_ApplyOutOfRange(t *testing.T) {
	s := NewState(2, 4, nil)

	s.Apply(link.MatrixFrame(1, []matrix.Row{1, 2, 3}), 0)
	s.Apply(link.TravelFrame(5, []uint8{1}), 0)
	s.Apply(link.AxesFrame(axes.Buffer{{1}}), 2)

	assert.Equal(t, []matrix.Row{0, 1}, s.Pressed)
	assert.Equal(t, [Halves]axes.Buffer{}, s.Axes)
	assert.False(t, s.Sensed(0, 0))
}

func TestState_Combined(t *testing.T) {
	s := NewState(1, 1, nil)

	var left, right axes.Buffer
	left[axes.Mouse][0] = 10
	right[axes.Mouse][0] = 15
	left[axes.Scroll][1] = 0xfff0
	right[axes.Scroll][1] = 0x00ff

	s.Apply(link.AxesFrame(left), 0)
	s.Apply(link.AxesFrame(right), 1)

	got := s.Combined()
	assert.Equal(t, uint16(25), got[axes.Mouse][0])
	assert.Equal(t, uint16(0xffff), got[axes.Scroll][1])
}

func TestState_Clone(t *testing.T) {
	s := NewState(1, 2, []matrix.Row{0x3})
	s.Apply(link.TravelFrame(0, []uint8{7, 8}), 0)

	c := s.Clone()
	c.Travel[0][0] = 99
	c.Pressed[0] = 1

	assert.Equal(t, uint8(7), s.Travel[0][0])
	assert.Zero(t, s.Pressed[0])
	assert.Equal(t, s.Mask, c.Mask)
}
