package link

import (
	"testing"
	"time"

	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/hal"
	"github.com/itohio/gohe/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoard(t *testing.T) (*matrix.Scanner, *hal.Mock) {
	t.Helper()
	layout := matrix.Layout{
		Rows:        2,
		Cols:        4,
		Mask:        []matrix.Row{0x0f, 0x0f},
		DirectLeft:  matrix.DirectRow{Row: -1},
		DirectRight: matrix.DirectRow{Row: -1},
		MuxesPerADC: 1,
		Axes:        true,
		Sources: []axes.Source{{
			Name: "mouse", Toggle: axes.ToggleMouse, Group: axes.Mouse,
			Coords: [axes.Channels]axes.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}},
		}},
		Rest:       matrix.RestWindow,
		RestPeriod: matrix.RestPeriod,
	}
	m := hal.NewMock(2, 4, true, true)
	s, err := matrix.New(layout, m)
	require.NoError(t, err)
	s.Axes().SetToggles(axes.ToggleMouse)
	return s, m
}

func next(t *testing.T, frames <-chan Frame, kind Kind) Frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-frames:
			require.True(t, ok, "frames channel closed")
			if f.Kind == kind {
				return f
			}
		case <-timeout:
			t.Fatalf("no %c frame", kind)
		}
	}
}

func TestNewMock(t *testing.T) {
	s, _ := newBoard(t)
	dev := NewMock(s, 0)

	assert.Equal(t, time.Millisecond, dev.interval)
	assert.False(t, dev.IsConnected())
	assert.Zero(t, dev.Scans())
	assert.Len(t, dev.current, 2)
}

func TestMock_Connect_AlreadyConnected(t *testing.T) {
	s, _ := newBoard(t)
	dev := NewMock(s, time.Millisecond)

	require.NoError(t, dev.Connect())
	defer dev.Close()

	assert.Error(t, dev.Connect())
}

func TestMock_Close_NotConnected(t *testing.T) {
	s, _ := newBoard(t)
	dev := NewMock(s, time.Millisecond)

	assert.NoError(t, dev.Close())
	assert.Error(t, dev.Send(AxesFrame(axes.Buffer{})))
}

func TestMock_Frames(t *testing.T) {
	s, m := newBoard(t)
	m.SetTravel(0, 2, 1)

	dev := NewMock(s, time.Millisecond)
	require.NoError(t, dev.Connect())
	defer dev.Close()

	f := next(t, dev.Frames(), KindMatrix)
	assert.Equal(t, []matrix.Row{1 << 2, 0}, f.Rows)

	f = next(t, dev.Frames(), KindTravel)
	assert.Equal(t, uint8(0), f.Row)
	assert.Equal(t, []uint8{0, 0, 200, 0}, f.Travel)

	f = next(t, dev.Frames(), KindAxes)
	assert.Equal(t, uint16(127), f.Axes[axes.Mouse][2])
	assert.NotZero(t, dev.Scans())
}

func TestMock_Send(t *testing.T) {
	s, _ := newBoard(t)
	dev := NewMock(s, time.Millisecond)
	require.NoError(t, dev.Connect())
	defer dev.Close()

	var slave axes.Buffer
	slave[axes.Mouse][1] = 10
	require.NoError(t, dev.Send(AxesFrame(slave)))
	require.NoError(t, dev.Send(MatrixFrame(0, []matrix.Row{1})))

	assert.Equal(t, slave, s.Axes().FromSlave())
}

// TestMock_GracefulShutdown tests that the frames channel closes after Close.
func TestMock_GracefulShutdown(t *testing.T) {
	s, m := newBoard(t)
	m.SetTravel(0, 0, 1)

	dev := NewMock(s, time.Millisecond)
	require.NoError(t, dev.Connect())
	frames := dev.Frames()

	next(t, frames, KindAxes)
	require.NoError(t, dev.Close())
	assert.False(t, dev.IsConnected())

	for range frames {
	}
	_, ok := <-frames
	assert.False(t, ok, "Channel should be closed")
	assert.Error(t, dev.Connect())
}
