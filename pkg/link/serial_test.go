//go:build !tinygo

package link

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/itohio/gohe/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	dev := New("COM3", 115200, 10)
	assert.NotNil(t, dev)
	assert.Equal(t, "COM3", dev.port)
	assert.Equal(t, 115200, dev.baudRate)
	assert.Equal(t, 10, dev.bufSize)
	assert.Equal(t, 10, cap(dev.frames))
}

func TestNew_Defaults(t *testing.T) {
	dev := New("COM3", 0, 0)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestSerial_NotConnected(t *testing.T) {
	dev := New("COM3", 0, 0)
	assert.False(t, dev.IsConnected())
	assert.Error(t, dev.Send(MatrixFrame(0, []matrix.Row{1})))
	assert.NoError(t, dev.Close())
}

func pipe(t *testing.T) (*Serial, net.Conn) {
	t.Helper()
	board, host := net.Pipe()
	dev := New("pipe", 0, 0)
	dev.mu.Lock()
	dev.attach(host)
	dev.mu.Unlock()
	t.Cleanup(func() {
		board.Close()
		dev.Close()
	})
	return dev, board
}

func TestSerial_ReadFrames(t *testing.T) {
	dev, board := pipe(t)
	assert.True(t, dev.IsConnected())

	go func() {
		board.Write([]byte("M,0,ff,1\n\ngarbage\nT,1,0,200\n"))
	}()

	select {
	case f := <-dev.Frames():
		assert.Equal(t, MatrixFrame(0, []matrix.Row{0xff, 1}), f)
	case <-time.After(time.Second):
		t.Fatal("no matrix frame")
	}
	select {
	case f := <-dev.Frames():
		assert.Equal(t, TravelFrame(1, []uint8{0, 200}), f)
	case <-time.After(time.Second):
		t.Fatal("no travel frame")
	}
}

func TestSerial_Send(t *testing.T) {
	dev, board := pipe(t)

	lines := make(chan string, 1)
	go func() {
		r := bufio.NewReader(board)
		line, _ := r.ReadString('\n')
		lines <- line
	}()

	require.NoError(t, dev.Send(TravelFrame(0, []uint8{5})))
	select {
	case line := <-lines:
		assert.Equal(t, "T,0,5\n", line)
	case <-time.After(time.Second):
		t.Fatal("frame not written")
	}
}

// TestSerial_GracefulShutdown tests that the frames channel closes after
// Close.
func TestSerial_GracefulShutdown(t *testing.T) {
	dev, _ := pipe(t)
	require.NoError(t, dev.Close())
	assert.False(t, dev.IsConnected())

	select {
	case _, ok := <-dev.Frames():
		assert.False(t, ok, "Channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("Frames channel did not close within timeout")
	}
}
