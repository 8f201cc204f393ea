package link

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/matrix"
)

// Mock runs a scanner on a ticker and emits the frames a board half would
// send: the rows of its half and their travel after each changed scan, and
// the axis buffer after every scan while any axis is non-zero.
type Mock struct {
	scanner  *matrix.Scanner
	interval time.Duration

	frames    chan Frame
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}

	current []matrix.Row
	scans   uint64
}

// NewMock creates a simulated half around s. The mock owns s while
// connected: nothing else may call s.Scan.
func NewMock(s *matrix.Scanner, interval time.Duration) *Mock {
	if interval <= 0 {
		interval = time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		scanner:  s,
		interval: interval,
		frames:   make(chan Frame, DefaultBufferSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		current:  make([]matrix.Row, s.Layout().Rows),
	}
}

// Connect starts scanning.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.ctx.Err() != nil {
		return fmt.Errorf("mock is closed")
	}

	m.connected = true
	go m.run()

	return nil
}

// Close stops scanning and closes the frames channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.connected = false
	m.mu.Unlock()

	<-m.done
	return nil
}

// Frames returns the channel of emitted frames.
func (m *Mock) Frames() <-chan Frame {
	return m.frames
}

// Send accepts frames from the other half. Axes frames are stored as the
// slave buffer of the scanner's aggregator; other kinds are ignored.
func (m *Mock) Send(f Frame) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	if f.Kind == KindAxes {
		m.scanner.Axes().SetFromSlave(f.Axes)
	}
	return nil
}

// IsConnected returns whether the mock is scanning.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Scans returns the number of completed scans.
func (m *Mock) Scans() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scans
}

func (m *Mock) run() {
	defer close(m.done)
	defer close(m.frames)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if !m.step() {
				return
			}
		}
	}
}

// step runs one scan and emits its frames. It returns false once the mock
// has been closed.
func (m *Mock) step() bool {
	changed := m.scanner.Scan(m.current)

	m.mu.Lock()
	m.scans++
	m.mu.Unlock()

	if changed {
		first, n := m.scanner.RowOffset(), m.scanner.RowsPerHand()
		rows := make([]matrix.Row, n)
		copy(rows, m.current[first:first+n])
		if !m.emit(MatrixFrame(first, rows)) {
			return false
		}
		for r := first; r < first+n; r++ {
			if !m.emit(TravelFrame(r, m.scanner.Travel(r, nil))) {
				return false
			}
		}
	}

	if buf := m.scanner.Axes().FromSelf(); buf != (axes.Buffer{}) {
		if !m.emit(AxesFrame(buf)) {
			return false
		}
	}
	return true
}

func (m *Mock) emit(f Frame) bool {
	select {
	case m.frames <- f:
	case <-m.ctx.Done():
		return false
	default:
		// Channel full, skip
	}
	return true
}
