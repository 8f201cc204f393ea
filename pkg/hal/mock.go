package hal

import (
	"fmt"
	"sync"
	"time"
)

// Mid is the zero-field reading of the simulated 12-bit sensors.
const Mid = 2047

// Call is one recorded HAL call.
type Call struct {
	Op  string // "select", "convert" or "sample"
	Row uint8
	Arg uint8 // column for select, direct channel otherwise
}

// Mock simulates hall-effect sensors behind multiplexers and a clock.
// Readings are set per cell; a cell that was never set reads Mid+1, which
// folds to zero field.
type Mock struct {
	mu sync.Mutex

	rows, cols uint8
	left       bool
	master     bool
	direct     map[uint8]bool

	raw      [][]uint16
	selected uint8
	started  bool

	realtime bool
	start    time.Time
	now      uint32

	record bool
	calls  []Call

	// Rest and Swing shape SetTravel: a key at rest reads Rest above the
	// midpoint and a fully pressed key Rest+Swing.
	Rest  uint16
	Swing uint16
	// North flips the simulated magnet so readings fall below the midpoint.
	North bool
}

// NewMock creates a simulated board of rows x cols sensors.
func NewMock(rows, cols uint8, left, master bool) *Mock {
	m := &Mock{
		rows:   rows,
		cols:   cols,
		left:   left,
		master: master,
		direct: make(map[uint8]bool),
		raw:    make([][]uint16, rows),
		Rest:   300,
		Swing:  1350,
	}
	for r := range m.raw {
		m.raw[r] = make([]uint16, cols)
		for c := range m.raw[r] {
			m.raw[r][c] = Mid + 1
		}
	}
	return m
}

// SetDirect marks row as wired directly; its Sample channel is the column.
func (m *Mock) SetDirect(row uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direct[row] = true
}

// Realtime switches the clock to wall time since the call.
func (m *Mock) Realtime() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.realtime = true
	m.start = time.Now()
}

// Advance moves the manual clock forward.
func (m *Mock) Advance(ms uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += ms
}

// SetTime sets the manual clock.
func (m *Mock) SetTime(ms uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = ms
}

// Set stores the raw reading of a cell.
func (m *Mock) Set(row, col uint8, raw uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw[row][col] = raw
}

// SetAll stores the same raw reading in every cell.
func (m *Mock) SetAll(raw uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for r := range m.raw {
		for c := range m.raw[r] {
			m.raw[r][c] = raw
		}
	}
}

// Reading returns the raw reading of a cell.
func (m *Mock) Reading(row, col uint8) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw[row][col]
}

// SetTravel simulates a key pressed to the given fraction (0..1) of travel.
func (m *Mock) SetTravel(row, col uint8, fraction float64) {
	fraction = max(0, min(1, fraction))
	delta := uint16(float64(m.Rest) + fraction*float64(m.Swing))
	raw := uint16(Mid + 1 + delta)
	if m.North {
		raw = Mid - delta
	}
	m.Set(row, col, raw)
}

// Record enables or disables call recording.
func (m *Mock) Record(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = on
	m.calls = nil
}

// Calls returns and clears the recorded calls.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.calls
	m.calls = nil
	return calls
}

// Hand reports the simulated hand.
func (m *Mock) Hand() (left, master bool) {
	return m.left, m.master
}

// Start simulates pin setup.
func (m *Mock) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("already started")
	}
	m.started = true
	return nil
}

// SelectChannel switches the simulated multiplexers.
func (m *Mock) SelectChannel(col uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = col
	if m.record {
		m.calls = append(m.calls, Call{Op: "select", Arg: col})
	}
}

// StartConversions simulates a batch conversion.
func (m *Mock) StartConversions(direct uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record {
		m.calls = append(m.calls, Call{Op: "convert", Arg: direct})
	}
}

// Sample returns the reading of row at the selected column, or at column
// direct for direct rows.
func (m *Mock) Sample(row, direct uint8) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record {
		m.calls = append(m.calls, Call{Op: "sample", Row: row, Arg: direct})
	}
	col := m.selected
	if m.direct[row] {
		col = direct
	}
	if row >= m.rows || col >= m.cols {
		return Mid + 1
	}
	return m.raw[row][col]
}

// Millis returns the simulated clock.
func (m *Mock) Millis() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.realtime {
		return uint32(time.Since(m.start).Milliseconds())
	}
	return m.now
}
