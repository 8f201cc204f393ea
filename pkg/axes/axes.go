package axes

import (
	"sync"
)

const (
	// Groups is the number of logical axis groups.
	Groups = 4
	// Channels is the number of channels in a group.
	Channels = 4
)

// Logical axis groups.
const (
	JoystickLeft = iota
	JoystickRight
	Mouse
	Scroll
)

// Toggle bits of the enable bitfield.
const (
	ToggleJoystick uint8 = 1 << iota
	ToggleMouse
	ToggleScroll
	ToggleMouseLeft
	ToggleMouseRight
)

// Buffer accumulates joystick-curve magnitudes, one row per axis group.
type Buffer [Groups][Channels]uint16

// Position is a matrix coordinate.
type Position struct {
	Row uint8 `yaml:"row"`
	Col uint8 `yaml:"col"`
}

// None marks an unused channel of a Source.
var None = Position{Row: 0xff, Col: 0xff}

// Source maps up to Channels matrix positions onto the channels of one axis
// group. It contributes only while its toggle bit is enabled.
type Source struct {
	Name   string
	Toggle uint8
	Group  int
	Coords [Channels]Position
}

// Aggregator sums key magnitudes into virtual axis groups. Add and Publish
// are called from the scanning context only; FromSlave may be written from
// another goroutine.
type Aggregator struct {
	sources []Source
	toggles uint8

	temp     Buffer
	fromSelf Buffer

	mu        sync.RWMutex
	fromSlave Buffer
}

// New creates an aggregator for the given sources.
func New(sources []Source) *Aggregator {
	s := make([]Source, len(sources))
	copy(s, sources)
	return &Aggregator{sources: s}
}

// Sources returns the configured sources.
func (a *Aggregator) Sources() []Source {
	return a.sources
}

// Toggles returns the enable bitfield.
func (a *Aggregator) Toggles() uint8 {
	return a.toggles
}

// SetToggles replaces the enable bitfield.
func (a *Aggregator) SetToggles(bits uint8) {
	a.toggles = bits
}

// Toggle flips the given bits.
func (a *Aggregator) Toggle(bits uint8) {
	a.toggles ^= bits
}

// Enable sets the given bits.
func (a *Aggregator) Enable(bits uint8) {
	a.toggles |= bits
}

// Disable clears the given bits.
func (a *Aggregator) Disable(bits uint8) {
	a.toggles &^= bits
}

// Active reports whether any source can contribute.
func (a *Aggregator) Active() bool {
	for i := range a.sources {
		if a.toggles&a.sources[i].Toggle != 0 {
			return true
		}
	}
	return false
}

// Add accumulates magnitude v of the key at (row, col) into every enabled
// source that lists the position. Only the first matching channel of a
// source is used.
func (a *Aggregator) Add(row, col uint8, v uint8) {
	for i := range a.sources {
		s := &a.sources[i]
		if a.toggles&s.Toggle == 0 {
			continue
		}
		for k, p := range s.Coords {
			if p.Row == row && p.Col == col {
				a.temp[s.Group][k] += uint16(v)
				break
			}
		}
	}
}

// Publish exposes the accumulated buffer as FromSelf and starts a new
// accumulation.
func (a *Aggregator) Publish() {
	a.fromSelf = a.temp
	a.temp = Buffer{}
}

// Pending returns the buffer accumulated since the last Publish.
func (a *Aggregator) Pending() Buffer {
	return a.temp
}

// FromSelf returns the last published buffer of this half.
func (a *Aggregator) FromSelf() Buffer {
	return a.fromSelf
}

// SetFromSlave stores the buffer received from the other half.
func (a *Aggregator) SetFromSlave(b Buffer) {
	a.mu.Lock()
	a.fromSlave = b
	a.mu.Unlock()
}

// FromSlave returns the last buffer received from the other half.
func (a *Aggregator) FromSlave() Buffer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fromSlave
}

// Combined sums both halves, saturating every channel.
func (a *Aggregator) Combined() Buffer {
	self, slave := a.FromSelf(), a.FromSlave()
	var out Buffer
	for g := range out {
		for c := range out[g] {
			v := uint32(self[g][c]) + uint32(slave[g][c])
			out[g][c] = uint16(min(v, 0xffff))
		}
	}
	return out
}
