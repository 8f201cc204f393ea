package calib

import (
	"github.com/chewxy/math32"
)

const (
	// Max is the largest calibrated value. Displacement and joystick tables
	// are indexed 0..Max inclusive.
	Max = 1023
	// MultiplierSize is the number of entries in the multiplier table. It
	// equals the folded raw domain (0..2047) of a 12-bit bipolar converter.
	MultiplierSize = 2048
	// DefaultTravel is the default displacement ceiling (200 = 4.0mm).
	DefaultTravel = 200
)

// Curve describes a normalized cubic y = A*x^3 + B*x^2 + C*x + D over
// x = i/Max. The result is clamped to [0, 1] and scaled to MaxOutput.
type Curve struct {
	A         float32 `yaml:"a"`
	B         float32 `yaml:"b"`
	C         float32 `yaml:"c"`
	D         float32 `yaml:"d"`
	MaxOutput uint8   `yaml:"max_output"`
}

// Multiplier predicts the absolute change between the rest reading and the
// fully pressed reading for a given rest value r: A*r^2 + B*r + C.
type Multiplier struct {
	A float32 `yaml:"a"`
	B float32 `yaml:"b"`
	C float32 `yaml:"c"`
}

// Parameters holds the three curve specifications.
type Parameters struct {
	Displacement Curve      `yaml:"displacement"`
	Joystick     Curve      `yaml:"joystick"`
	Multiplier   Multiplier `yaml:"multiplier"`
}

// Tables are the lookup tables derived from Parameters.
type Tables struct {
	Displacement [Max + 1]uint8
	Joystick     [Max + 1]uint8
	Multiplier   [MultiplierSize]uint16
}

// Default returns parameters matching a typical 4mm hall-effect switch with
// a 12-bit sensor: a field that grows faster than linearly with travel and a
// full-travel swing that shrinks as the resting magnet sits further away.
func Default() Parameters {
	return Parameters{
		Displacement: Curve{A: 0.35, B: -1.05, C: 1.7, D: 0, MaxOutput: DefaultTravel},
		Joystick:     Curve{A: 0, B: 0, C: 1, D: 0, MaxOutput: 127},
		Multiplier:   Multiplier{A: 0, B: -0.5, C: 1500},
	}
}

// NewTables allocates and builds tables for p.
func NewTables(p *Parameters) *Tables {
	t := &Tables{}
	Build(p, t)
	return t
}

// Build fills every entry of t from p. It does not allocate and is safe to
// call again whenever the parameters change.
func Build(p *Parameters, t *Tables) {
	for i := range t.Displacement {
		t.Displacement[i] = p.Displacement.Value(i)
		t.Joystick[i] = p.Joystick.Value(i)
	}
	for i := range t.Multiplier {
		t.Multiplier[i] = p.Multiplier.Value(i)
	}
}

// Value evaluates the curve at calibrated index i.
func (c Curve) Value(i int) uint8 {
	x := float32(i) / Max
	y := ((c.A*x+c.B)*x+c.C)*x + c.D
	y = math32.Max(0, math32.Min(1, y))
	return uint8(math32.Floor(y*float32(c.MaxOutput) + 0.5))
}

// Value evaluates the predicted full-travel change for rest value r. The
// result is never zero.
func (m Multiplier) Value(r int) uint16 {
	x := float32(r)
	y := (m.A*x+m.B)*x + m.C
	y = math32.Max(1, math32.Min(0xffff, y))
	return uint16(math32.Floor(y + 0.5))
}
