package analog

import (
	"github.com/itohio/gohe/pkg/calib"
)

const (
	// RawMidpoint is the zero-field reading of a 12-bit bipolar sensor.
	RawMidpoint = 2047
	// RawMax is the largest raw reading.
	RawMax = 4095
)

// Key is the per-key analog state. Rest is the folded raw reading captured
// while the key is at rest. The remaining fields belong to Actuate.
type Key struct {
	Rest     uint16
	Distance uint8 // last displacement seen by Actuate
	Extreme  uint8 // peak while pressed, trough while released (rapid trigger)
	Armed    bool  // inside the rapid trigger zone
}

// Sample is a normalized sensor reading.
type Sample struct {
	Corrected  uint16 // folded raw reading, 0..RawMidpoint
	Calibrated uint16 // rest-relative reading, 0..calib.Max
	Distance   uint8  // displacement, 0..Curve.MaxOutput
}

// Fold corrects magnet polarity. A bipolar reading around the midpoint is
// folded into a unipolar magnitude in [0, RawMidpoint].
func Fold(raw uint16) uint16 {
	if raw > RawMax {
		raw = RawMax
	}
	if raw < RawMidpoint+1 {
		return RawMidpoint - raw
	}
	return raw - RawMidpoint - 1
}

// Scale converts a folded reading into the calibrated range using the rest
// baseline and the predicted full-travel change for that baseline.
func Scale(corrected, rest uint16, mult *[calib.MultiplierSize]uint16) uint16 {
	if rest >= calib.MultiplierSize {
		rest = calib.MultiplierSize - 1
	}
	if corrected <= rest {
		return 0
	}
	v := uint32(corrected-rest) * calib.Max / uint32(mult[rest])
	if v > calib.Max {
		return calib.Max
	}
	return uint16(v)
}

// Normalize runs polarity correction, rest scaling and displacement lookup.
func Normalize(raw, rest uint16, t *calib.Tables) Sample {
	corrected := Fold(raw)
	calibrated := Scale(corrected, rest, &t.Multiplier)
	return Sample{
		Corrected:  corrected,
		Calibrated: calibrated,
		Distance:   t.Displacement[calibrated],
	}
}

// RestValue clamps a folded reading to the multiplier table domain.
func RestValue(corrected uint16) uint16 {
	return min(corrected, calib.MultiplierSize-1)
}
