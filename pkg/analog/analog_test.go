package analog

import (
	"testing"

	"github.com/itohio/gohe/pkg/calib"
	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		raw  uint16
		want uint16
	}{
		{name: "zero", raw: 0, want: RawMidpoint},
		{name: "midpoint", raw: RawMidpoint, want: 0},
		{name: "midpoint+1", raw: RawMidpoint + 1, want: 0},
		{name: "above midpoint", raw: RawMidpoint + 301, want: 300},
		{name: "below midpoint", raw: RawMidpoint - 300, want: 300},
		{name: "max", raw: RawMax, want: RawMidpoint},
		{name: "out of range", raw: 9000, want: RawMidpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.raw))
		})
	}
}

func TestFold_Range(t *testing.T) {
	for raw := 0; raw <= RawMax; raw++ {
		v := Fold(uint16(raw))
		if v > RawMidpoint {
			t.Fatalf("Fold(%d) = %d, want <= %d", raw, v, RawMidpoint)
		}
	}
}

func TestScale(t *testing.T) {
	var mult [calib.MultiplierSize]uint16
	for i := range mult {
		mult[i] = 1023
	}

	tests := []struct {
		name      string
		corrected uint16
		rest      uint16
		want      uint16
	}{
		{name: "at rest", corrected: 300, rest: 300, want: 0},
		{name: "below rest", corrected: 200, rest: 300, want: 0},
		{name: "half", corrected: 300 + 511, rest: 300, want: 511},
		{name: "full", corrected: 300 + 1023, rest: 300, want: calib.Max},
		{name: "beyond full", corrected: 2047, rest: 100, want: calib.Max},
		{name: "rest clamped", corrected: 2047, rest: 5000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scale(tt.corrected, tt.rest, &mult))
		})
	}
}

func TestNormalize(t *testing.T) {
	p := calib.Default()
	tbl := calib.NewTables(&p)

	s := Normalize(RawMidpoint+1, 0, tbl)
	assert.Equal(t, Sample{}, s)

	s = Normalize(RawMax, 0, tbl)
	assert.Equal(t, uint16(RawMidpoint), s.Corrected)
	assert.Equal(t, uint16(calib.Max), s.Calibrated)
	assert.Equal(t, p.Displacement.MaxOutput, s.Distance)

	// Polarity does not matter
	a := Normalize(RawMidpoint+1+800, 200, tbl)
	b := Normalize(RawMidpoint-800, 200, tbl)
	assert.Equal(t, a, b)
}

func TestRestValue(t *testing.T) {
	assert.Equal(t, uint16(100), RestValue(100))
	assert.Equal(t, uint16(calib.MultiplierSize-1), RestValue(RawMidpoint))
	assert.Equal(t, uint16(calib.MultiplierSize-1), RestValue(60000))
}

func TestModeFromCode(t *testing.T) {
	tests := []struct {
		code  uint8
		kind  Kind
		group uint8
	}{
		{0, Threshold, 0},
		{1, Hysteresis, 0},
		{2, RapidTrigger, 0},
		{3, ContinuousRapidTrigger, 0},
		{4, Disabled, 0},
		{5, DKS, 0},
		{7, DKS, 2},
	}

	for _, tt := range tests {
		kind, group := ModeFromCode(tt.code)
		assert.Equal(t, tt.kind, kind, "code %d", tt.code)
		assert.Equal(t, tt.group, group, "code %d", tt.code)
		assert.Equal(t, tt.code, KeyConfig{Kind: kind, Group: group}.Code())
	}
}

func TestParseKind(t *testing.T) {
	for k := Threshold; k <= DKS; k++ {
		got, err := ParseKind(k.String())
		assert.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("bogus")
	assert.Error(t, err)
	assert.Equal(t, "kind(9)", Kind(9).String())
}
