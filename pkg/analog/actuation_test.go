package analog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transitions struct {
	down, up int
}

// drive feeds distances to a single key and counts the transitions.
func drive(t *testing.T, cfg KeyConfig, distances []uint8) (transitions, uint32) {
	t.Helper()

	var (
		key Key
		row uint32
		n   transitions
	)
	for _, d := range distances {
		before := row&1 != 0
		changed := Actuate(&cfg, &key, &row, 0, d, 200)
		after := row&1 != 0
		require.Equal(t, before != after, changed, "distance %d", d)
		if changed && after {
			n.down++
		}
		if changed && !after {
			n.up++
		}
	}
	return n, row
}

func TestActuate_Threshold(t *testing.T) {
	cfg := KeyConfig{Kind: Threshold, Actuation: 100}

	n, row := drive(t, cfg, []uint8{0, 50, 99, 100, 150, 100, 99, 0})
	assert.Equal(t, transitions{down: 1, up: 1}, n)
	assert.Zero(t, row)

	// Exactly at the threshold counts as pressed
	_, row = drive(t, cfg, []uint8{100})
	assert.Equal(t, uint32(1), row)
}

func TestActuate_ThresholdClampedToCeiling(t *testing.T) {
	var (
		cfg = KeyConfig{Kind: Threshold, Actuation: 250}
		key Key
		row uint32
	)
	assert.False(t, Actuate(&cfg, &key, &row, 3, 79, 80))
	assert.True(t, Actuate(&cfg, &key, &row, 3, 80, 80))
	assert.Equal(t, uint32(1<<3), row)
}

func TestActuate_Hysteresis(t *testing.T) {
	cfg := KeyConfig{Kind: Hysteresis, Actuation: 100, Release: 80}

	n, row := drive(t, cfg, []uint8{0, 100, 90, 81, 80, 95, 79, 99, 0})
	assert.Equal(t, transitions{down: 1, up: 1}, n)
	assert.Zero(t, row)
}

func TestActuate_RapidTrigger(t *testing.T) {
	cfg := KeyConfig{Kind: RapidTrigger, Actuation: 40, PressSensitivity: 10, ReleaseSensitivity: 10}

	// Rise past actuation, reverse by more than release sensitivity
	n, row := drive(t, cfg, []uint8{0, 20, 40, 80, 120, 150, 145, 139, 100, 60, 20, 0})
	assert.Equal(t, transitions{down: 1, up: 1}, n)
	assert.Zero(t, row)
}

func TestActuate_RapidTriggerRepress(t *testing.T) {
	cfg := KeyConfig{Kind: RapidTrigger, Actuation: 40, PressSensitivity: 10, ReleaseSensitivity: 10}

	// Release mid travel and press again without leaving the zone
	n, row := drive(t, cfg, []uint8{0, 100, 150, 140, 120, 125, 130, 131})
	assert.Equal(t, transitions{down: 2, up: 1}, n)
	assert.Equal(t, uint32(1), row)
}

func TestActuate_RapidTriggerLeavesZone(t *testing.T) {
	cfg := KeyConfig{Kind: RapidTrigger, Actuation: 40, PressSensitivity: 10, ReleaseSensitivity: 100}

	// Release sensitivity never reached; dropping below actuation releases
	n, row := drive(t, cfg, []uint8{0, 100, 60, 39})
	assert.Equal(t, transitions{down: 1, up: 1}, n)
	assert.Zero(t, row)
}

func TestActuate_ContinuousRapidTrigger(t *testing.T) {
	cfg := KeyConfig{Kind: ContinuousRapidTrigger, Actuation: 40, PressSensitivity: 10, ReleaseSensitivity: 10}

	// Below actuation but not fully up: still inside the zone
	n, _ := drive(t, cfg, []uint8{0, 60, 20, 31, 5, 0, 9})
	assert.Equal(t, transitions{down: 2, up: 2}, n)
}

func TestActuate_Disabled(t *testing.T) {
	cfg := KeyConfig{Kind: Disabled, Actuation: 10}

	n, row := drive(t, cfg, []uint8{0, 100, 200, 0})
	assert.Equal(t, transitions{}, n)
	assert.Zero(t, row)
}

func TestActuate_DKSNeverChanges(t *testing.T) {
	var (
		cfg = KeyConfig{Kind: DKS, Group: 1, Actuation: 10}
		key Key
		row uint32
	)
	assert.False(t, Actuate(&cfg, &key, &row, 2, 200, 200))
	assert.Zero(t, row)
	assert.Equal(t, uint8(200), key.Distance)
}

func TestActuate_ZeroDistanceNeverPresses(t *testing.T) {
	for k := Threshold; k <= DKS; k++ {
		var (
			cfg = KeyConfig{Kind: k}
			key Key
			row uint32
		)
		assert.False(t, Actuate(&cfg, &key, &row, 0, 0, 200), k.String())
		assert.Zero(t, row, k.String())
	}
}
