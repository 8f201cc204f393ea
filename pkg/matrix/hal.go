package matrix

import (
	"github.com/itohio/gohe/pkg/analog"
	"github.com/itohio/gohe/pkg/calib"
)

// HAL is the hardware the scanner drives. All calls are synchronous;
// SelectChannel completes before StartConversions, which completes before
// any Sample of that batch.
type HAL interface {
	// Hand reports which half this controller is and whether it is the
	// host-connected one.
	Hand() (left, master bool)
	// Start configures multiplexer and converter pins.
	Start() error
	// SelectChannel switches the multiplexers to column col.
	SelectChannel(col uint8)
	// StartConversions converts every row, with direct rows sampling
	// channels direct..direct+MuxesPerADC-1.
	StartConversions(direct uint8)
	// Sample returns the raw reading of row from the last batch.
	Sample(row, direct uint8) uint16
	// Millis is a monotonic millisecond clock.
	Millis() uint32
}

// Defaults provides the values loaded before any persisted settings.
type Defaults interface {
	Parameters() calib.Parameters
	KeyConfig(row, col uint8) analog.KeyConfig
	Key(row, col uint8) analog.Key
}

// Settings applies persisted values over the defaults.
type Settings interface {
	Apply(s *Scanner) error
}

// DefaultRest is the folded rest reading assumed until the first recapture.
const DefaultRest = 300

type builtinDefaults struct{}

func (builtinDefaults) Parameters() calib.Parameters {
	return calib.Default()
}

func (builtinDefaults) KeyConfig(row, col uint8) analog.KeyConfig {
	return analog.DefaultKeyConfig()
}

func (builtinDefaults) Key(row, col uint8) analog.Key {
	return analog.Key{Rest: DefaultRest}
}

// BuiltinDefaults returns the compiled-in defaults.
func BuiltinDefaults() Defaults {
	return builtinDefaults{}
}

// SettingsFunc adapts a function to Settings.
type SettingsFunc func(s *Scanner) error

// Apply calls f(s).
func (f SettingsFunc) Apply(s *Scanner) error {
	return f(s)
}
