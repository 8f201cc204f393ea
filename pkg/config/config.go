package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/itohio/gohe/pkg/analog"
	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/calib"
	"github.com/itohio/gohe/pkg/matrix"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the board and application configuration.
type Config struct {
	Board       BoardConfig      `yaml:"board"`
	Calibration calib.Parameters `yaml:"calibration"`
	Defaults    KeyConfig        `yaml:"defaults"`
	Keys        []KeyOverride    `yaml:"keys"`
	Axes        AxesConfig       `yaml:"axes"`
	Rest        RestConfig       `yaml:"rest"`
	Serial      SerialConfig     `yaml:"serial"`
	Mock        MockConfig       `yaml:"mock"`
}

// BoardConfig describes the matrix wiring.
type BoardConfig struct {
	Rows  uint8 `yaml:"rows"`
	Cols  uint8 `yaml:"cols"`
	Split bool  `yaml:"split"`
	// Mask has one string per row; character i is '1' when column i is
	// analog-sensed.
	Mask         []string      `yaml:"mask"`
	DirectLeft   *DirectConfig `yaml:"direct_left"`
	DirectRight  *DirectConfig `yaml:"direct_right"`
	MuxesPerADC  uint8         `yaml:"muxes_per_adc"`
	DKS          bool          `yaml:"dks"`
	StartupDelay time.Duration `yaml:"startup_delay"`
}

// DirectConfig describes a directly wired row.
type DirectConfig struct {
	Row      int   `yaml:"row"`
	Channels uint8 `yaml:"channels"`
}

// KeyConfig is the YAML form of analog.KeyConfig. Zero values inherit the
// defaults section.
type KeyConfig struct {
	Mode               string `yaml:"mode,omitempty"`
	Group              uint8  `yaml:"group,omitempty"`
	Actuation          uint8  `yaml:"actuation,omitempty"`
	Release            uint8  `yaml:"release,omitempty"`
	PressSensitivity   uint8  `yaml:"press_sensitivity,omitempty"`
	ReleaseSensitivity uint8  `yaml:"release_sensitivity,omitempty"`
}

// KeyOverride configures a single key.
type KeyOverride struct {
	Row       uint8 `yaml:"row"`
	Col       uint8 `yaml:"col"`
	KeyConfig `yaml:",inline"`
}

// AxesConfig configures the virtual axes.
type AxesConfig struct {
	Enabled bool           `yaml:"enabled"`
	Toggles []string       `yaml:"toggles"` // enabled at boot
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig maps four keys onto an axis group.
type SourceConfig struct {
	Name   string          `yaml:"name"`
	Toggle string          `yaml:"toggle"`
	Group  string          `yaml:"group"`
	Coords []axes.Position `yaml:"coords"`
}

// RestConfig configures rest recapture.
type RestConfig struct {
	Policy string        `yaml:"policy"`
	Period time.Duration `yaml:"period"`
}

// SerialConfig contains the link serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// MockConfig shapes the simulated board.
type MockConfig struct {
	Rest         uint16        `yaml:"rest"`
	Swing        uint16        `yaml:"swing"`
	North        bool          `yaml:"north"`
	ScanInterval time.Duration `yaml:"scan_interval"`
}

var toggleNames = map[string]uint8{
	"joystick":    axes.ToggleJoystick,
	"mouse":       axes.ToggleMouse,
	"mouse-left":  axes.ToggleMouseLeft,
	"mouse-right": axes.ToggleMouseRight,
	"scroll":      axes.ToggleScroll,
}

var groupNames = map[string]int{
	"joystick-left":  axes.JoystickLeft,
	"joystick-right": axes.JoystickRight,
	"mouse":          axes.Mouse,
	"scroll":         axes.Scroll,
}

var restPolicies = map[string]matrix.RestPolicy{
	"window": matrix.RestWindow,
	"idle":   matrix.RestIdle,
}

// Default returns the configuration of a 75% split board: six rows per half,
// eight columns, a directly wired bottom row and WASD/arrow virtual axes.
// The last row of each half senses columns 0-3 only; columns 4-7 are the
// logical keys of DKS group 1.
func Default() *Config {
	half := []string{
		"11111111",
		"11111111",
		"11111111",
		"11111111",
		"11111111",
		"11110000",
	}
	mask := append(append([]string{}, half...), half...)

	return &Config{
		Board: BoardConfig{
			Rows:         12,
			Cols:         8,
			Split:        true,
			Mask:         mask,
			DirectLeft:   &DirectConfig{Row: 4, Channels: 8},
			DirectRight:  &DirectConfig{Row: 10, Channels: 8},
			MuxesPerADC:  1,
			DKS:          true,
			StartupDelay: 100 * time.Millisecond,
		},
		Calibration: calib.Default(),
		Defaults: KeyConfig{
			Mode:               analog.Threshold.String(),
			Actuation:          100,
			Release:            90,
			PressSensitivity:   15,
			ReleaseSensitivity: 15,
		},
		Axes: AxesConfig{
			Enabled: true,
			Sources: []SourceConfig{
				{Name: "joystick-left", Toggle: "joystick", Group: "joystick-left", Coords: []axes.Position{{Row: 1, Col: 2}, {Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 3}}},
				{Name: "joystick-right", Toggle: "joystick", Group: "joystick-right", Coords: []axes.Position{{Row: 7, Col: 5}, {Row: 8, Col: 4}, {Row: 8, Col: 5}, {Row: 8, Col: 6}}},
				{Name: "mouse-left", Toggle: "mouse", Group: "mouse", Coords: []axes.Position{{Row: 1, Col: 2}, {Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 3}}},
				{Name: "mouse-right", Toggle: "mouse", Group: "mouse", Coords: []axes.Position{{Row: 10, Col: 6}, {Row: 11, Col: 1}, {Row: 11, Col: 2}, {Row: 11, Col: 3}}},
				{Name: "scroll-left", Toggle: "scroll", Group: "scroll", Coords: []axes.Position{{Row: 0, Col: 2}, {Row: 0, Col: 1}, {Row: 0, Col: 3}, {Row: 0, Col: 4}}},
				{Name: "scroll-right", Toggle: "scroll", Group: "scroll", Coords: []axes.Position{{Row: 6, Col: 5}, {Row: 6, Col: 4}, {Row: 6, Col: 6}, {Row: 6, Col: 7}}},
			},
		},
		Rest: RestConfig{
			Policy: matrix.RestIdle.String(),
			Period: time.Duration(matrix.RestPeriod) * time.Millisecond,
		},
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Mock: MockConfig{
			Rest:         300,
			Swing:        1350,
			ScanInterval: time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills fields a partial file left empty.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Board.Rows == 0 {
		c.Board.Rows = def.Board.Rows
	}
	if c.Board.Cols == 0 {
		c.Board.Cols = def.Board.Cols
	}
	if len(c.Board.Mask) == 0 {
		c.Board.Mask = make([]string, c.Board.Rows)
		for i := range c.Board.Mask {
			c.Board.Mask[i] = strings.Repeat("1", int(c.Board.Cols))
		}
	}
	if c.Board.MuxesPerADC == 0 {
		c.Board.MuxesPerADC = def.Board.MuxesPerADC
	}

	if c.Calibration.Displacement.MaxOutput == 0 {
		c.Calibration.Displacement = def.Calibration.Displacement
	}
	if c.Calibration.Joystick.MaxOutput == 0 {
		c.Calibration.Joystick = def.Calibration.Joystick
	}
	if c.Calibration.Multiplier == (calib.Multiplier{}) {
		c.Calibration.Multiplier = def.Calibration.Multiplier
	}

	if c.Defaults.Mode == "" {
		c.Defaults.Mode = def.Defaults.Mode
	}
	if c.Defaults.Actuation == 0 {
		c.Defaults.Actuation = def.Defaults.Actuation
	}
	if c.Defaults.PressSensitivity == 0 {
		c.Defaults.PressSensitivity = def.Defaults.PressSensitivity
	}
	if c.Defaults.ReleaseSensitivity == 0 {
		c.Defaults.ReleaseSensitivity = def.Defaults.ReleaseSensitivity
	}

	if c.Rest.Policy == "" {
		c.Rest.Policy = def.Rest.Policy
	}
	if c.Rest.Period == 0 {
		c.Rest.Period = def.Rest.Period
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Mock.Swing == 0 {
		c.Mock.Swing = def.Mock.Swing
	}
	if c.Mock.ScanInterval == 0 {
		c.Mock.ScanInterval = def.Mock.ScanInterval
	}
}
