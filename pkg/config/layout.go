package config

import (
	"fmt"
	"time"

	"github.com/itohio/gohe/pkg/analog"
	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/calib"
	"github.com/itohio/gohe/pkg/matrix"
)

// Validate checks the configuration and the layout derived from it.
func (c *Config) Validate() error {
	b := &c.Board
	if len(b.Mask) != int(b.Rows) {
		return fmt.Errorf("%w: mask has %d rows, board has %d", ErrInvalid, len(b.Mask), b.Rows)
	}
	for r, m := range b.Mask {
		if len(m) > int(b.Cols) {
			return fmt.Errorf("%w: mask row %d is wider than %d columns", ErrInvalid, r, b.Cols)
		}
		for _, ch := range m {
			if ch != '0' && ch != '1' {
				return fmt.Errorf("%w: mask row %d: unexpected %q", ErrInvalid, r, ch)
			}
		}
	}

	def, err := c.keyConfig(c.Defaults, analog.DefaultKeyConfig(), b.Cols)
	if err != nil {
		return fmt.Errorf("%w: defaults: %v", ErrInvalid, err)
	}
	for _, k := range c.Keys {
		if k.Row >= b.Rows || k.Col >= b.Cols {
			return fmt.Errorf("%w: key (%d,%d) outside %dx%d matrix", ErrInvalid, k.Row, k.Col, b.Rows, b.Cols)
		}
		if _, err := c.keyConfig(k.KeyConfig, def, b.Cols); err != nil {
			return fmt.Errorf("%w: key (%d,%d): %v", ErrInvalid, k.Row, k.Col, err)
		}
	}

	for _, name := range c.Axes.Toggles {
		if _, ok := toggleNames[name]; !ok {
			return fmt.Errorf("%w: unknown axis toggle %q", ErrInvalid, name)
		}
	}
	for _, s := range c.Axes.Sources {
		if _, ok := toggleNames[s.Toggle]; !ok {
			return fmt.Errorf("%w: axis source %q: unknown toggle %q", ErrInvalid, s.Name, s.Toggle)
		}
		if _, ok := groupNames[s.Group]; !ok {
			return fmt.Errorf("%w: axis source %q: unknown group %q", ErrInvalid, s.Name, s.Group)
		}
		if len(s.Coords) == 0 || len(s.Coords) > axes.Channels {
			return fmt.Errorf("%w: axis source %q has %d coordinates", ErrInvalid, s.Name, len(s.Coords))
		}
	}

	if _, ok := restPolicies[c.Rest.Policy]; !ok {
		return fmt.Errorf("%w: unknown rest policy %q", ErrInvalid, c.Rest.Policy)
	}
	if c.Rest.Period < time.Millisecond {
		return fmt.Errorf("%w: rest period %v too short", ErrInvalid, c.Rest.Period)
	}

	layout := c.Layout()
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Layout converts the board section into a scanner layout. Call Validate
// first; unknown names are skipped here.
func (c *Config) Layout() matrix.Layout {
	b := &c.Board
	l := matrix.Layout{
		Rows:         b.Rows,
		Cols:         b.Cols,
		Split:        b.Split,
		Mask:         make([]matrix.Row, len(b.Mask)),
		DirectLeft:   direct(b.DirectLeft),
		DirectRight:  direct(b.DirectRight),
		MuxesPerADC:  b.MuxesPerADC,
		DKS:          b.DKS,
		Axes:         c.Axes.Enabled,
		Rest:         restPolicies[c.Rest.Policy],
		RestPeriod:   uint32(c.Rest.Period / time.Millisecond),
		StartupDelay: b.StartupDelay,
	}
	for r, m := range b.Mask {
		for i, ch := range m {
			if ch == '1' && i < matrix.MaxCols {
				l.Mask[r] |= 1 << i
			}
		}
	}

	for _, s := range c.Axes.Sources {
		toggle, ok := toggleNames[s.Toggle]
		if !ok {
			continue
		}
		group, ok := groupNames[s.Group]
		if !ok {
			continue
		}
		src := axes.Source{Name: s.Name, Toggle: toggle, Group: group}
		for i := range src.Coords {
			src.Coords[i] = axes.None
		}
		copy(src.Coords[:], s.Coords)
		l.Sources = append(l.Sources, src)
	}
	return l
}

// Toggles returns the axis toggle bits enabled at boot.
func (c *Config) Toggles() uint8 {
	var bits uint8
	for _, name := range c.Axes.Toggles {
		bits |= toggleNames[name]
	}
	return bits
}

func direct(d *DirectConfig) matrix.DirectRow {
	if d == nil {
		return matrix.DirectRow{Row: -1}
	}
	return matrix.DirectRow{Row: d.Row, Channels: d.Channels}
}

// keyConfig resolves k over base.
func (c *Config) keyConfig(k KeyConfig, base analog.KeyConfig, cols uint8) (analog.KeyConfig, error) {
	out := base
	if k.Mode != "" {
		kind, err := analog.ParseKind(k.Mode)
		if err != nil {
			return out, err
		}
		out.Kind = kind
		out.Group = k.Group
	}
	if out.Kind == analog.DKS && analog.DKSWidth*int(out.Group) >= int(cols) {
		return out, fmt.Errorf("DKS group %d has no columns in a %d column row", out.Group, cols)
	}
	if k.Actuation != 0 {
		out.Actuation = k.Actuation
	}
	if k.Release != 0 {
		out.Release = k.Release
	}
	if k.PressSensitivity != 0 {
		out.PressSensitivity = k.PressSensitivity
	}
	if k.ReleaseSensitivity != 0 {
		out.ReleaseSensitivity = k.ReleaseSensitivity
	}
	return out, nil
}

// KeyConfig returns the resolved configuration of a key.
func (c *Config) KeyConfig(row, col uint8) analog.KeyConfig {
	def, _ := c.keyConfig(c.Defaults, analog.DefaultKeyConfig(), c.Board.Cols)
	out := def
	for _, k := range c.Keys {
		if k.Row == row && k.Col == col {
			out, _ = c.keyConfig(k.KeyConfig, def, c.Board.Cols)
		}
	}
	return out
}

// Defaults implements matrix.Defaults from the defaults section.
type Defaults struct {
	cfg *Config
}

var _ matrix.Defaults = Defaults{}

// NewDefaults creates scanner defaults from the configuration.
func NewDefaults(c *Config) Defaults {
	return Defaults{cfg: c}
}

// Parameters returns the calibration section.
func (d Defaults) Parameters() calib.Parameters {
	return d.cfg.Calibration
}

// KeyConfig returns the defaults section for every key.
func (d Defaults) KeyConfig(row, col uint8) analog.KeyConfig {
	out, _ := d.cfg.keyConfig(d.cfg.Defaults, analog.DefaultKeyConfig(), d.cfg.Board.Cols)
	return out
}

// Key returns the built-in rest value; the first recapture replaces it.
func (d Defaults) Key(row, col uint8) analog.Key {
	return analog.Key{Rest: matrix.DefaultRest}
}

// Apply implements matrix.Settings: it applies per-key overrides and the
// boot axis toggles.
func (c *Config) Apply(s *matrix.Scanner) error {
	for _, k := range c.Keys {
		s.SetKeyConfig(k.Row, k.Col, c.KeyConfig(k.Row, k.Col))
	}
	s.Axes().SetToggles(c.Toggles())
	return nil
}
