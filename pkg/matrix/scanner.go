package matrix

import (
	"fmt"
	"log"
	"time"

	"github.com/itohio/gohe/pkg/analog"
	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/calib"
)

// Scanner is the sensing context. It owns the lookup tables, per-key state
// and configuration, and the cursors that persist between scans. Scan must be
// called from a single goroutine.
type Scanner struct {
	layout Layout
	hal    HAL

	left   bool
	master bool

	params calib.Parameters
	tables calib.Tables

	keys [][]analog.Key
	cfgs [][]analog.KeyConfig

	axes *axes.Aggregator
	rest *RestController

	rowOffset uint8
	perHand   uint8
	direct    DirectRow
	loops     uint8

	col      uint8
	directCh uint8
	previous []Row
}

// Option customizes scanner construction.
type Option func(*options)

type options struct {
	defaults Defaults
	settings Settings
}

// WithDefaults replaces the compiled-in defaults.
func WithDefaults(d Defaults) Option {
	return func(o *options) { o.defaults = d }
}

// WithSettings applies persisted settings after the defaults.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = s }
}

// New validates the layout, resolves the hand, loads defaults and settings,
// builds the lookup tables and starts the hardware.
func New(layout Layout, hal HAL, opts ...Option) (*Scanner, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	o := options{defaults: BuiltinDefaults()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Scanner{
		layout:   layout,
		hal:      hal,
		axes:     axes.New(layout.Sources),
		rest:     NewRestController(layout.Rest, layout.RestPeriod),
		perHand:  layout.RowsPerHand(),
		previous: make([]Row, layout.Rows),
	}
	s.left, s.master = hal.Hand()
	if !s.left && layout.Split {
		s.rowOffset = s.perHand
	}
	s.direct = layout.Direct(s.left)
	s.loops = s.defaultLoops()

	s.keys = make([][]analog.Key, layout.Rows)
	s.cfgs = make([][]analog.KeyConfig, layout.Rows)
	for r := range s.keys {
		s.keys[r] = make([]analog.Key, layout.Cols)
		s.cfgs[r] = make([]analog.KeyConfig, layout.Cols)
	}

	s.params = o.defaults.Parameters()
	for r := range s.keys {
		for c := range s.keys[r] {
			s.keys[r][c] = o.defaults.Key(uint8(r), uint8(c))
			s.cfgs[r][c] = o.defaults.KeyConfig(uint8(r), uint8(c))
		}
	}
	if o.settings != nil {
		if err := o.settings.Apply(s); err != nil {
			return nil, fmt.Errorf("failed to apply settings: %w", err)
		}
	}
	calib.Build(&s.params, &s.tables)

	if err := hal.Start(); err != nil {
		return nil, fmt.Errorf("failed to start hardware: %w", err)
	}
	if layout.StartupDelay > 0 {
		time.Sleep(layout.StartupDelay)
	}

	log.Printf("matrix: left=%v master=%v rows %d..%d loops=%d", s.left, s.master, s.rowOffset, s.rowOffset+s.perHand-1, s.loops)
	return s, nil
}

func (s *Scanner) defaultLoops() uint8 {
	if s.direct.Row < 0 {
		return s.layout.Cols
	}
	n := (s.direct.Channels + s.layout.MuxesPerADC - 1) / s.layout.MuxesPerADC
	return max(1, min(n, s.layout.Cols))
}

// Scan runs one pass over this half and updates current in place. It
// reports whether the matrix differs from the one passed in.
func (s *Scanner) Scan(current []Row) bool {
	copy(s.previous, current)

	now := s.hal.Millis()
	loops := s.loops
	if s.rest.Begin(now) {
		loops = s.layout.Cols
	}
	latch := s.rest.Latching()
	aggregate := s.layout.Axes && s.axes.Active()
	maxOut := s.params.Displacement.MaxOutput
	changed := false

	for i := uint8(0); i < loops; i++ {
		s.hal.SelectChannel(s.col)
		base := s.directCh
		s.hal.StartConversions(base)

		for row := s.rowOffset; row < s.rowOffset+s.perHand; row++ {
			if int(row) != s.direct.Row {
				if s.layout.Active(row, s.col) {
					changed = s.sense(current, row, s.col, base, maxOut, latch, aggregate) || changed
				}
				continue
			}
			for i := uint8(0); i < s.layout.MuxesPerADC; i++ {
				ch := s.directCh
				s.directCh = (s.directCh + 1) % s.direct.Channels
				if s.layout.Active(row, ch) {
					changed = s.sense(current, row, ch, ch, maxOut, latch, aggregate) || changed
				}
			}
		}
		s.col = (s.col + 1) % s.layout.Cols
	}

	s.rest.End(now, changed)

	if s.layout.Axes {
		s.axes.Publish()
	}

	for r := range s.previous {
		if s.previous[r] != current[r] {
			return true
		}
	}
	return false
}

// sense processes one analog cell and reports an actuation change.
func (s *Scanner) sense(current []Row, row, col, ch uint8, maxOut uint8, latch, aggregate bool) bool {
	key := &s.keys[row][col]
	cfg := &s.cfgs[row][col]

	smp := analog.Normalize(s.hal.Sample(row, ch), key.Rest, &s.tables)
	changed := analog.Actuate(cfg, key, &current[row], col, smp.Distance, maxOut)

	pressed := current[row]&(1<<col) != 0
	if s.layout.DKS && cfg.FanOut() {
		last := s.rowOffset + s.perHand - 1
		for k := 0; k < analog.DKSWidth; k++ {
			c := analog.DKSWidth*int(cfg.Group) + k
			if c >= int(s.layout.Cols) {
				break
			}
			if analog.Actuate(&s.cfgs[last][c], &s.keys[last][c], &current[last], uint8(c), smp.Distance, maxOut) {
				changed = true
			}
			pressed = pressed || current[last]&(1<<c) != 0
		}
	}

	if aggregate {
		s.axes.Add(row, col, s.tables.Joystick[smp.Calibrated])
	}

	// Between deadlines a baseline only moves down.
	if latch && !pressed && (s.rest.Expired() || smp.Corrected <= key.Rest) {
		key.Rest = analog.RestValue(smp.Corrected)
	}
	return changed
}

// Rebuild replaces the calibration parameters and regenerates the tables.
func (s *Scanner) Rebuild(p calib.Parameters) {
	s.params = p
	calib.Build(&s.params, &s.tables)
}

// Parameters returns the active calibration parameters.
func (s *Scanner) Parameters() calib.Parameters {
	return s.params
}

// SetParameters replaces the calibration parameters without rebuilding.
// Used by Settings before the tables are first built.
func (s *Scanner) SetParameters(p calib.Parameters) {
	s.params = p
}

// Tables returns the lookup tables.
func (s *Scanner) Tables() *calib.Tables {
	return &s.tables
}

// Key returns the analog state of a cell.
func (s *Scanner) Key(row, col uint8) *analog.Key {
	return &s.keys[row][col]
}

// KeyConfig returns the actuation configuration of a cell.
func (s *Scanner) KeyConfig(row, col uint8) *analog.KeyConfig {
	return &s.cfgs[row][col]
}

// SetKeyConfig replaces the actuation configuration of a cell.
func (s *Scanner) SetKeyConfig(row, col uint8, cfg analog.KeyConfig) {
	s.cfgs[row][col] = cfg
}

// Axes returns the virtual axis aggregator.
func (s *Scanner) Axes() *axes.Aggregator {
	return s.axes
}

// Rest returns the rest recapture controller.
func (s *Scanner) Rest() *RestController {
	return s.rest
}

// Layout returns the board layout.
func (s *Scanner) Layout() *Layout {
	return &s.layout
}

// Hand reports the hand resolved at construction.
func (s *Scanner) Hand() (left, master bool) {
	return s.left, s.master
}

// RowOffset returns the first row scanned by this half.
func (s *Scanner) RowOffset() uint8 {
	return s.rowOffset
}

// RowsPerHand returns the number of rows scanned by this half.
func (s *Scanner) RowsPerHand() uint8 {
	return s.perHand
}

// Loops returns the default number of columns visited per scan.
func (s *Scanner) Loops() uint8 {
	return s.loops
}

// Travel appends the last displacement of every cell of row to dst.
func (s *Scanner) Travel(row uint8, dst []uint8) []uint8 {
	for c := range s.keys[row] {
		dst = append(dst, s.keys[row][c].Distance)
	}
	return dst
}
