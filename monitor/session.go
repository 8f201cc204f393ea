package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/config"
	"github.com/itohio/gohe/pkg/hal"
	"github.com/itohio/gohe/pkg/link"
	"github.com/itohio/gohe/pkg/matrix"
	"github.com/itohio/gohe/pkg/view"
)

// axesInterval throttles axis frames to ~60 FPS.
const axesInterval = 16 * time.Millisecond

// half is one simulated board half.
type half struct {
	board   *hal.Mock
	scanner *matrix.Scanner
	device  *link.Mock
}

// session tracks the devices and goroutines of one connection for graceful
// shutdown.
type session struct {
	devices []link.Device
	halves  []*half // simulated halves, left first
	wg      sync.WaitGroup

	mu      sync.Mutex
	pressed map[[2]uint8]float64
}

// newHalf simulates one half of the configured board.
func newHalf(cfg *config.Config, left bool) (*half, error) {
	b := &cfg.Board
	m := hal.NewMock(b.Rows, b.Cols, left, left)
	m.Rest, m.Swing, m.North = cfg.Mock.Rest, cfg.Mock.Swing, cfg.Mock.North
	for _, d := range []*config.DirectConfig{b.DirectLeft, b.DirectRight} {
		if d != nil {
			m.SetDirect(uint8(d.Row))
		}
	}
	for r := uint8(0); r < b.Rows; r++ {
		for c := uint8(0); c < b.Cols; c++ {
			m.SetTravel(r, c, 0)
		}
	}
	m.Realtime()

	s, err := matrix.New(cfg.Layout(), m, matrix.WithDefaults(config.NewDefaults(cfg)), matrix.WithSettings(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}
	return &half{board: m, scanner: s, device: link.NewMock(s, cfg.Mock.ScanInterval)}, nil
}

// openMock simulates the whole board. The right half forwards its axes to
// the left half the way the split link does.
func openMock(cfg *config.Config) (*session, error) {
	s := &session{pressed: make(map[[2]uint8]float64)}

	hands := []bool{true}
	if cfg.Board.Split {
		hands = append(hands, false)
	}
	for _, left := range hands {
		h, err := newHalf(cfg, left)
		if err != nil {
			return nil, err
		}
		s.halves = append(s.halves, h)
		s.devices = append(s.devices, h.device)
	}
	return s, nil
}

// openSerial reads one board half over the serial port.
func openSerial(cfg *config.Config) *session {
	return &session{
		devices: []link.Device{link.New(cfg.Serial.Port, cfg.Serial.BaudRate, link.DefaultBufferSize)},
	}
}

// start connects every device and starts forwarding frames to the grid.
func (s *session) start(grid *view.KeyGrid) error {
	for i, dev := range s.devices {
		if err := dev.Connect(); err != nil {
			s.close()
			return err
		}

		// The first simulated half is the master; the others feed its
		// slave buffer.
		var slave *axes.Aggregator
		if i > 0 && len(s.halves) > 0 {
			slave = s.halves[0].scanner.Axes()
		}

		s.wg.Add(1)
		go func(idx int, frames <-chan link.Frame) {
			defer s.wg.Done()
			var lastAxes time.Time
			link.Forward(frames, slave, func(f link.Frame) {
				if f.Kind == link.KindAxes {
					now := time.Now()
					if now.Sub(lastAxes) < axesInterval {
						return
					}
					lastAxes = now
				}
				fyne.Do(func() {
					grid.Apply(f, idx)
				})
			})
		}(i, dev.Frames())
	}
	return nil
}

// close closes every device and waits for the frame consumers to drain.
func (s *session) close() {
	if s == nil {
		return
	}
	for _, dev := range s.devices {
		if err := dev.Close(); err != nil {
			log.Printf("Error closing device: %v", err)
		}
	}
	s.wg.Wait()
}

// toggle presses or releases a simulated key. Secondary taps press halfway.
func (s *session) toggle(row, col uint8, secondary bool) {
	h := s.halfOf(row)
	if h == nil {
		return
	}

	travel := 1.0
	if secondary {
		travel = 0.5
	}

	s.mu.Lock()
	key := [2]uint8{row, col}
	if s.pressed[key] == travel {
		travel = 0
		delete(s.pressed, key)
	} else {
		s.pressed[key] = travel
	}
	s.mu.Unlock()

	h.board.SetTravel(row, col, travel)
}

// releaseAll releases every simulated key.
func (s *session) releaseAll() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.pressed {
		if h := s.halfOf(key[0]); h != nil {
			h.board.SetTravel(key[0], key[1], 0)
		}
	}
	clear(s.pressed)
}

// halfOf returns the simulated half that senses row.
func (s *session) halfOf(row uint8) *half {
	for _, h := range s.halves {
		first := h.scanner.RowOffset()
		if row >= first && row < first+h.scanner.RowsPerHand() {
			return h
		}
	}
	return nil
}

// handleTap simulates key presses on the grid.
func (state *appState) handleTap(row, col uint8, secondary bool) {
	if state.session == nil || !state.useMock {
		return
	}
	state.session.toggle(row, col, secondary)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.session != nil {
		state.session.close()
		state.session = nil
		state.releaseBtn.Disable()
		state.status.SetText("Disconnected")
		log.Printf("Disconnected")
		return
	}

	var (
		s   *session
		err error
	)
	if state.useMock {
		s, err = openMock(state.cfg)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to simulate board: %w", err), state.window)
			return
		}
	} else {
		s = openSerial(state.cfg)
	}

	// Settings may have changed the board since the last session
	grid := newGrid(state.cfg)
	grid.OnTapped = state.handleTap
	state.grid = grid
	state.window.SetContent(containerFor(state))

	if err := s.start(grid); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated board: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}

	state.session = s
	if state.useMock {
		state.releaseBtn.Enable()
		state.status.SetText(fmt.Sprintf("Simulating %d half(s)", len(s.halves)))
		log.Printf("Simulating board: %d half(s)", len(s.halves))
	} else {
		state.status.SetText("Connected to " + state.cfg.Serial.Port)
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
	}
}
