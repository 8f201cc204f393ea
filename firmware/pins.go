//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/itohio/gohe/pkg/axes"
	"github.com/itohio/gohe/pkg/matrix"
)

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Hand detection: pulled up on the left half, grounded on the right.
	PIN_HAND = machine.D10
	// Master detection: high when the half is the USB host side.
	PIN_MASTER = machine.D9

	// Split link between the halves
	LINK_BAUD_RATE = 115200

	// Axis frames are sent at most this often.
	AXES_INTERVAL_MS = 10
)

// Multiplexer channel select lines, least significant first.
var muxPins = [4]machine.Pin{machine.D0, machine.D1, machine.D2, machine.D3}

// One multiplexed ADC input per row of a half.
var rowPins = []machine.Pin{machine.A4, machine.A5, machine.A6, machine.A7, machine.NoPin, machine.A8}

// Directly wired channels of the row without a multiplexer.
var directPins = []machine.Pin{machine.A0, machine.A1, machine.A2, machine.A3, machine.A9, machine.A10, machine.A11, machine.A12}

// directRow is the row of a half wired through directPins.
const directRow = 4

// keyboardLayout is the 75% split board: six rows per half, the fifth row
// wired directly and columns 4-7 of the last row driven by DKS group 1.
var keyboardLayout = matrix.Layout{
	Rows:  12,
	Cols:  8,
	Split: true,
	Mask: []matrix.Row{
		0xff, 0xff, 0xff, 0xff, 0xff, 0x0f,
		0xff, 0xff, 0xff, 0xff, 0xff, 0x0f,
	},
	DirectLeft:  matrix.DirectRow{Row: directRow, Channels: 8},
	DirectRight: matrix.DirectRow{Row: 6 + directRow, Channels: 8},
	MuxesPerADC: 1,
	DKS:         true,
	Axes:        true,
	Sources: []axes.Source{
		{Name: "mouse-left", Toggle: axes.ToggleMouse, Group: axes.Mouse,
			Coords: [axes.Channels]axes.Position{{Row: 1, Col: 2}, {Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 3}}},
		{Name: "scroll-right", Toggle: axes.ToggleScroll, Group: axes.Scroll,
			Coords: [axes.Channels]axes.Position{{Row: 6, Col: 5}, {Row: 6, Col: 4}, {Row: 6, Col: 6}, {Row: 6, Col: 7}}},
	},
	Rest:         matrix.RestIdle,
	RestPeriod:   matrix.RestPeriod,
	StartupDelay: 100 * time.Millisecond,
}
