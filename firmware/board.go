//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/itohio/gohe/pkg/analog"
	"github.com/itohio/gohe/pkg/matrix"
)

// board binds the multiplexers and ADCs of one half to matrix.HAL.
type board struct {
	offset uint8 // first matrix row of this half

	rows   []machine.ADC
	direct []machine.ADC
	sample []uint16

	start time.Time
}

var _ matrix.HAL = (*board)(nil)

func (b *board) Hand() (left, master bool) {
	PIN_HAND.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	PIN_MASTER.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	left, master = PIN_HAND.Get(), PIN_MASTER.Get()
	if !left {
		b.offset = keyboardLayout.RowsPerHand()
	}
	return left, master
}

func (b *board) Start() error {
	machine.InitADC()
	cfg := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	for _, p := range muxPins {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	b.rows = b.rows[:0]
	for _, p := range rowPins {
		adc := machine.ADC{Pin: p}
		if p != machine.NoPin {
			adc.Configure(cfg)
		}
		b.rows = append(b.rows, adc)
	}
	b.direct = b.direct[:0]
	for _, p := range directPins {
		adc := machine.ADC{Pin: p}
		adc.Configure(cfg)
		b.direct = append(b.direct, adc)
	}
	b.sample = make([]uint16, len(b.rows))
	b.start = time.Now()
	return nil
}

func (b *board) SelectChannel(col uint8) {
	for i, p := range muxPins {
		p.Set(col&(1<<i) != 0)
	}
}

// StartConversions converts every multiplexed row at the selected channel.
func (b *board) StartConversions(direct uint8) {
	for i, adc := range b.rows {
		if rowPins[i] == machine.NoPin {
			continue
		}
		b.sample[i] = adc.Get() >> 4
	}
}

func (b *board) Sample(row, direct uint8) uint16 {
	r := int(row - b.offset)
	if r == directRow {
		if int(direct) < len(b.direct) {
			return b.direct[direct].Get() >> 4
		}
		return analog.RawMidpoint + 1
	}
	if r < 0 || r >= len(b.sample) {
		return analog.RawMidpoint + 1
	}
	return b.sample[r]
}

func (b *board) Millis() uint32 {
	return uint32(time.Since(b.start).Milliseconds())
}
