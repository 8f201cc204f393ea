//go:build tinygo

//go:generate tinygo flash -target=teensy41

package main

import (
	"machine"
	"strings"
	"time"

	"github.com/itohio/gohe/pkg/link"
	"github.com/itohio/gohe/pkg/matrix"
)

var (
	uart = machine.UART1

	// Serial buffer for reading link lines
	lineBuffer [96]byte
	linePos    int

	// Output buffer reused for every frame
	out = make([]byte, 0, 128)
)

func main() {
	b := &board{}
	s, err := matrix.New(keyboardLayout, b)
	if err != nil {
		for {
			println("matrix:", err.Error())
			time.Sleep(time.Second)
		}
	}
	_, master := s.Hand()

	uart.Configure(machine.UARTConfig{
		BaudRate: LINK_BAUD_RATE,
	})

	current := make([]matrix.Row, keyboardLayout.Rows)
	first, n := s.RowOffset(), s.RowsPerHand()
	travel := make([]uint8, 0, keyboardLayout.Cols)
	var lastAxes uint32

	for {
		if master {
			processLink(s)
		}

		if s.Scan(current) {
			// Matrix and travel go to the host tool over USB
			f := link.MatrixFrame(first, current[first:first+n])
			writeFrame(machine.Serial, &f)
			for r := first; r < first+n; r++ {
				f = link.TravelFrame(r, s.Travel(r, travel[:0]))
				writeFrame(machine.Serial, &f)
			}
		}

		if now := b.Millis(); now-lastAxes >= AXES_INTERVAL_MS {
			lastAxes = now
			if master {
				f := link.AxesFrame(s.Axes().Combined())
				writeFrame(machine.Serial, &f)
			} else {
				// The slave streams its axes to the master
				f := link.AxesFrame(s.Axes().FromSelf())
				writeFrame(uart, &f)
			}
		}
	}
}

type writer interface {
	Write(p []byte) (int, error)
}

func writeFrame(w writer, f *link.Frame) {
	out = append(f.Append(out[:0]), '\n')
	w.Write(out)
}

// processLink reads axis frames sent by the slave half.
func processLink(s *matrix.Scanner) {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if linePos > 0 {
				line := strings.TrimSpace(string(lineBuffer[:linePos]))
				if f, err := link.ParseFrame(line); err == nil && f.Kind == link.KindAxes {
					s.Axes().SetFromSlave(f.Axes)
				}
			}
			linePos = 0
			continue
		}

		if linePos < len(lineBuffer) {
			lineBuffer[linePos] = data
			linePos++
		} else {
			// Line too long - reset buffer
			linePos = 0
		}
	}
}
