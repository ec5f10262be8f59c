// Package firmware holds the TinyGo side of substrip: a WS2812 transmitter
// and the physical layout of the boards it runs on.
package firmware

import (
	"image/color"
	"runtime/interrupt"

	"libdb.so/substrip"
	"tinygo.org/x/drivers/ws2812"
)

// WS2812 is a substrip.Transmitter that bit-bangs frames to a WS2812 strip.
type WS2812 struct {
	dev ws2812.Device
	buf []color.RGBA
}

var _ substrip.Transmitter = (*WS2812)(nil)

// NewWS2812 wraps the given device.
func NewWS2812(dev ws2812.Device) *WS2812 {
	return &WS2812{dev: dev}
}

// Transmit writes the frame with interrupts disabled, since the WS2812
// timing cannot tolerate being preempted.
func (w *WS2812) Transmit(frame substrip.LEDs) error {
	if cap(w.buf) < len(frame) {
		w.buf = make([]color.RGBA, len(frame))
	}
	w.buf = w.buf[:len(frame)]

	for i, c := range frame {
		w.buf[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
	}

	var err error
	critical(func() { err = w.dev.WriteColors(w.buf) })
	return err
}

func critical(f func()) {
	state := interrupt.Disable()
	f()
	interrupt.Restore(state)
}
