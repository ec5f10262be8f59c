package substrip

import (
	"fmt"
	"log/slog"
)

// Aggregator owns the pixel buffer of one physical strip. Views write into
// the buffer through UpdateIndexed; pixels they do not name keep whatever was
// last written to them by anyone.
//
// An Aggregator is not safe for concurrent use. Callers sharing one
// Aggregator, directly or through Views, must serialize their updates. If
// they don't, the last writer wins on overlapping pixels and a transmission
// may carry a half-updated frame.
type Aggregator struct {
	buffer LEDs
	tx     Transmitter
	logger *slog.Logger
}

// NewAggregator creates an Aggregator for a physical strip of numPixels
// pixels, all initially black. It panics if numPixels is negative or tx is
// nil.
func NewAggregator(numPixels int, tx Transmitter) *Aggregator {
	if numPixels < 0 {
		panic(fmt.Sprintf("substrip: negative pixel count %d", numPixels))
	}
	if tx == nil {
		panic("substrip: nil transmitter")
	}

	return &Aggregator{
		buffer: NewLEDs(numPixels),
		tx:     tx,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger used to report unsupported operations.
func (a *Aggregator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Len returns the number of physical pixels.
func (a *Aggregator) Len() int {
	return len(a.buffer)
}

// Pixels returns a copy of the current buffer.
func (a *Aggregator) Pixels() LEDs {
	return a.buffer.Clone()
}

// UpdateIndexed writes pixels[i] to the physical pixel targets[i], then
// transmits the whole buffer and returns the transmitter's error unchanged.
//
// Only the first min(len(pixels), len(targets)) pairs are used. Targets
// outside the strip are skipped. Neither case is an error.
func (a *Aggregator) UpdateIndexed(pixels []RGBColor, targets []int) error {
	n := min(len(pixels), len(targets))
	for i := 0; i < n; i++ {
		a.buffer.SetChecked(targets[i], pixels[i])
	}
	return a.tx.Transmit(a.buffer)
}

// UpdateRGB writes pixels to the start of the strip, then transmits the whole
// buffer. Pixels beyond the end of the strip are ignored.
func (a *Aggregator) UpdateRGB(pixels []RGBColor) error {
	a.buffer.Draw(0, pixels)
	return a.tx.Transmit(a.buffer)
}

// UpdateChannels is not supported. It always returns ErrNotSupported and
// touches neither the buffer nor the transmitter.
func (a *Aggregator) UpdateChannels(channels []uint8) error {
	a.logger.Error("update_channels not implemented", "channels", len(channels))
	return ErrNotSupported
}
