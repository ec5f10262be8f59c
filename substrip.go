// Package substrip exposes slices of a physical addressable LED strip as
// independent strips of their own.
//
// A physical strip is owned by an Aggregator, which keeps the pixel buffer
// for the whole strip and pushes it to a Transmitter on every update. A View
// wraps an Aggregator with a static table of physical indices, so clients can
// drive an arbitrary, reordered subset of the physical strip through the same
// Strip interface they would use for a real strip.
//
// All updates are synchronous and full-frame: every update, whatever it
// touched, ends with the entire physical buffer being transmitted.
//
// Writes that cannot land are dropped silently. A View's pixels beyond its
// table, table entries beyond its pixels and table entries outside the
// physical strip are all skipped without an error. Callers that need to know
// whether every pixel was written must check lengths themselves.
package substrip

import (
	"github.com/pkg/errors"
)

// ErrNotSupported is returned by operations a strip does not implement.
var ErrNotSupported = errors.New("operation not supported")

// Strip is the generic contract of an addressable LED strip.
type Strip interface {
	// UpdateRGB updates the strip with the given pixels and refreshes the
	// hardware.
	UpdateRGB(pixels []RGBColor) error
	// UpdateChannels updates the strip with raw channel values.
	UpdateChannels(channels []uint8) error
}

var (
	_ Strip = (*Aggregator)(nil)
	_ Strip = (*View)(nil)
)

// Transmitter pushes a complete frame to the LED hardware. The length of the
// frame is the number of pixels to push.
//
// The frame may alias the caller's buffer. Implementations must not retain or
// modify it after Transmit returns.
type Transmitter interface {
	Transmit(frame LEDs) error
}

// TransmitterFunc is a function that implements Transmitter.
type TransmitterFunc func(frame LEDs) error

// Transmit calls f(frame).
func (f TransmitterFunc) Transmit(frame LEDs) error {
	return f(frame)
}
