package substrip

import (
	"encoding"
	"encoding/hex"
	"io"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
)

// RGBColor is a single pixel. It has no meaning to this package beyond being
// copied around.
type RGBColor [3]uint8

var (
	_ encoding.TextUnmarshaler = (*RGBColor)(nil)
	_ encoding.TextMarshaler   = (*RGBColor)(nil)
)

// UnmarshalText parses a color in the form #rrggbb or rrggbb.
func (c *RGBColor) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "#")
	if len(s) != 6 {
		return errors.Errorf("invalid color %q: want #rrggbb", text)
	}

	var b [3]byte
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return errors.Wrapf(err, "invalid color %q", text)
	}

	*c = RGBColor(b)
	return nil
}

func (c RGBColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c RGBColor) String() string {
	return "#" + hex.EncodeToString(c[:])
}

// LEDs describes a strip of LEDs. It is a preallocated slice of RGBColor.
type LEDs []RGBColor

// NewLEDs creates a new strip of LEDs. Colors are initialized to black
// (off).
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// LEDsFromPixels converts flat channel bytes, as produced by AsPixels, back
// into LEDs. A trailing partial triple is ignored.
func LEDsFromPixels(pix []uint8) LEDs {
	leds := make(LEDs, len(pix)/3)
	for i := range leds {
		copy(leds[i][:], pix[i*3:])
	}
	return leds
}

// WriteTo implements io.WriterTo. It writes the LED strip to the given writer
// as a series of RGBColor values.
func (l LEDs) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, c := range l {
		n, err := w.Write(c[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// AsPixels returns the LED strip as a slice of uint8 values. Each LED is
// represented by three values, one for each color channel. The returned slice
// shares memory with l.
func (l LEDs) AsPixels() []uint8 {
	if len(l) == 0 {
		return nil
	}
	return unsafe.Slice((*uint8)(unsafe.Pointer(&l[0])), 3*len(l))
}

// Clone returns a copy of the strip.
func (l LEDs) Clone() LEDs {
	return append(LEDs(nil), l...)
}

// Set sets the color of the LED at the given index. It panics if i is out of
// range; use SetChecked for untrusted indices.
func (l LEDs) Set(i int, c RGBColor) {
	l[i] = c
}

// SetChecked sets the color of the LED at the given index if the index lies
// within the strip. It reports whether the LED was written. Indices outside
// [0, len(l)) leave the strip untouched.
func (l LEDs) SetChecked(i int, c RGBColor) bool {
	if i < 0 || i >= len(l) {
		return false
	}
	l[i] = c
	return true
}

// SetRange sets the color of the LEDs in the given range. The range is
// clamped to the strip.
func (l LEDs) SetRange(start, end int, c RGBColor) {
	start = max(start, 0)
	end = min(end, len(l))
	for i := start; i < end; i++ {
		l[i] = c
	}
}

// Draw draws the given LEDs into the strip at the given index.
// It stops when either l or other is exhausted and returns the number of LEDs
// written.
func (l LEDs) Draw(start int, other LEDs) int {
	for i := range other {
		if !l.SetChecked(start+i, other[i]) {
			return i
		}
	}
	return len(other)
}
