package firmware

import "libdb.so/substrip"

// NumLEDs is the length of the physical strip.
const NumLEDs = 192

var (
	BackLEDs = [2]int{40, NumLEDs}
	SideLEDs = [2]int{0, BackLEDs[0]}
)

// Points returns the index table for the LEDs in the range [leds[0], leds[1]).
func Points(leds [2]int) []int {
	return substrip.RangePoints(leds[0], leds[1], false)
}
