package substrip

import (
	"log/slog"
)

// View is a strip made of a fixed selection of pixels of an Aggregator. Pixel
// i of the view is physical pixel points[i]. Views may overlap and need not
// cover the whole physical strip.
//
// A View holds no pixels of its own, so it shares the concurrency rules of
// its Aggregator.
type View struct {
	agg    *Aggregator
	points []int
	logger *slog.Logger
}

// NewView creates a view over agg. The points table is copied. Points outside
// the physical strip are accepted; writes to them are dropped on every
// update. If logger is nil, slog.Default() is used.
func NewView(agg *Aggregator, points []int, logger *slog.Logger) *View {
	if agg == nil {
		panic("substrip: nil aggregator")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &View{
		agg:    agg,
		points: append([]int(nil), points...),
		logger: logger,
	}
}

// Len returns the number of pixels in the view.
func (v *View) Len() int {
	return len(v.points)
}

// Points returns a copy of the view's index table.
func (v *View) Points() []int {
	return append([]int(nil), v.points...)
}

// Aggregator returns the Aggregator the view writes to.
func (v *View) Aggregator() *Aggregator {
	return v.agg
}

// UpdateRGB writes pixels through the view's index table and transmits the
// whole physical strip. len(pixels) need not match Len; the shorter of the
// two wins.
func (v *View) UpdateRGB(pixels []RGBColor) error {
	return v.agg.UpdateIndexed(pixels, v.points)
}

// UpdateChannels is not supported by views. It always returns
// ErrNotSupported.
func (v *View) UpdateChannels(channels []uint8) error {
	v.logger.Error("update_channels not implemented", "channels", len(channels))
	return ErrNotSupported
}

// RangePoints returns the index table for the physical pixels [start, end),
// in reverse order if reverse is true. It returns nil if end <= start.
func RangePoints(start, end int, reverse bool) []int {
	if end <= start {
		return nil
	}

	points := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		points = append(points, i)
	}

	if reverse {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}

	return points
}
