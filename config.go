package substrip

import (
	"encoding"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// DryRunDevice is the device name that makes a strip log its frames instead
// of opening a serial port.
const DryRunDevice = "-"

// Config is the configuration for a set of physical strips and the views over
// them.
type Config struct {
	// Strips is a list of physical strips.
	Strips []StripConfig `toml:"strip"`
	// Views is a list of views. Views are built and painted in this order.
	Views []ViewConfig `toml:"view"`
}

// StripConfig is the configuration for a physical strip.
type StripConfig struct {
	// Name identifies the strip to views.
	Name string `toml:"name"`
	// Device is the path to the serial device of the LED controller.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0. DryRunDevice logs
	// frames instead.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// Pixels is the number of physical pixels on the strip.
	Pixels int `toml:"pixels"`
	// AckTimeout is how long to wait for the controller to acknowledge a
	// frame. Zero means the controller's default.
	AckTimeout TOMLDuration `toml:"ack_timeout"`
}

// ViewConfig is the configuration for a view over a physical strip.
type ViewConfig struct {
	// Name identifies the view.
	Name string `toml:"name"`
	// Strip is the name of the physical strip.
	Strip string `toml:"strip"`

	// Only one of Range or Points should be set.

	// Range is the range [start, end) of physical pixels in the view, as a
	// pair of numbers.
	Range []int `toml:"range,omitempty"`
	// Reverse reverses the order of Range.
	Reverse bool `toml:"reverse"`
	// Points lists the physical pixel of each view pixel.
	Points []int `toml:"points,omitempty"`

	// Color is the color to paint the view with at startup. If nil, the view
	// is left alone.
	Color *RGBColor `toml:"color,omitempty"`
}

// IndexTable returns the physical index table of the view.
func (v ViewConfig) IndexTable() []int {
	if len(v.Range) == 2 {
		return RangePoints(v.Range[0], v.Range[1], v.Reverse)
	}
	return append([]int(nil), v.Points...)
}

// Strip returns the strip configuration with the given name.
func (c *Config) Strip(name string) (StripConfig, bool) {
	for _, s := range c.Strips {
		if s.Name == name {
			return s, true
		}
	}
	return StripConfig{}, false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Strips) == 0 {
		return errors.New("no strips configured")
	}

	strips := make(map[string]struct{}, len(c.Strips))
	for _, s := range c.Strips {
		if s.Name == "" {
			return errors.New("strip has no name")
		}
		if _, ok := strips[s.Name]; ok {
			return fmt.Errorf("duplicate strip %q", s.Name)
		}
		strips[s.Name] = struct{}{}

		if s.Pixels < 1 || s.Pixels > math.MaxUint16 {
			return fmt.Errorf("strip %q: invalid pixel count %d", s.Name, s.Pixels)
		}
		if s.Baud < 0 {
			return fmt.Errorf("strip %q: invalid baud rate %d", s.Name, s.Baud)
		}
	}

	views := make(map[string]struct{}, len(c.Views))
	for _, v := range c.Views {
		if v.Name == "" {
			return errors.New("view has no name")
		}
		if _, ok := views[v.Name]; ok {
			return fmt.Errorf("duplicate view %q", v.Name)
		}
		views[v.Name] = struct{}{}

		if _, ok := strips[v.Strip]; !ok {
			return fmt.Errorf("view %q: unknown strip %q", v.Name, v.Strip)
		}

		switch {
		case v.Range != nil && v.Points != nil:
			return fmt.Errorf("view %q: both range and points are set", v.Name)
		case v.Range == nil && v.Points == nil:
			return fmt.Errorf("view %q: neither range nor points is set", v.Name)
		case v.Range != nil:
			if len(v.Range) != 2 || v.Range[0] < 0 || v.Range[0] > v.Range[1] {
				return fmt.Errorf("view %q: invalid range %v", v.Name, v.Range)
			}
		}
	}

	return nil
}

// Warnings returns a description of every view point that lies outside its
// physical strip. Such points are kept: writes through them are dropped at
// update time. The configuration should be valid.
func (c *Config) Warnings() []string {
	var warnings []string
	for _, v := range c.Views {
		s, ok := c.Strip(v.Strip)
		if !ok {
			continue
		}
		for i, p := range v.IndexTable() {
			if p < 0 || p >= s.Pixels {
				warnings = append(warnings, fmt.Sprintf(
					"view %q: point %d maps to pixel %d outside strip %q of %d pixels",
					v.Name, i, p, s.Name, s.Pixels))
			}
		}
	}
	return warnings
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Layout is a built configuration: one Aggregator per physical strip and one
// View per configured view.
type Layout struct {
	Strips map[string]*Aggregator
	Views  []NamedView
}

// NamedView is a View together with its configuration.
type NamedView struct {
	*View
	Config ViewConfig
}

// View returns the view with the given name, or nil.
func (l *Layout) View(name string) *View {
	for _, v := range l.Views {
		if v.Config.Name == name {
			return v.View
		}
	}
	return nil
}

// Build validates the configuration and builds its Layout. The open function
// provides the Transmitter for each strip. If opening a strip fails, the
// transmitters opened before it are closed if they implement io.Closer.
func (c *Config) Build(open func(StripConfig) (Transmitter, error), logger *slog.Logger) (*Layout, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	if logger == nil {
		logger = slog.Default()
	}

	for _, w := range c.Warnings() {
		logger.Warn("point outside strip will be ignored", "warning", w)
	}

	layout := &Layout{
		Strips: make(map[string]*Aggregator, len(c.Strips)),
		Views:  make([]NamedView, 0, len(c.Views)),
	}

	opened := make([]Transmitter, 0, len(c.Strips))

	for _, s := range c.Strips {
		tx, err := open(s)
		if err != nil {
			closeAll(opened, logger)
			return nil, errors.Wrapf(err, "failed to open strip %q", s.Name)
		}
		opened = append(opened, tx)

		agg := NewAggregator(s.Pixels, tx)
		agg.SetLogger(logger.With("strip", s.Name))
		layout.Strips[s.Name] = agg
	}

	for _, v := range c.Views {
		view := NewView(layout.Strips[v.Strip], v.IndexTable(), logger.With("view", v.Name))
		layout.Views = append(layout.Views, NamedView{View: view, Config: v})
	}

	return layout, nil
}

func closeAll(txs []Transmitter, logger *slog.Logger) {
	for _, tx := range txs {
		closer, ok := tx.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.Warn("failed to close strip", "error", err)
		}
	}
}

// Paint paints every view that has a static color, in configuration order.
// It stops at the first failed update.
func (l *Layout) Paint() error {
	for _, v := range l.Views {
		if v.Config.Color == nil {
			continue
		}

		pixels := NewLEDs(v.Len())
		pixels.SetRange(0, len(pixels), *v.Config.Color)

		if err := v.UpdateRGB(pixels); err != nil {
			return errors.Wrapf(err, "failed to paint view %q", v.Config.Name)
		}
	}
	return nil
}
