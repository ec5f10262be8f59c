package substrip

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestViewRemap(t *testing.T) {
	tx := &recorder{}
	agg := NewAggregator(3, tx)
	view := NewView(agg, []int{2, 0}, nil)

	if err := view.UpdateRGB([]RGBColor{{1, 2, 3}, {4, 5, 6}}); err != nil {
		t.Fatal(err)
	}

	if len(tx.frames) != 1 {
		t.Fatalf("got %d transmits, want 1", len(tx.frames))
	}

	want := LEDs{{4, 5, 6}, {0, 0, 0}, {1, 2, 3}}
	if !equalLEDs(tx.last(t), want) {
		t.Errorf("got %v, want %v", tx.last(t), want)
	}
}

func TestViewsShareBuffer(t *testing.T) {
	tx := &recorder{}
	agg := NewAggregator(2, tx)
	a := NewView(agg, []int{0}, nil)
	b := NewView(agg, []int{1}, nil)

	if err := a.UpdateRGB([]RGBColor{{9, 9, 9}}); err != nil {
		t.Fatal(err)
	}
	if err := b.UpdateRGB([]RGBColor{{8, 8, 8}}); err != nil {
		t.Fatal(err)
	}

	want := LEDs{{9, 9, 9}, {8, 8, 8}}
	if !equalLEDs(tx.last(t), want) {
		t.Errorf("got %v, want %v", tx.last(t), want)
	}
}

func TestViewsOverlap(t *testing.T) {
	tx := &recorder{}
	agg := NewAggregator(3, tx)
	a := NewView(agg, []int{0, 1}, nil)
	b := NewView(agg, []int{1, 2}, nil)

	a.UpdateRGB([]RGBColor{red, red})
	b.UpdateRGB([]RGBColor{blue, blue})

	want := LEDs{red, blue, blue}
	if !equalLEDs(tx.last(t), want) {
		t.Errorf("got %v, want %v", tx.last(t), want)
	}
}

func TestViewLengthMismatch(t *testing.T) {
	tests := []struct {
		name   string
		pixels []RGBColor
		want   LEDs
	}{
		{"short", []RGBColor{red}, LEDs{{}, red, {}, {}}},
		{"exact", []RGBColor{red, green}, LEDs{{}, red, {}, green}},
		{"long", []RGBColor{red, green, blue}, LEDs{{}, red, {}, green}},
		{"empty", nil, LEDs{{}, {}, {}, {}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tx := &recorder{}
			view := NewView(NewAggregator(4, tx), []int{1, 3}, nil)

			if err := view.UpdateRGB(test.pixels); err != nil {
				t.Fatal(err)
			}
			if !equalLEDs(tx.last(t), test.want) {
				t.Errorf("got %v, want %v", tx.last(t), test.want)
			}
		})
	}
}

func TestViewOutOfRangePoint(t *testing.T) {
	tx := &recorder{}
	view := NewView(NewAggregator(2, tx), []int{1, 7, 0}, nil)

	if err := view.UpdateRGB([]RGBColor{red, green, blue}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := LEDs{blue, red}
	if !equalLEDs(tx.last(t), want) {
		t.Errorf("got %v, want %v", tx.last(t), want)
	}
}

func TestViewUpdateChannels(t *testing.T) {
	inputs := [][]uint8{nil, {}, {1, 2, 3, 4, 5, 6}}

	for _, input := range inputs {
		var logs bytes.Buffer

		tx := &recorder{}
		agg := NewAggregator(2, tx)
		agg.UpdateRGB([]RGBColor{red, green})
		before := agg.Pixels()

		view := NewView(agg, []int{0, 1}, slog.New(slog.NewTextHandler(&logs, nil)))

		err := view.UpdateChannels(input)
		if !errors.Is(err, ErrNotSupported) {
			t.Errorf("UpdateChannels(%v): got error %v, want ErrNotSupported", input, err)
		}
		if len(tx.frames) != 1 {
			t.Errorf("UpdateChannels(%v) transmitted", input)
		}
		if !equalLEDs(agg.Pixels(), before) {
			t.Errorf("UpdateChannels(%v) changed buffer to %v", input, agg.Pixels())
		}
		if !strings.Contains(logs.String(), "level=ERROR") ||
			!strings.Contains(logs.String(), "update_channels not implemented") {
			t.Errorf("UpdateChannels(%v) did not log an error: %q", input, logs.String())
		}
	}
}

func TestViewPointsCopied(t *testing.T) {
	points := []int{0, 1}
	view := NewView(NewAggregator(2, &recorder{}), points, nil)

	points[0] = 1
	if got := view.Points(); got[0] != 0 {
		t.Errorf("view points changed with the caller's slice: %v", got)
	}

	view.Points()[1] = 0
	if got := view.Points(); got[1] != 1 {
		t.Errorf("view points changed through Points: %v", got)
	}
}

func TestRangePoints(t *testing.T) {
	tests := []struct {
		start, end int
		reverse    bool
		want       []int
	}{
		{0, 3, false, []int{0, 1, 2}},
		{2, 5, true, []int{4, 3, 2}},
		{4, 4, false, nil},
		{5, 2, false, nil},
	}

	for _, test := range tests {
		got := RangePoints(test.start, test.end, test.reverse)
		if len(got) != len(test.want) {
			t.Errorf("RangePoints(%d, %d, %v) = %v, want %v", test.start, test.end, test.reverse, got, test.want)
			continue
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("RangePoints(%d, %d, %v) = %v, want %v", test.start, test.end, test.reverse, got, test.want)
				break
			}
		}
	}
}
