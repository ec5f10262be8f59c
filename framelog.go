package substrip

import (
	"encoding/hex"
	"log/slog"
)

// FrameLogger is a Transmitter that logs every frame instead of sending it
// anywhere. It is used for dry runs.
type FrameLogger struct {
	Logger *slog.Logger
	// Name is attached to every log record as the "strip" attribute.
	Name string
}

var _ Transmitter = (*FrameLogger)(nil)

// Transmit logs the frame as a hex string. It never fails.
func (l *FrameLogger) Transmit(frame LEDs) error {
	l.logger().Info(
		"transmitting frame",
		"strip", l.Name,
		"pixels", len(frame),
		"frame", hex.EncodeToString(frame.AsPixels()))
	return nil
}

func (l *FrameLogger) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
