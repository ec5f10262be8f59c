// Package serialstrip drives an LED controller speaking the ledserial protocol
// over a serial port.
package serialstrip

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/substrip"
	"libdb.so/substrip/ledserial"
)

// DefaultAckTimeout is the default time to wait for the controller to
// acknowledge a packet.
const DefaultAckTimeout = time.Second

// ErrNotRunning is returned when a packet is sent while Run is not active,
// or when Run does not start within the ack timeout.
var ErrNotRunning = errors.New("controller is not running")

// Controller is a substrip.Transmitter that sends every frame to an LED
// controller and waits for the controller to acknowledge it.
//
// Initialize, Clear and Transmit wait for Run to start, and Run must stay
// active for the duration of the call. Those calls must not be made
// concurrently with each other.
type Controller struct {
	// AckTimeout is the time to wait for an acknowledgement.
	AckTimeout time.Duration

	port    io.ReadWriteCloser
	numLEDs uint16
	logger  *slog.Logger
	packets chan ledserial.OutgoingPacket
	running chan struct{}
	done    chan struct{}
}

var (
	_ substrip.Transmitter = (*Controller)(nil)
	_ io.Closer            = (*Controller)(nil)
)

// Open opens the serial device and returns a Controller for a strip of
// numLEDs LEDs.
func Open(device string, baud int, numLEDs uint16, logger *slog.Logger) (*Controller, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to reset read timeout")
	}

	return New(port, numLEDs, logger), nil
}

// New creates a Controller that talks over the given port. The Controller
// takes ownership of the port and closes it when Run returns.
func New(port io.ReadWriteCloser, numLEDs uint16, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		AckTimeout: DefaultAckTimeout,
		port:       port,
		numLEDs:    numLEDs,
		logger:     logger,
		packets:    make(chan ledserial.OutgoingPacket),
		running:    make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Close closes the port. It is only needed if Run is never called; Run
// closes the port itself when it returns.
func (c *Controller) Close() error {
	return c.port.Close()
}

// Run reads packets from the controller until the given context is canceled
// or the port fails. The port is closed when Run returns. Run may only be
// called once.
func (c *Controller) Run(ctx context.Context) error {
	close(c.running)
	defer close(c.done)

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		c.logger.Debug("closing serial port")
		if err := c.port.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})
	errg.Go(func() error {
		return c.readPackets(ctx)
	})

	return errg.Wait()
}

func (c *Controller) readPackets(ctx context.Context) error {
	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(c.port)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "failed to read packet")
		}

		c.logger.Debug(
			"received packet from controller",
			"type", p.Type())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case c.packets <- p:
			// ok
		}
	}

	return ctx.Err()
}

// Initialize tells the controller the length of the strip.
func (c *Controller) Initialize() error {
	return c.send(ledserial.InitializePacket{NumLEDs: c.numLEDs})
}

// Clear turns off every LED on the strip.
func (c *Controller) Clear() error {
	return c.send(ledserial.ClearPacket{})
}

// Transmit sends the frame to the controller and waits until it is
// acknowledged. The frame must have exactly as many pixels as the strip.
func (c *Controller) Transmit(frame substrip.LEDs) error {
	if len(frame) != int(c.numLEDs) {
		return errors.Errorf("frame has %d pixels, strip has %d", len(frame), c.numLEDs)
	}
	return c.send(ledserial.SetPacket{Pix: frame.AsPixels()})
}

func (c *Controller) send(p ledserial.IncomingPacket) error {
	if err := c.waitRunning(); err != nil {
		return err
	}

	// Anything the controller sent since the last exchange, such as an ack
	// that arrived after its timeout, does not answer this packet.
	c.drain()

	c.logger.Debug(
		"writing packet",
		"type", p.Type())

	if err := ledserial.WriteIncomingPacket(c.port, p); err != nil {
		return errors.Wrapf(err, "failed to write %s packet", p.Type())
	}

	return c.waitAck(p.Type())
}

func (c *Controller) ackTimeout() time.Duration {
	if c.AckTimeout <= 0 {
		return DefaultAckTimeout
	}
	return c.AckTimeout
}

func (c *Controller) waitRunning() error {
	select {
	case <-c.done:
		return ErrNotRunning
	default:
	}

	timeout := time.NewTimer(c.ackTimeout())
	defer timeout.Stop()

	select {
	case <-c.done:
		return ErrNotRunning
	case <-c.running:
		return nil
	case <-timeout.C:
		return ErrNotRunning
	}
}

func (c *Controller) drain() {
	for {
		select {
		case p := <-c.packets:
			switch p := p.(type) {
			case ledserial.LogPacket:
				c.logger.Info(
					"received log packet from controller",
					"message", p.Message)
			default:
				c.logger.Warn(
					"discarding stale packet from controller",
					"type", p.Type())
			}
		default:
			return
		}
	}
}

func (c *Controller) waitAck(ptype ledserial.IncomingPacketType) error {
	timeout := time.NewTimer(c.ackTimeout())
	defer timeout.Stop()

	for {
		select {
		case <-c.done:
			return ErrNotRunning

		case <-timeout.C:
			return errors.Errorf("timed out waiting for %s ack", ptype)

		case p := <-c.packets:
			switch p := p.(type) {
			case ledserial.AckPacket:
				if p.IncomingPacketType == ptype {
					return nil
				}
				c.logger.Warn(
					"received unexpected ack from controller",
					"acked_for", p.IncomingPacketType,
					"want", ptype)

			case ledserial.ErrorPacket:
				return errors.Errorf("controller reported error: %s", p.Message)

			case ledserial.PanicPacket:
				return errors.New("controller panicked")

			case ledserial.LogPacket:
				c.logger.Info(
					"received log packet from controller",
					"message", p.Message)

			default:
				return errors.Errorf("received unknown packet from controller: %s", p.Type())
			}
		}
	}
}
