package main

import (
	"fmt"
	"machine"

	"libdb.so/substrip"
	"libdb.so/substrip/firmware"
	"libdb.so/substrip/ledserial"
	"tinygo.org/x/drivers/ws2812"
)

// Device stores the current state of the device.
type Device struct {
	serial SerialReadWriter
	tx     *firmware.WS2812
	strip  *substrip.Aggregator
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer, ledPin machine.Pin) *Device {
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Device{
		serial: WrapSerial(serial),
		tx:     firmware.NewWS2812(ws2812.New(ledPin)),
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		d.log(fmt.Sprintf("received packet: %s", p.Type()))

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	var numLEDs uint16
	if d.strip != nil {
		numLEDs = uint16(d.strip.Len())
	}
	return ledserial.ReadIncomingPacket(d.serial, ledserial.ReadContext{
		NumLEDs: numLEDs,
	})
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.NumLEDs < 1 {
			return fmt.Errorf("invalid number of LEDs: %d", p.NumLEDs)
		}
		d.strip = substrip.NewAggregator(int(p.NumLEDs), d.tx)
		if err := d.strip.UpdateRGB(nil); err != nil {
			return err
		}

	case ledserial.ClearPacket:
		if d.strip == nil {
			return fmt.Errorf("clear before initialize")
		}
		if err := d.strip.UpdateRGB(substrip.NewLEDs(d.strip.Len())); err != nil {
			return err
		}

	case ledserial.SetPacket:
		if d.strip == nil {
			return fmt.Errorf("set before initialize")
		}
		if err := d.strip.UpdateRGB(substrip.LEDsFromPixels(p.Pix)); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(ledserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}
