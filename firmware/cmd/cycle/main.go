package main

import (
	"machine"
	"time"

	"libdb.so/substrip"
	"libdb.so/substrip/firmware"
	"tinygo.org/x/drivers/ws2812"
)

var cycles = []substrip.RGBColor{
	{10, 150, 204},
	{255, 255, 255},
	{255, 94, 155},
}

func main() {
	machine.GPIO27.Configure(machine.PinConfig{Mode: machine.PinOutput})

	strip := substrip.NewAggregator(firmware.NumLEDs, firmware.NewWS2812(ws2812.New(machine.GPIO27)))
	back := substrip.NewView(strip, firmware.Points(firmware.BackLEDs), nil)
	side := substrip.NewView(strip, firmware.Points(firmware.SideLEDs), nil)

	backPixels := substrip.NewLEDs(back.Len())
	sidePixels := substrip.NewLEDs(side.Len())
	var cycle int

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		current := cycles[cycle]
		cycle = (cycle + 1) % len(cycles)

		backPixels.SetRange(0, len(backPixels), current)
		if err := back.UpdateRGB(backPixels); err != nil {
			println("failed to update back LEDs:", err.Error())
			continue
		}
		if err := side.UpdateRGB(sidePixels); err != nil {
			println("failed to update side LEDs:", err.Error())
		}
	}
}
