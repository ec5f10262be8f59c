package main

import "machine"

func main() {
	machine.Serial.Configure(machine.UARTConfig{})
	NewDevice(machine.Serial, machine.D10).Run()
}
