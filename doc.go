// Package apa102gpio drives APA102 and SK9822 addressable LED strips by
// bit-banging two GPIO lines, with an optional hardware SPI transport.
//
// The chips have no timing requirement beyond ordering: data is sampled on
// rising clock edges, so the frame can be clocked out at whatever rate the
// pin backend achieves. That makes the strip drivable from any two outputs
// of any board periph.io supports, no SPI peripheral required.
//
// # Chip Characteristics
//
// - 24-bit color (8 bits per channel) plus a 5-bit global brightness per LED
// - Two-wire clocked protocol: data and clock, unidirectional, no ack
// - Each chip relays the stream to the next with a one clock edge delay
// - SK9822 is a drop-in APA102 revision with a stricter latch condition
//
// # Hardware Connection
//
//	Strip Pin → System Pin
//	GND       → GND
//	VCC       → 5V (do not power long strips from the board)
//	CI/CLK    → any GPIO output (or SPI SCLK)
//	DI/DATA   → any GPIO output (or SPI MOSI)
//
// A 3.3V board driving a 5V strip usually works; add a level shifter if
// the first LED misbehaves.
//
// # Wire Format
//
// One frame updating count LEDs is:
//
//	4 × 0x00                         start marker
//	per LED: 0xE0|brightness, B, G, R
//	0xFF                             end marker
//	(5 + count/16) × 0x00            end padding
//
// Bytes go out MSB first. The end padding is sized for the chain length:
// every chip delays the stream by one edge, and the SK9822 wants 32 zero
// bits plus a rising edge before it latches. The formula over-approximates
// both on purpose; see Dev.EndFrame.
//
// Brightness is 5-bit. Values above 31 are truncated to their low 5 bits,
// not clamped: a brightness of 32 means 0, not 31.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/devices/v3/apa102gpio"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//
//		dev, err := apa102gpio.New(gpioreg.ByName("GPIO23"), gpioreg.ByName("GPIO24"), nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		colors := make([]apa102gpio.RGB, 30)
//		for i := range colors {
//			colors[i] = apa102gpio.RGB{R: 255}
//		}
//		if err := dev.Write(colors, apa102gpio.MaxBrightness); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Using a Hardware SPI Port
//
// The protocol is SPI Mode0 on the wire, so a hardware port produces the
// identical byte stream much faster:
//
//	b, _ := spireg.Open("")
//	dev, _ := apa102gpio.NewSPI(b, &apa102gpio.Opts{
//		NumPixels: 60,
//		Freq:      20 * physic.MegaHertz,
//	})
//
// Both device types implement the Strip interface, so code that only
// writes frames does not care which transport is underneath.
//
// # Low-Level Streaming Interface
//
// Write materializes nothing; it is exactly
//
//	dev.BeginFrame()
//	for each color: dev.SendColor(color, brightness)
//	dev.EndFrame(count)
//
// and those three methods are exported on Dev so colors can be sent as
// they are computed instead of being stored in a slice first. The call
// sequence is a caller contract: there is no sequencing check, and an
// out-of-order call simply puts a malformed frame on the wire.
//
// Because of the 0xFF end marker, partial updates of the start of a strip
// are not possible: the LED after the last one written goes black.
//
// # Sharing a Clock Line
//
// After every frame both lines are outputs driving low. Multiple devices
// on separate data lines can therefore share one clock line: writing to
// one strip clocks zero bits into the others, which their chips ignore as
// start-marker continuation until a real frame arrives.
//
// A frame must not be interleaved with anything else touching the same
// pins. The package does no locking; exclusive ownership of the two lines
// for the duration of a Write is the caller's responsibility.
//
// # Compatibility with periph.io
//
// Dev and SPIDev implement the display.Drawer interface, modelling the
// strip as a NumPixels×1 image:
// https://pkg.go.dev/periph.io/x/conn/v3/display
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/product-files/2343/APA102C.pdf
package apa102gpio
