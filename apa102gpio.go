// Package apa102gpio drives APA102/SK9822 LED strips by bit-banging a
// clock and a data GPIO line.
//
// See doc.go for the wire protocol and the examples for how to use this
// package.
package apa102gpio

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// MaxBrightness is the highest global brightness the chip accepts.
//
// Brightness is a 5-bit value; larger values are truncated to their low 5
// bits, not clamped.
const MaxBrightness = 31

// RGB is the color of one LED. Each channel is between 0 and 255.
type RGB struct {
	R, G, B uint8
}

// Strip is a write-only handle to an APA102 strip, independent of the
// transport driving it.
//
// Only the frame-level Write is part of the interface; the byte-level
// operations (BeginFrame, SendColor, EndFrame) stay on the concrete types
// so the streaming path is never behind dynamic dispatch.
type Strip interface {
	// Write updates the first len(colors) LEDs of the chain with the given
	// 5-bit global brightness.
	Write(colors []RGB, brightness uint8) error
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	NumPixels:  30,
	Brightness: MaxBrightness,
	Freq:       10 * physic.MegaHertz,
}

// Opts is the configuration for the strip.
type Opts struct {
	// NumPixels is the number of LEDs in the chain. It sizes Bounds, Draw
	// and Halt; Write always sends exactly len(colors) LEDs regardless.
	NumPixels int

	// Brightness is the 5-bit global brightness used by Draw and Halt.
	Brightness uint8

	// Freq is the SPI clock rate, used by NewSPI only. Bit-banged devices
	// clock as fast as the pin backend allows.
	Freq physic.Frequency
}

// New returns a Dev driving an APA102/SK9822 chain through two GPIO
// lines.
//
// Both pins must be valid outputs. opts can be nil to use DefaultOpts.
func New(data, clk gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if data == nil || clk == nil {
		return nil, errors.New("apa102gpio: both data and clock pins are required")
	}
	if opts.NumPixels <= 0 {
		return nil, errors.New("apa102gpio: number of pixels must be positive")
	}
	return &Dev{
		data:       data,
		clk:        clk,
		brightness: opts.Brightness,
		pixels:     make([]RGB, opts.NumPixels),
	}, nil
}

// Dev is the device handle for a bit-banged strip.
type Dev struct {
	// Bus lines
	data gpio.PinOut
	clk  gpio.PinOut

	// Defaults for the display.Drawer surface
	brightness uint8
	pixels     []RGB
}

// Write sends one complete frame: the start marker, one encoded color per
// element of colors in order, then the end padding sized for len(colors)
// LEDs.
//
// An empty colors slice is valid; it produces a start frame and minimal
// end padding, updating no LEDs. After Write returns both lines are
// outputs driving low, so several strips can share one clock line.
//
// Write itself cannot fail; any returned error comes from the underlying
// pins. A pin error mid-frame leaves the chain with a malformed frame
// which the next successful Write corrects.
func (d *Dev) Write(colors []RGB, brightness uint8) error {
	if err := d.BeginFrame(); err != nil {
		return err
	}
	for _, c := range colors {
		if err := d.SendColor(c, brightness); err != nil {
			return err
		}
	}
	return d.EndFrame(len(colors))
}

// BeginFrame configures both lines as outputs driving low and sends the
// four zero "start frame" bytes that let the first chip find the start of
// a transmission.
//
// This is part of the low-level streaming interface: call BeginFrame
// once, then SendColor for each LED as its color is computed, then
// EndFrame with the number of LEDs sent. Any other call sequence puts a
// malformed frame on the wire; there is no detection, the chips simply
// display wrong colors until the next good frame.
func (d *Dev) BeginFrame() error {
	if err := d.data.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.clk.Out(gpio.Low); err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		if err := d.transfer(0x00); err != nil {
			return err
		}
	}
	return nil
}

// SendColor sends the 4-byte frame for one LED: the brightness marker,
// then blue, green and red. The wire wants B, G, R order.
//
// Only the low 5 bits of brightness are used; larger values are truncated,
// not clamped.
func (d *Dev) SendColor(c RGB, brightness uint8) error {
	if err := d.transfer(0xE0 | brightness&0x1F); err != nil {
		return err
	}
	if err := d.transfer(c.B); err != nil {
		return err
	}
	if err := d.transfer(c.G); err != nil {
		return err
	}
	return d.transfer(c.R)
}

// EndFrame sends the end-of-frame padding for a chain of count LEDs. This
// is the last step of the low-level streaming interface.
//
// Each chip delays the stream by one clock edge, so the last of count
// chips needs at least count-1 extra edges after its data before it has
// seen all of it. The SK9822 revision additionally latches only after 32
// zero bits followed by one more rising edge; the 0xFF byte sent first
// makes that independent of the last LED's color. One 0xFF byte plus
// 5+count/16 zero bytes covers both chips for any practical chain length.
// The formula is an over-approximation kept bit-for-bit so the wire
// output stays identical across installations; do not tighten it against
// the datasheet.
func (d *Dev) EndFrame(count int) error {
	if err := d.transfer(0xFF); err != nil {
		return err
	}
	for i := 0; i < 5+count/16; i++ {
		if err := d.transfer(0x00); err != nil {
			return err
		}
	}
	return nil
}

// transfer clocks one byte out MSB first. The data line is set before
// each rising edge and the clock idles low, so a receiver sampling on
// rising edges sees a stable bit.
func (d *Dev) transfer(b byte) error {
	for i := 7; i >= 0; i-- {
		if err := d.data.Out(gpio.Level(b>>i&1 != 0)); err != nil {
			return err
		}
		if err := d.clk.Out(gpio.High); err != nil {
			return err
		}
		if err := d.clk.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

// ColorModel returns the color model of the strip.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds returns the strip as a NumPixels wide, 1 pixel high image.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, len(d.pixels), 1)
}

// Draw draws the first row of src onto the strip at the device
// brightness.
//
// The chain always receives a full frame; LEDs outside the drawn region
// keep the color of the previous Draw. The alpha channel is ignored.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if !rasterRow(d.pixels, d.Bounds(), r, src, sp) {
		return nil
	}
	return d.Write(d.pixels, d.brightness)
}

// Halt turns every LED off.
func (d *Dev) Halt() error {
	for i := range d.pixels {
		d.pixels[i] = RGB{}
	}
	return d.Write(d.pixels, 0)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("apa102gpio.Dev{%s, %s, %d LEDs}", d.data, d.clk, len(d.pixels))
}

// frameLen returns the total frame size in bytes for a chain of count
// LEDs: start marker, 4 bytes per LED, the 0xFF end marker and the
// trailing zero padding.
func frameLen(count int) int {
	return 4 + 4*count + 1 + 5 + count/16
}

// rasterFrame encodes a complete frame into buf, which must be
// frameLen(len(colors)) bytes. The byte sequence is identical to what the
// bit-banged path streams.
func rasterFrame(buf []byte, colors []RGB, brightness uint8) {
	for i := range buf {
		buf[i] = 0x00
	}
	i := 4
	for _, c := range colors {
		buf[i] = 0xE0 | brightness&0x1F
		buf[i+1] = c.B
		buf[i+2] = c.G
		buf[i+3] = c.R
		i += 4
	}
	buf[i] = 0xFF
}

// rasterRow converts the first row of src, clipped to r within bounds,
// into per-LED colors. It reports whether any pixel was touched.
func rasterRow(pixels []RGB, bounds, r image.Rectangle, src image.Image, sp image.Point) bool {
	r = r.Intersect(bounds)
	if r.Empty() {
		return false
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		c := color.NRGBAModel.Convert(src.At(sp.X+x-r.Min.X, sp.Y)).(color.NRGBA)
		pixels[x] = RGB{R: c.R, G: c.G, B: c.B}
	}
	return true
}

var _ Strip = &Dev{}
var _ display.Drawer = &Dev{}
