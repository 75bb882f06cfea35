package apa102gpio

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/spi"
)

// NewSPI returns an SPIDev driving an APA102/SK9822 chain through a
// hardware SPI port.
//
// The APA102 wire protocol is plain SPI Mode0 (clock idle low, data
// sampled on the rising edge), so a hardware port produces the exact same
// byte sequence as the bit-banged path, only faster. The chip select line
// is unused; the start and end markers frame the transmission instead.
//
// opts can be nil to use DefaultOpts. Opts.Freq selects the clock rate;
// the chips are rated well above DefaultOpts' 10MHz, so raise it if the
// wiring is short and clean.
func NewSPI(p spi.Port, opts *Opts) (*SPIDev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.NumPixels <= 0 {
		return nil, errors.New("apa102gpio: number of pixels must be positive")
	}
	f := opts.Freq
	if f == 0 {
		f = DefaultOpts.Freq
	}
	c, err := p.Connect(f, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	return &SPIDev{
		c:          c,
		brightness: opts.Brightness,
		pixels:     make([]RGB, opts.NumPixels),
	}, nil
}

// SPIDev is the device handle for a strip on a hardware SPI port.
type SPIDev struct {
	c conn.Conn

	// Defaults for the display.Drawer surface
	brightness uint8
	pixels     []RGB

	// Scratch Tx buffer, regrown as needed
	buf []byte
}

// Write sends one complete frame in a single SPI transfer. The frame
// bytes are identical to what Dev.Write streams: start marker, one 4-byte
// color frame per LED, 0xFF end marker and 5+len(colors)/16 zero bytes.
//
// An empty colors slice is valid and updates no LEDs.
func (d *SPIDev) Write(colors []RGB, brightness uint8) error {
	n := frameLen(len(colors))
	if cap(d.buf) < n {
		d.buf = make([]byte, n)
	}
	buf := d.buf[:n]
	rasterFrame(buf, colors, brightness)
	return d.c.Tx(buf, nil)
}

// ColorModel returns the color model of the strip.
func (d *SPIDev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds returns the strip as a NumPixels wide, 1 pixel high image.
func (d *SPIDev) Bounds() image.Rectangle {
	return image.Rect(0, 0, len(d.pixels), 1)
}

// Draw draws the first row of src onto the strip at the device
// brightness.
func (d *SPIDev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if !rasterRow(d.pixels, d.Bounds(), r, src, sp) {
		return nil
	}
	return d.Write(d.pixels, d.brightness)
}

// Halt turns every LED off.
func (d *SPIDev) Halt() error {
	for i := range d.pixels {
		d.pixels[i] = RGB{}
	}
	return d.Write(d.pixels, 0)
}

// String returns a string representation of the device.
func (d *SPIDev) String() string {
	return fmt.Sprintf("apa102gpio.SPIDev{%s, %d LEDs}", d.c, len(d.pixels))
}

var _ Strip = &SPIDev{}
var _ display.Drawer = &SPIDev{}
