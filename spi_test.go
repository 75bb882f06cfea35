package apa102gpio

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestNewSPIOpts(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil opts (uses defaults)", nil, false},
		{"valid", &Opts{NumPixels: 60, Freq: 20 * physic.MegaHertz}, false},
		{"zero frequency falls back to default", &Opts{NumPixels: 8}, false},
		{"zero pixels", &Opts{NumPixels: 0}, true},
		{"negative pixels", &Opts{NumPixels: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytes.Buffer{}
			d, err := NewSPI(spitest.NewRecordRaw(&buf), tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}

func TestSPIWriteEmpty(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPI(spitest.NewRecordRaw(&buf), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(nil, MaxBrightness); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 0, 0xFF, 0, 0, 0, 0, 0}
	assert.Equal(t, want, buf.Bytes())
}

func TestSPIWriteOneLED(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPI(spitest.NewRecordRaw(&buf), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write([]RGB{{R: 0x11, G: 0x22, B: 0x33}}, 20); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0, 0, 0, 0,
		0xF4, 0x33, 0x22, 0x11,
		0xFF, 0, 0, 0, 0, 0,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestSPIWriteBrightnessTruncation(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPI(spitest.NewRecordRaw(&buf), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write([]RGB{{}}, 53); err != nil {
		t.Fatal(err)
	}
	// 53 & 0x1F = 21, not a clamp to 31.
	assert.Equal(t, byte(0xF5), buf.Bytes()[4])
}

// TestSPIWriteMatchesGPIO pins both transports to the identical byte
// sequence.
func TestSPIWriteMatchesGPIO(t *testing.T) {
	colors := []RGB{{R: 1, G: 2, B: 3}, {R: 250, G: 251, B: 252}, {}}

	gd, w := testDev(t, nil)
	if err := gd.Write(colors, 9); err != nil {
		t.Fatal(err)
	}

	buf := bytes.Buffer{}
	sd, err := NewSPI(spitest.NewRecordRaw(&buf), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := sd.Write(colors, 9); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, w.bytes(t), buf.Bytes())
}

func TestSPIWriteReusesBuffer(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPI(spitest.NewRecordRaw(&buf), nil)
	if err != nil {
		t.Fatal(err)
	}
	colors := make([]RGB, 20)
	if err := d.Write(colors, MaxBrightness); err != nil {
		t.Fatal(err)
	}
	buf.Reset()

	// A shorter frame must not leak trailing bytes from the longer one.
	if err := d.Write(colors[:1], MaxBrightness); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0, 0, 0, 0,
		0xFF, 0, 0, 0,
		0xFF, 0, 0, 0, 0, 0,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestSPIDraw(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPI(spitest.NewRecordRaw(&buf), &Opts{NumPixels: 2, Brightness: 20})
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})

	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0, 0, 0, 0,
		0xF4, 0, 0, 255,
		0xF4, 255, 0, 0,
		0xFF, 0, 0, 0, 0, 0,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestSPIHalt(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPI(spitest.NewRecordRaw(&buf), &Opts{NumPixels: 2, Brightness: MaxBrightness})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0, 0, 0, 0,
		0xE0, 0, 0, 0,
		0xE0, 0, 0, 0,
		0xFF, 0, 0, 0, 0, 0,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestSPIBounds(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPI(spitest.NewRecordRaw(&buf), &Opts{NumPixels: 144})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, image.Rect(0, 0, 144, 1), d.Bounds())
	assert.Equal(t, color.NRGBAModel, d.ColorModel())
}

func TestSPIWriteTxError(t *testing.T) {
	// A playback port with no queued operations fails every Tx.
	p := &spitest.Playback{
		Playback: conntest.Playback{DontPanic: true},
	}
	d, err := NewSPI(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	assert.Error(t, d.Write([]RGB{{R: 1}}, MaxBrightness))
}
