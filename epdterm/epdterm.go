// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epdterm emulates a monochrome e-paper panel on the terminal using
// ANSI color codes.
//
// Useful to develop frame content without wiring up the real display: it
// accepts the same 1-bit-per-pixel packed buffers and image draws as the
// hardware drivers, downscaled to character cells.
package epdterm

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Opts represents the options available for this display.
type Opts struct {
	// Width and Height are the emulated panel geometry in pixels. Width must
	// be a multiple of 8, matching the packed buffer format of the real
	// panels.
	Width  int
	Height int

	// Scale is the edge length in pixels of the square mapped to one
	// terminal cell. Defaults to 8.
	Scale int

	// W receives the rendered frames. Defaults to a colorable stdout.
	W io.Writer

	Palette *ansi256.Palette
}

// Dev is an e-paper panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	bounds  image.Rectangle
	scale   int
	palette ansi256.Palette

	img *image1bit.VerticalLSB
	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("epdterm: invalid geometry %dx%d", opts.Width, opts.Height)
	}
	if opts.Width%8 != 0 {
		return nil, fmt.Errorf("epdterm: width %d is not a multiple of 8", opts.Width)
	}

	scale := opts.Scale
	if scale == 0 {
		scale = 8
	}
	if scale < 1 {
		return nil, fmt.Errorf("epdterm: invalid scale %d", opts.Scale)
	}

	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}

	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}

	bounds := image.Rect(0, 0, opts.Width, opts.Height)
	d := &Dev{
		w:       w,
		bounds:  bounds,
		scale:   scale,
		palette: *p,
		img:     image1bit.NewVerticalLSB(bounds),
	}

	// Panels come up white.
	draw.Src.Draw(d.img, bounds, &image.Uniform{image1bit.On}, image.Point{})

	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("EPDTerm{Width: %d, Height: %d}", d.bounds.Dx(), d.bounds.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// BufferSize returns the length in bytes of a packed frame buffer for the
// emulated geometry.
func (d *Dev) BufferSize() int {
	return d.bounds.Dx() / 8 * d.bounds.Dy()
}

// Write accepts a packed 1-bit-per-pixel frame (row-major, MSB first, set
// bit meaning white) and renders it, mirroring the wire format of the
// hardware drivers.
func (d *Dev) Write(buf []byte) (int, error) {
	if len(buf) != d.BufferSize() {
		return 0, fmt.Errorf("epdterm: frame buffer is %d bytes, want %d", len(buf), d.BufferSize())
	}

	cols := d.bounds.Dx() / 8
	for y := 0; y < d.bounds.Dy(); y++ {
		for x := 0; x < cols; x++ {
			b := buf[y*cols+x]
			for bit := 0; bit < 8; bit++ {
				d.img.SetBit(x*8+bit, y, image1bit.Bit(b&(0x80>>bit) != 0))
			}
		}
	}

	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Src.Draw(d.img, r.Intersect(d.bounds), src, sp)
	return d.refresh()
}

// refresh renders the current frame. Each scale x scale pixel block becomes
// one terminal cell shaded by its share of white pixels.
func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\033[0m")

	for cy := 0; cy < d.bounds.Dy(); cy += d.scale {
		for cx := 0; cx < d.bounds.Dx(); cx += d.scale {
			white, total := 0, 0
			for y := cy; y < cy+d.scale && y < d.bounds.Dy(); y++ {
				for x := cx; x < cx+d.scale && x < d.bounds.Dx(); x++ {
					if d.img.BitAt(x, y) {
						white++
					}
					total++
				}
			}

			v := byte(white * 255 / total)
			c := color.NRGBA{v, v, v, 255}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}

	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
