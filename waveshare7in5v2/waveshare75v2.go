// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare7in5v2

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3/rpi"
)

// Commands of the UC8179 controller. The opcodes are fixed by the silicon and
// must match the datasheet exactly.
const (
	panelSetting           byte = 0x00
	powerSetting           byte = 0x01
	powerOff               byte = 0x02
	powerOffSequence       byte = 0x03
	powerOn                byte = 0x04
	boosterSoftStart       byte = 0x06
	deepSleep              byte = 0x07
	dataStartTransmission1 byte = 0x10
	dataStop               byte = 0x11
	displayRefresh         byte = 0x12
	dataStartTransmission2 byte = 0x13
	dualSPI                byte = 0x15
	lutVCOM                byte = 0x20
	lutWW                  byte = 0x21
	lutBW                  byte = 0x22
	lutWB                  byte = 0x23
	lutBB                  byte = 0x24
	pllControl             byte = 0x30
	temperatureSensor      byte = 0x40
	vcomDataInterval       byte = 0x50
	tconSetting            byte = 0x60
	resolutionSetting      byte = 0x61
	gateSourceStart        byte = 0x65
	getStatus              byte = 0x71
	vcomDCSetting          byte = 0x82
	partialWindow          byte = 0x90
	partialIn              byte = 0x91
	partialOut             byte = 0x92
)

// ErrTimeout is returned when the busy line does not clear within
// Opts.Timeout. This indicates a non-responsive or miswired panel; the
// controller state is unspecified and the caller should Reset and Init.
var ErrTimeout = errors.New("waveshare7in5v2: timeout waiting for busy to clear")

// ErrDeepSleep is returned when an operation is attempted after Sleep.
// Deep sleep is one-way: only Reset followed by Init wakes the controller.
var ErrDeepSleep = errors.New("waveshare7in5v2: controller is in deep sleep, Reset and Init required")

// ErrNotInitialized is returned when a frame operation is attempted before
// Init has completed.
var ErrNotInitialized = errors.New("waveshare7in5v2: controller not initialized")

// RefreshMode selects the waveform set applied during a refresh.
type RefreshMode uint8

const (
	// Full refreshes drive every pixel through the complete waveform. The
	// panel flashes but no ghost of the previous image remains. Takes on the
	// order of seconds.
	Full RefreshMode = iota
	// Partial refreshes only drive changed pixels with a reduced waveform.
	// Fast and visually quiet, but residual charge accumulates; interleave
	// full refreshes during long runs.
	Partial
)

// Opts holds the display configuration. It is fixed at construction.
type Opts struct {
	Width  int
	Height int

	// FullRefresh and PartialRefresh are the waveform sets loaded into the
	// controller for the two refresh types.
	FullRefresh    LUTSet
	PartialRefresh LUTSet

	// Timeout bounds every busy wait. Refreshes on this panel class take a
	// few seconds; the zero value selects 30 seconds.
	Timeout time.Duration
}

// EPD7in5v2 contains the display configuration for the Waveshare 7.5 inch
// e-paper V2 panel.
var EPD7in5v2 = Opts{
	Width:          800,
	Height:         480,
	FullRefresh:    fullRefreshLUT,
	PartialRefresh: partialRefreshLUT,
}

const defaultTimeout = 30 * time.Second

// BufferSize returns the length in bytes of a frame buffer for this
// geometry: one bit per pixel, 8 pixels per byte, row-major, MSB first.
func (o *Opts) BufferSize() int {
	return o.Width / 8 * o.Height
}

type devState uint8

const (
	stateUninitialized devState = iota
	stateFullReady
	statePartialReady
	stateAsleep
)

// Dev is a handle to the display controller. It is the sole owner of the
// panel: the panel is a single stateful resource and methods must not be
// called concurrently.
type Dev struct {
	c conn.Conn

	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	opts  *Opts
	state devState
}

// New creates a handle to the display controller. No panel I/O happens until
// Init is called.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("waveshare7in5v2: invalid geometry %dx%d", opts.Width, opts.Height)
	}
	if opts.Width%8 != 0 {
		return nil, fmt.Errorf("waveshare7in5v2: width %d is not a multiple of 8", opts.Width)
	}
	if err := opts.FullRefresh.validate(); err != nil {
		return nil, err
	}
	if err := opts.PartialRefresh.validate(); err != nil {
		return nil, err
	}
	if opts.Timeout == 0 {
		o := *opts
		o.Timeout = defaultTimeout
		opts = &o
	}

	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, err
	}

	return &Dev{
		c:    c,
		dc:   dc,
		cs:   cs,
		rst:  rst,
		busy: busy,
		opts: opts,
	}, nil
}

// NewHat creates a handle using the default Waveshare HAT wiring on a
// Raspberry Pi.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, opts)
}

// Init powers the controller on and programs the panel registers and the
// full-refresh waveform tables. It must be called once after construction
// and again after Sleep. On success the panel is ready to accept a frame.
func (d *Dev) Init() error {
	if err := d.Reset(); err != nil {
		return err
	}

	eh := errorHandler{d: d}
	initDisplay(&eh, d.opts)

	if eh.err != nil {
		return eh.err
	}

	d.state = stateFullReady
	return nil
}

// Reset pulses the hardware reset line. It is idempotent and is the only way
// to wake the controller from deep sleep; Init must follow before any frame
// operation.
func (d *Dev) Reset() error {
	eh := errorHandler{d: d}

	eh.rstOut(gpio.High)
	time.Sleep(20 * time.Millisecond)
	eh.rstOut(gpio.Low)
	time.Sleep(2 * time.Millisecond)
	eh.rstOut(gpio.High)
	time.Sleep(20 * time.Millisecond)

	if eh.err != nil {
		return eh.err
	}

	d.state = stateUninitialized
	return nil
}

// checkFrame validates that the controller accepts frame operations and that
// every supplied buffer matches the panel geometry. Nothing is transmitted
// when validation fails.
func (d *Dev) checkFrame(bufs ...[]byte) error {
	switch d.state {
	case stateUninitialized:
		return ErrNotInitialized
	case stateAsleep:
		return ErrDeepSleep
	}

	want := d.opts.BufferSize()
	for _, buf := range bufs {
		if len(buf) != want {
			return fmt.Errorf("waveshare7in5v2: frame buffer is %d bytes, want %d", len(buf), want)
		}
	}
	return nil
}

// setMode reloads the waveform tables when the requested refresh type does
// not match the set currently programmed. Mixing waveform sets within one
// sequence corrupts the refresh, so this must happen before any frame data
// is sent.
func (d *Dev) setMode(eh *errorHandler, mode RefreshMode) {
	switch {
	case mode == Full && d.state != stateFullReady:
		configRefreshMode(eh, Full, d.opts)
		if eh.err == nil {
			d.state = stateFullReady
		}
	case mode == Partial && d.state != statePartialReady:
		configRefreshMode(eh, Partial, d.opts)
		if eh.err == nil {
			d.state = statePartialReady
		}
	}
}

// DisplayFrame uploads a full frame and refreshes the panel with the
// full-refresh waveform set, reloading it first if the previous operation
// used partial waveforms. buf must be exactly BufferSize() bytes, 1 bit per
// pixel, MSB first, bit set meaning white. The buffer is not retained.
func (d *Dev) DisplayFrame(buf []byte) error {
	if err := d.checkFrame(buf); err != nil {
		return err
	}

	eh := errorHandler{d: d}
	d.setMode(&eh, Full)
	displayFrame(&eh, buf)

	return eh.err
}

// DisplayFramePartial refreshes the panel using the partial-refresh waveform
// set, switching to it first if needed. prev must hold the frame currently on
// the panel and next the frame to show; the controller only drives pixels
// that differ between the two. Both buffers must be exactly BufferSize()
// bytes and are not retained.
func (d *Dev) DisplayFramePartial(prev, next []byte) error {
	if err := d.checkFrame(prev, next); err != nil {
		return err
	}

	eh := errorHandler{d: d}
	d.setMode(&eh, Partial)
	displayFramePartial(&eh, d.opts, prev, next)

	return eh.err
}

// Clear paints the whole panel white through a full refresh.
func (d *Dev) Clear() error {
	return d.DisplayFrame(bytes.Repeat([]byte{0xFF}, d.opts.BufferSize()))
}

// Sleep cuts the charge pump and puts the controller into deep sleep with
// zero power draw. The panel keeps its last image. This is one-way: every
// operation except Reset and Init fails with ErrDeepSleep afterwards.
func (d *Dev) Sleep() error {
	switch d.state {
	case stateUninitialized:
		return ErrNotInitialized
	case stateAsleep:
		return ErrDeepSleep
	}

	eh := errorHandler{d: d}
	sleepDisplay(&eh)

	if eh.err != nil {
		return eh.err
	}

	d.state = stateAsleep
	return nil
}

// Bounds returns the panel dimensions.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.opts.Width, d.opts.Height)
}

// ColorModel returns a 1-bit color model.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Draw packs the given image into a frame buffer and displays it through the
// full-refresh path.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	return d.DisplayFrame(packImage(d.Bounds(), dstRect, src, srcPts))
}

// Halt clears the display.
func (d *Dev) Halt() error {
	return d.Clear()
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	return fmt.Sprintf("epd.Dev{%s, %s, Width: %d, Height: %d}", d.c, d.dc, d.opts.Width, d.opts.Height)
}

var _ display.Drawer = &Dev{}
