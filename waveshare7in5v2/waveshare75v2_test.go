// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare7in5v2

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"
)

// testDev builds a Dev over a recording SPI port and test pins. The busy pin
// level controls whether waitUntilIdle sees the panel as idle.
func testDev(t *testing.T, opts *Opts, busyLevel gpio.Level) (*Dev, *spitest.Record) {
	t.Helper()

	port := &spitest.Record{}
	busy := &gpiotest.Pin{N: "BUSY", L: busyLevel}

	dev, err := New(port, &gpiotest.Pin{N: "DC"}, &gpiotest.Pin{N: "CS"}, &gpiotest.Pin{N: "RST"}, busy, opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	return dev, port
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		name       string
		opts       Opts
		wantErr    string
		wantBounds image.Rectangle
	}{
		{
			name:       "epd7in5v2",
			opts:       EPD7in5v2,
			wantBounds: image.Rect(0, 0, 800, 480),
		},
		{
			name: "width not a multiple of 8",
			opts: Opts{
				Width:          799,
				Height:         480,
				FullRefresh:    fullRefreshLUT,
				PartialRefresh: partialRefreshLUT,
			},
			wantErr: "not a multiple of 8",
		},
		{
			name:    "empty geometry",
			opts:    Opts{},
			wantErr: "invalid geometry",
		},
		{
			name: "truncated LUT",
			opts: Opts{
				Width:  800,
				Height: 480,
				FullRefresh: LUTSet{
					VCOM: bytes.Repeat([]byte{0}, lutLength-1),
					WW:   bytes.Repeat([]byte{0}, lutLength),
					BW:   bytes.Repeat([]byte{0}, lutLength),
					WB:   bytes.Repeat([]byte{0}, lutLength),
					BB:   bytes.Repeat([]byte{0}, lutLength),
				},
				PartialRefresh: partialRefreshLUT,
			},
			wantErr: "VCOM LUT",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dev, err := New(&spitest.Playback{}, &gpiotest.Pin{}, &gpiotest.Pin{}, &gpiotest.Pin{}, &gpiotest.Pin{}, &tc.opts)

			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("New() = %v, want error containing %q", err, tc.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}

			if diff := cmp.Diff(dev.Bounds(), tc.wantBounds); diff != "" {
				t.Errorf("Bounds() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestBufferSize(t *testing.T) {
	for _, tc := range []struct {
		width, height int
		want          int
	}{
		{width: 800, height: 480, want: 48000},
		{width: 8, height: 1, want: 1},
		{width: 128, height: 250, want: 4000},
		{width: 880, height: 528, want: 58080},
	} {
		opts := Opts{Width: tc.width, Height: tc.height}
		if got := opts.BufferSize(); got != tc.want {
			t.Errorf("BufferSize() for %dx%d = %d, want %d", tc.width, tc.height, got, tc.want)
		}
	}
}

func TestDisplayFrameValidation(t *testing.T) {
	opts := EPD7in5v2
	dev, port := testDev(t, &opts, gpio.High)

	if err := dev.DisplayFrame(make([]byte, opts.BufferSize())); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("DisplayFrame() before Init = %v, want ErrNotInitialized", err)
	}

	dev.state = stateFullReady

	if err := dev.DisplayFrame(make([]byte, opts.BufferSize()-1)); err == nil || !strings.Contains(err.Error(), "want 48000") {
		t.Errorf("DisplayFrame() with short buffer = %v, want buffer size error", err)
	}

	if err := dev.DisplayFramePartial(make([]byte, opts.BufferSize()), nil); err == nil || !strings.Contains(err.Error(), "want 48000") {
		t.Errorf("DisplayFramePartial() with nil buffer = %v, want buffer size error", err)
	}

	// Validation failures must not transmit anything.
	if len(port.Ops) != 0 {
		t.Errorf("rejected frames caused %d bus operations, want 0", len(port.Ops))
	}
}

func TestSleepTransitions(t *testing.T) {
	opts := EPD7in5v2
	dev, _ := testDev(t, &opts, gpio.High)

	if err := dev.Sleep(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Sleep() before Init = %v, want ErrNotInitialized", err)
	}

	dev.state = stateFullReady

	if err := dev.Sleep(); err != nil {
		t.Fatalf("Sleep() failed: %v", err)
	}

	for name, op := range map[string]func() error{
		"DisplayFrame": func() error { return dev.DisplayFrame(make([]byte, opts.BufferSize())) },
		"Clear":        func() error { return dev.Clear() },
		"Sleep":        func() error { return dev.Sleep() },
	} {
		if err := op(); !errors.Is(err, ErrDeepSleep) {
			t.Errorf("%s() after Sleep() = %v, want ErrDeepSleep", name, err)
		}
	}

	// Reset wakes the controller but Init is still required.
	if err := dev.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}

	if err := dev.DisplayFrame(make([]byte, opts.BufferSize())); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("DisplayFrame() after Reset = %v, want ErrNotInitialized", err)
	}
}

func TestWaitUntilIdle(t *testing.T) {
	t.Run("idle", func(t *testing.T) {
		opts := EPD7in5v2
		dev, _ := testDev(t, &opts, gpio.High)

		eh := errorHandler{d: dev}
		eh.waitUntilIdle()

		if eh.err != nil {
			t.Errorf("waitUntilIdle() with idle panel = %v, want nil", eh.err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		opts := EPD7in5v2
		opts.Timeout = 50 * time.Millisecond
		dev, _ := testDev(t, &opts, gpio.Low)

		start := time.Now()

		eh := errorHandler{d: dev}
		eh.waitUntilIdle()

		if !errors.Is(eh.err, ErrTimeout) {
			t.Errorf("waitUntilIdle() with stuck panel = %v, want ErrTimeout", eh.err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("waitUntilIdle() blocked for %v, want a bounded wait", elapsed)
		}
	})
}

func TestCommandDataFraming(t *testing.T) {
	port := &spitest.Record{}
	dc := &gpiotest.Pin{N: "DC"}
	cs := &gpiotest.Pin{N: "CS", L: gpio.High}
	busy := &gpiotest.Pin{N: "BUSY", L: gpio.High}

	opts := EPD7in5v2
	dev, err := New(port, dc, cs, &gpiotest.Pin{N: "RST"}, busy, &opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	eh := errorHandler{d: dev}

	eh.sendCommand(displayRefresh)
	if eh.err != nil {
		t.Fatalf("sendCommand() failed: %v", eh.err)
	}
	if dc.L != gpio.Low {
		t.Errorf("after sendCommand() dc = %v, want Low", dc.L)
	}
	if cs.L != gpio.High {
		t.Errorf("after sendCommand() cs = %v, want deasserted (High)", cs.L)
	}

	eh.sendData([]byte{0xAA, 0x55})
	if eh.err != nil {
		t.Fatalf("sendData() failed: %v", eh.err)
	}
	if dc.L != gpio.High {
		t.Errorf("after sendData() dc = %v, want High", dc.L)
	}
	if cs.L != gpio.High {
		t.Errorf("after sendData() cs = %v, want deasserted (High)", cs.L)
	}

	want := []conntest.IO{
		{W: []byte{displayRefresh}},
		{W: []byte{0xAA, 0x55}},
	}
	if diff := cmp.Diff(port.Ops, want); diff != "" {
		t.Errorf("bus operations difference (-got +want):\n%s", diff)
	}
}

// commandIndex returns the position of the first single-byte write of cmd in
// the recorded bus operations, or -1.
func commandIndex(ops []conntest.IO, cmd byte) int {
	for i, op := range ops {
		if len(op.W) == 1 && op.W[0] == cmd {
			return i
		}
	}
	return -1
}

func TestAutoModeSwitch(t *testing.T) {
	opts := Opts{
		Width:          8,
		Height:         2,
		FullRefresh:    fullRefreshLUT,
		PartialRefresh: partialRefreshLUT,
	}
	dev, port := testDev(t, &opts, gpio.High)
	dev.state = stateFullReady

	buf := make([]byte, opts.BufferSize())

	// The first partial call must reload the partial waveform set before any
	// partial command reaches the controller.
	if err := dev.DisplayFramePartial(buf, buf); err != nil {
		t.Fatalf("DisplayFramePartial() failed: %v", err)
	}

	lut := commandIndex(port.Ops, lutVCOM)
	pin := commandIndex(port.Ops, partialIn)
	if lut == -1 || pin == -1 || lut > pin {
		t.Errorf("first partial refresh: lutVCOM at %d, partialIn at %d, want LUT load before partialIn", lut, pin)
	}

	// A second partial call keeps the loaded set.
	port.Ops = nil
	if err := dev.DisplayFramePartial(buf, buf); err != nil {
		t.Fatalf("DisplayFramePartial() failed: %v", err)
	}
	if i := commandIndex(port.Ops, lutVCOM); i != -1 {
		t.Errorf("second partial refresh reloaded the waveform set at %d, want no reload", i)
	}

	// Going back to a full refresh reloads the full set.
	if err := dev.DisplayFrame(buf); err != nil {
		t.Fatalf("DisplayFrame() failed: %v", err)
	}
	if i := commandIndex(port.Ops, vcomDataInterval); i == -1 {
		t.Error("full refresh after partial did not reprogram the data interval")
	}
}

func TestClearMatchesWhiteFrame(t *testing.T) {
	opts := EPD7in5v2

	clearDev, clearPort := testDev(t, &opts, gpio.High)
	clearDev.state = stateFullReady
	if err := clearDev.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	frameDev, framePort := testDev(t, &opts, gpio.High)
	frameDev.state = stateFullReady
	white := bytes.Repeat([]byte{0xFF}, opts.BufferSize())
	if err := frameDev.DisplayFrame(white); err != nil {
		t.Fatalf("DisplayFrame() failed: %v", err)
	}

	if diff := cmp.Diff(clearPort.Ops, framePort.Ops); diff != "" {
		t.Errorf("Clear() and DisplayFrame(white) command sequences differ (-clear +frame):\n%s", diff)
	}
}

func TestString(t *testing.T) {
	dev, err := New(&spitest.Playback{}, &gpiotest.Pin{}, &gpiotest.Pin{}, &gpiotest.Pin{}, &gpiotest.Pin{}, &EPD7in5v2)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	want := "epd.Dev{playback, (0), Width: 800, Height: 480}"
	if diff := cmp.Diff(dev.String(), want); diff != "" {
		t.Errorf("String() difference (-got +want):\n%s", diff)
	}
}
