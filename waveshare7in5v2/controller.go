// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare7in5v2

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	sendByte(byte)
	waitUntilIdle()
}

// initDisplay powers the controller up and programs the panel registers.
// The caller must have pulsed the hardware reset line immediately before.
func initDisplay(ctrl controller, opts *Opts) {
	ctrl.waitUntilIdle()

	ctrl.sendCommand(powerSetting)
	// VGH=20V, VGL=-20V, VDH=15V, VDL=-15V
	ctrl.sendData([]byte{0x07, 0x07, 0x3F, 0x3F})

	ctrl.sendCommand(boosterSoftStart)
	ctrl.sendData([]byte{0x17, 0x17, 0x28, 0x17})

	// The charge pump needs to ramp up before any further register access.
	ctrl.sendCommand(powerOn)
	ctrl.waitUntilIdle()

	ctrl.sendCommand(panelSetting)
	// KW mode, LUT from register, scan up, shift right, booster on
	ctrl.sendByte(0x3F)

	ctrl.sendCommand(pllControl)
	ctrl.sendByte(0x06)

	ctrl.sendCommand(resolutionSetting)
	ctrl.sendData([]byte{
		byte(opts.Width >> 8),
		byte(opts.Width & 0xFF),
		byte(opts.Height >> 8),
		byte(opts.Height & 0xFF),
	})

	ctrl.sendCommand(dualSPI)
	ctrl.sendByte(0x00)

	ctrl.sendCommand(tconSetting)
	ctrl.sendByte(0x22)

	ctrl.sendCommand(vcomDCSetting)
	ctrl.sendByte(0x26)

	configRefreshMode(ctrl, Full, opts)
}

// configRefreshMode selects the waveform set and the matching border/data
// interval for the requested refresh type. Full and partial waveforms must
// never be mixed within one refresh sequence.
func configRefreshMode(ctrl controller, mode RefreshMode, opts *Opts) {
	switch mode {
	case Full:
		ctrl.sendCommand(vcomDataInterval)
		ctrl.sendData([]byte{0x10, 0x07})

		setLut(ctrl, &opts.FullRefresh)
	case Partial:
		// Border kept floating so partial refreshes do not flash the frame.
		ctrl.sendCommand(vcomDataInterval)
		ctrl.sendData([]byte{0xA9, 0x07})

		setLut(ctrl, &opts.PartialRefresh)
	}
}

// setLut programs the five waveform tables. The register order is fixed by
// the controller: VCOM, then WW, BW, WB, BB.
func setLut(ctrl controller, lut *LUTSet) {
	ctrl.sendCommand(lutVCOM)
	ctrl.sendData(lut.VCOM)

	ctrl.sendCommand(lutWW)
	ctrl.sendData(lut.WW)

	ctrl.sendCommand(lutBW)
	ctrl.sendData(lut.BW)

	ctrl.sendCommand(lutWB)
	ctrl.sendData(lut.WB)

	ctrl.sendCommand(lutBB)
	ctrl.sendData(lut.BB)
}

// displayFrame uploads a frame to the new-image plane and triggers a refresh
// with the currently loaded waveform set.
func displayFrame(ctrl controller, buf []byte) {
	ctrl.sendCommand(dataStartTransmission2)
	ctrl.sendData(buf)

	turnOnDisplay(ctrl)
}

// displayFramePartial refreshes the panel inside a partial window spanning
// the full extent. The controller compares the previous-image plane against
// the new-image plane and only drives pixels that changed.
func displayFramePartial(ctrl controller, opts *Opts, prev, next []byte) {
	ctrl.sendCommand(partialIn)

	ctrl.sendCommand(partialWindow)
	ctrl.sendData(partialWindowArgs(0, 0, opts.Width, opts.Height))

	ctrl.sendCommand(dataStartTransmission1)
	ctrl.sendData(prev)

	ctrl.sendCommand(dataStartTransmission2)
	ctrl.sendData(next)

	turnOnDisplay(ctrl)

	ctrl.sendCommand(partialOut)
}

// turnOnDisplay starts the refresh cycle and blocks until the panel settles.
func turnOnDisplay(ctrl controller) {
	ctrl.sendCommand(displayRefresh)
	ctrl.waitUntilIdle()
}

// sleepDisplay cuts the charge pump and enters deep sleep. Only a hardware
// reset wakes the controller afterwards.
func sleepDisplay(ctrl controller) {
	ctrl.sendCommand(powerOff)
	ctrl.waitUntilIdle()

	ctrl.sendCommand(deepSleep)
	ctrl.sendByte(0xA5)
}

// partialWindowArgs packs a window into the 9-byte argument block of the
// partial-window command. The horizontal bounds are truncated to channel
// banks of 8 pixels; PT_SCAN is set so gates outside the window keep
// scanning.
func partialWindowArgs(x, y, w, h int) []byte {
	xe := x + w - 1
	ye := y + h - 1

	return []byte{
		byte(x >> 8),
		byte(x & 0xF8),
		byte(xe >> 8),
		byte(xe&0xFF | 0x07),
		byte(y >> 8),
		byte(y & 0xFF),
		byte(ye >> 8),
		byte(ye & 0xFF),
		0x01,
	}
}
