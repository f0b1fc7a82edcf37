// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for e-paper device drivers and the tooling
// around them.
//
// waveshare7in5v2 drives the Waveshare 7.5" V2 monochrome panel over SPI.
// epdterm emulates a panel in the terminal for development without hardware.
package devices
