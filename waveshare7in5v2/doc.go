// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package waveshare7in5v2 controls the Waveshare 7.5 inch e-paper display,
// version 2 (800x480, UC8179 controller).
//
// The display is bistable: it keeps its image with zero power draw after
// a refresh completes, and Sleep can be used to cut the charge pump between
// updates.
//
// Datasheet:
//
// https://www.waveshare.com/w/upload/6/60/7.5inch_e-Paper_V2_Specification.pdf
//
// Product page:
//
// https://www.waveshare.com/wiki/7.5inch_e-Paper_HAT
package waveshare7in5v2
