// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare7in5v2

import "fmt"

// lutLength is the size of a single waveform table on the UC8179. Each of the
// five LUT registers holds 7 voltage groups of 6 bytes each.
const lutLength = 42

// LUT is one waveform table programming the voltage/timing steps applied to
// pixels during a refresh phase. It must be exactly 42 bytes long.
type LUT []byte

// LUTSet holds the five waveform tables the controller applies during a
// refresh: the VCOM table plus one table per pixel transition
// (white-to-white, black-to-white, white-to-black, black-to-black).
type LUTSet struct {
	VCOM LUT
	WW   LUT
	BW   LUT
	WB   LUT
	BB   LUT
}

func (s *LUTSet) validate() error {
	for _, t := range []struct {
		name string
		lut  LUT
	}{
		{"VCOM", s.VCOM},
		{"WW", s.WW},
		{"BW", s.BW},
		{"WB", s.WB},
		{"BB", s.BB},
	} {
		if len(t.lut) != lutLength {
			return fmt.Errorf("waveshare7in5v2: %s LUT is %d bytes, want %d", t.name, len(t.lut), lutLength)
		}
	}
	return nil
}

// fullRefreshLUT drives the complete multi-phase waveform: the panel is
// inverted and settled so that no ghost of the previous image remains.
// Modeled on the vendor demo tables for this panel class; see the UC8179
// datasheet for the group encoding.
var fullRefreshLUT = LUTSet{
	VCOM: LUT{
		0x00, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x00, 0x0F, 0x01, 0x0F, 0x01, 0x02,
		0x00, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	WW: LUT{
		0x10, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x84, 0x0F, 0x01, 0x0F, 0x01, 0x02,
		0x20, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	BW: LUT{
		0x10, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x84, 0x0F, 0x01, 0x0F, 0x01, 0x02,
		0x20, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	WB: LUT{
		0x80, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x84, 0x0F, 0x01, 0x0F, 0x01, 0x02,
		0x40, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	BB: LUT{
		0x80, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x84, 0x0F, 0x01, 0x0F, 0x01, 0x02,
		0x40, 0x0F, 0x0F, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
}

// partialRefreshLUT is a single-phase waveform. It is faster and does not
// flash the panel, but leaves residual charge behind; interleave full
// refreshes to avoid burn-in.
var partialRefreshLUT = LUTSet{
	VCOM: LUT{
		0x00, 0x19, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	WW: LUT{
		0x00, 0x19, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	BW: LUT{
		0x80, 0x19, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	WB: LUT{
		0x40, 0x19, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
	BB: LUT{
		0x00, 0x19, 0x01, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	},
}
