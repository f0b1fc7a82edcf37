// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare7in5v2

import (
	"bytes"
	"image"
	"testing"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestPackImageSize(t *testing.T) {
	bounds := image.Rect(0, 0, 800, 480)

	buf := packImage(bounds, bounds, &image.Uniform{image1bit.On}, image.Point{})

	if want := 800 / 8 * 480; len(buf) != want {
		t.Fatalf("packImage() returned %d bytes, want %d", len(buf), want)
	}
	if !bytes.Equal(buf, bytes.Repeat([]byte{0xFF}, len(buf))) {
		t.Errorf("packImage() of a white image is not all 0xFF")
	}
}

func TestPackImageBlack(t *testing.T) {
	bounds := image.Rect(0, 0, 16, 2)

	buf := packImage(bounds, bounds, &image.Uniform{image1bit.Off}, image.Point{})

	if !bytes.Equal(buf, bytes.Repeat([]byte{0x00}, 4)) {
		t.Errorf("packImage() of a black image = %#v, want all zero", buf)
	}
}

func TestPackImageBitOrder(t *testing.T) {
	bounds := image.Rect(0, 0, 16, 2)

	// Black in the leftmost pixel column only; the leftmost pixel maps to the
	// most significant bit of the first byte of each row.
	buf := packImage(bounds, image.Rect(0, 0, 1, 2), &image.Uniform{image1bit.Off}, image.Point{})

	want := []byte{0x7F, 0xFF, 0x7F, 0xFF}
	if !bytes.Equal(buf, want) {
		t.Errorf("packImage() = %#v, want %#v", buf, want)
	}
}

func TestPackImageOutsideDstRect(t *testing.T) {
	bounds := image.Rect(0, 0, 8, 2)

	// Drawing outside the panel is clipped; the buffer stays white.
	buf := packImage(bounds, image.Rect(100, 100, 200, 200), &image.Uniform{image1bit.Off}, image.Point{})

	want := []byte{0xFF, 0xFF}
	if !bytes.Equal(buf, want) {
		t.Errorf("packImage() = %#v, want %#v", buf, want)
	}
}
