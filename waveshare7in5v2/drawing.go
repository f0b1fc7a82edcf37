// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare7in5v2

import (
	"image"
	"image/draw"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Pack converts an image into the framebuffer layout expected by
// DisplayFrame and DisplayFramePartial. The image is drawn over a white
// background covering bounds.
func Pack(bounds image.Rectangle, src image.Image) []byte {
	return packImage(bounds, bounds, src, image.Point{})
}

// packImage converts an image into the wire format of the panel: row-major,
// 1 bit per pixel, 8 pixels per byte with the leftmost pixel in the MSB.
// A set bit drives the pixel white. Anything outside dstRect keeps the
// default white background.
func packImage(bounds, dstRect image.Rectangle, src image.Image, srcPts image.Point) []byte {
	img := image1bit.NewVerticalLSB(bounds)
	draw.Src.Draw(img, img.Bounds(), &image.Uniform{image1bit.On}, image.Point{})
	draw.Src.Draw(img, dstRect.Intersect(bounds), src, srcPts)

	cols := bounds.Dx() / 8
	buf := make([]byte, cols*bounds.Dy())

	for y := 0; y < bounds.Dy(); y++ {
		row := buf[y*cols : (y+1)*cols]
		for x := 0; x < cols; x++ {
			for bit := 0; bit < 8; bit++ {
				if img.BitAt(x*8+bit, y) {
					row[x] |= 0x80 >> bit
				}
			}
		}
	}

	return buf
}
