package render

import (
	"image"
	"image/color"
	"io"

	"golang.org/x/image/bmp"

	"rule-ca/internal/core"
)

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

// Image renders the first h rows of a w-wide run. Live cells are black when
// foregroundIsOne is set, matching how PBM viewers show a 1 symbol.
func Image(cells []uint8, w, h int, foregroundIsOne bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	on, off := color.Color(color.Black), color.Color(color.White)
	if !foregroundIsOne {
		on, off = off, on
	}
	fillBinaryRGBA(img.Pix, cells[:w*h], on, off)
	return img
}

// EncodeBMP writes the run as a Windows bitmap.
func EncodeBMP(dst io.Writer, cells []uint8, w, h int, foregroundIsOne bool) error {
	if err := bmp.Encode(dst, Image(cells, w, h, foregroundIsOne)); err != nil {
		return &core.IOError{Resource: "bitmap", Err: err}
	}
	return nil
}
