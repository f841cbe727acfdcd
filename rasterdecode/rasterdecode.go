// Package rasterdecode is the external collaborator boundary for raster
// image decoding. The core never parses PNG or JPEG bitstreams itself: it
// consumes a decoded Pixmap with a declared color space and an optional
// alpha plane, per the image formats load_image is documented to consume
// (8-bit RGB/RGBA PNG, 2-entry palette monochrome PNG, 8-bit RGB JPEG).
package rasterdecode

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/cdvelop/pdfcore/errs"
)

// ColorSpace names the device color space a Pixmap's Pixels are encoded in.
type ColorSpace int

const (
	DeviceRGB ColorSpace = iota
	DeviceGray
)

// Pixmap is a decoded raster image ready for the resource registry: packed
// component bytes in row-major order (3 bytes/pixel for DeviceRGB, 1 for
// DeviceGray), plus an optional 8-bit alpha plane of the same dimensions.
type Pixmap struct {
	Width, Height int
	ColorSpace    ColorSpace
	Pixels        []byte
	Alpha         []byte // nil if the source had no transparency
}

// Decode sniffs the format (PNG or JPEG) from the leading bytes and decodes
// it into a Pixmap.
func Decode(data []byte) (*Pixmap, error) {
	if len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}) {
		return decodePNG(data)
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return decodeJPEG(data)
	}
	return nil, errs.Wrap(errs.InvalidImage, "rasterdecode: unrecognized image format")
}

func decodePNG(data []byte) (*Pixmap, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidImage, "rasterdecode: png:", err)
	}
	return toPixmap(img), nil
}

func decodeJPEG(data []byte) (*Pixmap, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidImage, "rasterdecode: jpeg:", err)
	}
	return toPixmap(img), nil
}

func toPixmap(img image.Image) *Pixmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		pm := &Pixmap{Width: w, Height: h, ColorSpace: DeviceGray, Pixels: make([]byte, w*h)}
		for y := 0; y < h; y++ {
			copy(pm.Pixels[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return pm
	}

	pm := &Pixmap{Width: w, Height: h, ColorSpace: DeviceRGB, Pixels: make([]byte, w*h*3)}
	var alpha []byte
	hasAlpha := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*w + x) * 3
			pm.Pixels[i] = byte(r >> 8)
			pm.Pixels[i+1] = byte(g >> 8)
			pm.Pixels[i+2] = byte(b >> 8)
			if a != 0xFFFF {
				hasAlpha = true
			}
			if alpha == nil {
				alpha = make([]byte, w*h)
			}
			alpha[y*w+x] = byte(a >> 8)
		}
	}
	if hasAlpha {
		pm.Alpha = alpha
	}
	return pm
}
