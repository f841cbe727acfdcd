package pdfcore

import (
	"seehuhn.de/go/icc"

	"github.com/cdvelop/pdfcore/errs"
)

// ColorConverter re-expresses colors between device spaces. It is idempotent
// and pure: two calls with the same input color and the same loaded profiles
// always produce the same result, with no mutation of hidden state.
//
// When the caller supplies ICC profile bytes (via Options.ICCProfiles),
// conversions route through seehuhn.de/go/icc transforms anchored on the D50
// profile connection space. When no profile is supplied, or a supplied
// profile fails to decode, the converter falls back to a fixed approximation
// (luminance-weighted gray, naive complement CMYK) so a document can always
// be produced.
type ColorConverter struct {
	rgb  *icc.Profile
	gray *icc.Profile
	cmyk *icc.Profile

	rgbToPCS  *icc.Transform
	pcsToRGB  *icc.Transform
	grayToPCS *icc.Transform
	pcsToGray *icc.Transform
	cmykToPCS *icc.Transform
	pcsToCMYK *icc.Transform
}

// NewColorConverter decodes the supplied default profile bytes, falling back
// to the matrix approximation for any channel whose bytes are nil or fail to
// decode. Decode failures are logged through warn, not returned, because a
// broken default profile must never prevent document construction.
func NewColorConverter(defaults DefaultICCProfiles, warn func(...any)) *ColorConverter {
	c := &ColorConverter{}
	c.rgb, c.rgbToPCS, c.pcsToRGB = loadChannel(defaults.RGB, icc.RelativeColorimetric, warn, "rgb")
	c.gray, c.grayToPCS, c.pcsToGray = loadChannel(defaults.Gray, icc.RelativeColorimetric, warn, "gray")
	c.cmyk, c.cmykToPCS, c.pcsToCMYK = loadChannel(defaults.CMYK, icc.RelativeColorimetric, warn, "cmyk")
	return c
}

func loadChannel(raw []byte, intent icc.RenderingIntent, warn func(...any), label string) (*icc.Profile, *icc.Transform, *icc.Transform) {
	if raw == nil {
		return nil, nil, nil
	}
	p, err := icc.Decode(raw)
	if err != nil {
		if warn != nil {
			warn("pdfcore: discarding invalid", label, "icc profile:", err)
		}
		return nil, nil, nil
	}
	toPCS, err := icc.NewTransform(p, icc.DeviceToPCS, intent)
	if err != nil {
		if warn != nil {
			warn("pdfcore: cannot build device-to-pcs transform for", label, ":", err)
		}
		return nil, nil, nil
	}
	fromPCS, err := icc.NewTransform(p, icc.PCSToDevice, intent)
	if err != nil {
		if warn != nil {
			warn("pdfcore: cannot build pcs-to-device transform for", label, ":", err)
		}
		return p, toPCS, nil
	}
	return p, toPCS, fromPCS
}

// sRGB-to-XYZ (D65) matrix, used by the matrix-approximation fallback.
var srgbToXYZ = [3][3]float64{
	{0.4124564, 0.3575761, 0.1804375},
	{0.2126729, 0.7151522, 0.0721750},
	{0.0193339, 0.1191920, 0.9503041},
}

var xyzToSRGB = [3][3]float64{
	{3.2404542, -1.5371385, -0.4985314},
	{-0.9692660, 1.8760108, 0.0415560},
	{0.0556434, -0.2040259, 1.0572252},
}

func mulVec(m [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// ToGray converts an RGB color to device gray using the relative-luminance
// coefficients if no RGB/Gray ICC transform pair is loaded.
func (c *ColorConverter) ToGray(v DeviceRGB) DeviceGray {
	if c.rgbToPCS != nil && c.pcsToGray != nil {
		x, y, z := c.rgbToPCS.ToXYZ([]float64{float64(v.R), float64(v.G), float64(v.B)})
		g := c.pcsToGray.FromXYZ(x, y, z)
		if len(g) > 0 {
			return Gray(g[0])
		}
	}
	gray := 0.2126*float64(v.R) + 0.7152*float64(v.G) + 0.0722*float64(v.B)
	return Gray(gray)
}

// ToCMYK converts an RGB color to device CMYK.
func (c *ColorConverter) ToCMYK(v DeviceRGB) DeviceCMYK {
	if c.rgbToPCS != nil && c.pcsToCMYK != nil {
		x, y, z := c.rgbToPCS.ToXYZ([]float64{float64(v.R), float64(v.G), float64(v.B)})
		out := c.pcsToCMYK.FromXYZ(x, y, z)
		if len(out) == 4 {
			return CMYK(out[0], out[1], out[2], out[3])
		}
	}
	r, g, b := float64(v.R), float64(v.G), float64(v.B)
	k := 1 - max3(r, g, b)
	if k >= 1 {
		return CMYK(0, 0, 0, 1)
	}
	return CMYK((1-r-k)/(1-k), (1-g-k)/(1-k), (1-b-k)/(1-k), k)
}

// ToRGBFromCMYK converts a device CMYK color to RGB.
func (c *ColorConverter) ToRGBFromCMYK(v DeviceCMYK) DeviceRGB {
	if c.cmykToPCS != nil && c.pcsToRGB != nil {
		x, y, z := c.cmykToPCS.ToXYZ([]float64{float64(v.C), float64(v.M), float64(v.Y), float64(v.K)})
		out := c.pcsToRGB.FromXYZ(x, y, z)
		if len(out) == 3 {
			return RGB(out[0], out[1], out[2])
		}
	}
	cc, m, y, k := float64(v.C), float64(v.M), float64(v.Y), float64(v.K)
	return RGB((1-cc)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

// ToRGBFromGray converts a device gray color to RGB.
func (c *ColorConverter) ToRGBFromGray(v DeviceGray) DeviceRGB {
	if c.grayToPCS != nil && c.pcsToRGB != nil {
		x, y, z := c.grayToPCS.ToXYZ([]float64{float64(v.V)})
		out := c.pcsToRGB.FromXYZ(x, y, z)
		if len(out) == 3 {
			return RGB(out[0], out[1], out[2])
		}
	}
	return RGB(float64(v.V), float64(v.V), float64(v.V))
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// reexpress converts any supported color record into the document's output
// color space, as required before emitting a non-stroking color selection
// operator (spec for `rg`/`g`/`k`). ICC, Lab, Separation, and Pattern colors
// pass through unconverted: they select their own color space operator and
// are not re-expressed.
func (c *ColorConverter) reexpress(out OutputColorSpace, v any) (any, error) {
	switch color := v.(type) {
	case DeviceRGB:
		switch out {
		case OutputRGB:
			return color, nil
		case OutputGray:
			return c.ToGray(color), nil
		case OutputCMYK:
			return c.ToCMYK(color), nil
		}
	case DeviceGray:
		switch out {
		case OutputRGB:
			return c.ToRGBFromGray(color), nil
		case OutputGray:
			return color, nil
		case OutputCMYK:
			return c.ToCMYK(c.ToRGBFromGray(color)), nil
		}
	case DeviceCMYK:
		switch out {
		case OutputRGB:
			return c.ToRGBFromCMYK(color), nil
		case OutputGray:
			return c.ToGray(c.ToRGBFromCMYK(color)), nil
		case OutputCMYK:
			return color, nil
		}
	case ICCColor, LabColor, SeparationColor, PatternColor:
		return color, nil
	}
	return nil, errs.Wrap(errs.ColorComponentOutOfRange, "unsupported color record for re-expression")
}
