package pdfcore

import "math"

// LimitDouble is a scalar clamped to [0,1] at construction. NaN and
// out-of-range inputs never escape into a color record.
type LimitDouble float64

// Limit clamps v into [0,1], mapping NaN to 0.
func Limit(v float64) LimitDouble {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return LimitDouble(v)
}

// DeviceRGB is an additive color in the device RGB space.
type DeviceRGB struct {
	R, G, B LimitDouble
}

// RGB constructs a DeviceRGB color, clamping each channel.
func RGB(r, g, b float64) DeviceRGB {
	return DeviceRGB{Limit(r), Limit(g), Limit(b)}
}

// DeviceGray is a single-channel gray level.
type DeviceGray struct {
	V LimitDouble
}

// Gray constructs a DeviceGray color, clamping the channel.
func Gray(v float64) DeviceGray {
	return DeviceGray{Limit(v)}
}

// DeviceCMYK is a subtractive color in the device CMYK space.
type DeviceCMYK struct {
	C, M, Y, K LimitDouble
}

// CMYK constructs a DeviceCMYK color, clamping each channel.
func CMYK(c, m, y, k float64) DeviceCMYK {
	return DeviceCMYK{Limit(c), Limit(m), Limit(y), Limit(k)}
}

// ICCColor is a color expressed in the space of a registered ICCBased color
// space object.
type ICCColor struct {
	Space  ICCSpaceID
	Values []LimitDouble
}

// LabColor is a color expressed in a registered Lab color space.
type LabColor struct {
	Space LabSpaceID
	L, A, B float64
}

// SeparationColor is a tint value against a registered named ink.
type SeparationColor struct {
	Space SeparationID
	V     LimitDouble
}

// PatternColor references a registered pattern. It carries no underlying
// color, so uncolored tiling patterns are not supported.
type PatternColor struct {
	Pattern PatternID
}
