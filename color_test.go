package pdfcore

import (
	"math"
	"testing"
)

func TestLimitClamps(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want LimitDouble
	}{
		{"negative", -1, 0},
		{"above one", 2, 1},
		{"nan", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 1},
		{"in range", 0.5, 0.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Limit(c.in)
			if got != c.want {
				t.Errorf("Limit(%v) = %v, want %v", c.in, got, c.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Limit(%v) = %v out of [0,1]", c.in, got)
			}
		})
	}
}

func TestColorConverterRoundTrip(t *testing.T) {
	conv := NewColorConverter(DefaultICCProfiles{}, nil)

	for _, g := range []float64{0, 0.25, 0.5, 0.75, 1} {
		rgb := conv.ToRGBFromGray(Gray(g))
		back := conv.ToGray(rgb)
		if diff := math.Abs(float64(back.V) - g); diff > 1.0/255+1e-9 {
			t.Errorf("gray round trip for %v: got %v, diff %v", g, back.V, diff)
		}
	}

	rgb := RGB(0.4, 0.6, 0.2)
	cmyk := conv.ToCMYK(rgb)
	back := conv.ToRGBFromCMYK(cmyk)
	for i, pair := range [][2]LimitDouble{{rgb.R, back.R}, {rgb.G, back.G}, {rgb.B, back.B}} {
		if diff := math.Abs(float64(pair[0]) - float64(pair[1])); diff > 2.0/255+1e-9 {
			t.Errorf("channel %d round trip: got %v, want ~%v", i, pair[1], pair[0])
		}
	}
}
