package pdfcore

import (
	. "github.com/cdvelop/tinystring"
)

// fmtNum renders a coordinate/operand for a content-stream or dictionary
// value: fixed precision, trailing zeros trimmed, matching the teacher's
// number formatting convention.
func fmtNum(v float64) string {
	return Convert(v).Round(4).String()
}

// fmtInt renders an integer operand.
func fmtInt(n int) string {
	return Convert(n).String()
}
