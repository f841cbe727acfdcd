package pdfcore

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestUTF8GlyphCountMatchesScalarCount(t *testing.T) {
	r, id := newTestRegistry()
	p := newPageBuilder(r, r.converter, OutputRGB)

	s := "héllo wörld"
	if err := p.RenderUTF8Text(id, 12, 10, 100, s); err != nil {
		t.Fatal(err)
	}

	hexDigits := countBracketedHexDigits(p.buf.String())
	want := utf8.RuneCountInString(s)
	if hexDigits/4 != want {
		t.Fatalf("glyph hex groups = %d, want %d (output: %q)", hexDigits/4, want, p.buf.String())
	}
}

// countBracketedHexDigits sums the lengths of every "<...>" span in a
// content stream fragment, for asserting glyph-count invariants without a
// full content-stream parser.
func countBracketedHexDigits(s string) int {
	total := 0
	inBracket := false
	for _, r := range s {
		switch r {
		case '<':
			inBracket = true
		case '>':
			inBracket = false
		default:
			if inBracket {
				total++
			}
		}
	}
	return total
}

func TestASCIIRenderClampsHighBytes(t *testing.T) {
	r, id := newTestRegistry()
	p := newPageBuilder(r, r.converter, OutputRGB)

	if err := p.RenderASCIIText(id, 10, 0, 0, "hi\xffthere"); err != nil {
		t.Fatal(err)
	}
	if p.buf.Len() == 0 {
		t.Fatal("expected content stream bytes")
	}
	f, _ := r.font(id)
	if _, ok := f.subsets[0].runeToByte[' ']; !ok {
		t.Fatal("byte 0xFF was not replaced with a space")
	}
	if _, ok := f.subsets[0].runeToByte[0xFF]; ok {
		t.Fatal("byte 0xFF reached glyph assignment unclamped")
	}
}

func TestKerningAppearsBetweenGlyphRuns(t *testing.T) {
	r, id := newTestRegistry()
	p := newPageBuilder(r, r.converter, OutputRGB)

	if err := p.RenderUTF8Text(id, 12, 10, 100, "Af"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.buf.String(), "-50") {
		t.Fatalf("expected kerning value -50 in content stream, got %q", p.buf.String())
	}
}
