package pdfcore

import "testing"

// stubFont is a minimal FontHandle for tests that never needs real glyph
// outlines: every rune maps to a distinct, stable glyph index derived from
// its codepoint, which is all subset-assignment tests need.
type stubFont struct{}

func (stubFont) UnitsPerEm() int { return 1000 }
func (stubFont) NumGlyphs() int  { return 1 << 16 }
func (stubFont) GlyphIndex(r rune) (uint16, bool) {
	if r <= 0 {
		return 0, false
	}
	return uint16(r), true
}
func (stubFont) Kerning(a, b uint16) int {
	if a == 'A' && b == 'f' {
		return -50
	}
	return 0
}
func (stubFont) Advance(glyph uint16) int        { return 500 }
func (stubFont) TableBytes(tag string) ([]byte, bool) { return nil, false }

func newTestRegistry() (*Registry, FontID) {
	r := newRegistry(NewColorConverter(DefaultICCProfiles{}, nil))
	id := r.LoadFont(stubFont{})
	return r, id
}

func TestSubsetBoundary(t *testing.T) {
	r, id := newTestRegistry()

	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		ch := rune(0x3000 + i) // distinct codepoints, avoiding ASCII collisions
		si, b, err := r.AssignGlyph(id, ch)
		if err != nil {
			t.Fatalf("AssignGlyph(%d): %v", i, err)
		}
		seen[si] = true
		if b > 254 {
			t.Fatalf("local byte id %d exceeds subset capacity", b)
		}
	}
	if len(seen) < 2 {
		t.Fatalf("expected at least 2 subsets for 300 codepoints, got %d", len(seen))
	}
	f, _ := r.font(id)
	for i, s := range f.subsets {
		if s.used > 255 {
			t.Fatalf("subset %d holds %d glyphs, want <=255", i, s.used)
		}
	}
}

func TestAssignGlyphIsStable(t *testing.T) {
	r, id := newTestRegistry()

	si1, b1, err := r.AssignGlyph(id, 'A')
	if err != nil {
		t.Fatal(err)
	}
	si2, b2, err := r.AssignGlyph(id, 'A')
	if err != nil {
		t.Fatal(err)
	}
	if si1 != si2 || b1 != b2 {
		t.Fatalf("repeated assignment changed: (%d,%d) vs (%d,%d)", si1, b1, si2, b2)
	}
}

func TestKerningLookup(t *testing.T) {
	r, id := newTestRegistry()
	if k := r.Kerning(id, 'A', 'f'); k != -50 {
		t.Fatalf("Kerning(A,f) = %d, want -50", k)
	}
	if k := r.Kerning(id, 'x', 'y'); k != 0 {
		t.Fatalf("Kerning(x,y) = %d, want 0", k)
	}
}
