package pdfcore

import (
	"strconv"

	"github.com/cdvelop/pdfcore/errs"
)

// FontHandle is the glyph-data surface the registry needs from a parsed font
// file, satisfied by *fontsrc.Handle. Declared here rather than imported so
// the core package never names the collaborator package in its public API.
type FontHandle interface {
	UnitsPerEm() int
	NumGlyphs() int
	GlyphIndex(r rune) (uint16, bool)
	Kerning(a, b uint16) int
	Advance(glyph uint16) int
	TableBytes(tag string) ([]byte, bool)
}

// LoadFont registers a parsed font file and returns its FontID. No PDF object
// is emitted yet: the Type0/CIDFontType2/FontFile2 objects for each subset
// are only known once every page using this font has rendered, so font
// embedding is deferred to Close.
func (r *Registry) LoadFont(handle FontHandle) FontID {
	r.fonts = append(r.fonts, fontEntry{handle: handle, cidToRune: map[int]rune{}})
	return FontID(len(r.fonts) - 1)
}

func (r *Registry) font(id FontID) (*fontEntry, error) {
	if !id.valid() || int(id) >= len(r.fonts) {
		return nil, errs.Wrap(errs.BadID, "pdfcore: invalid font id")
	}
	return &r.fonts[int(id)], nil
}

// AssignGlyph maps a rune to a (subset index, local byte id) pair for font
// id, opening a new subset whenever the current one already holds 255
// glyphs or doesn't exist yet. Repeated calls for a rune already seen by
// this font return its existing assignment, per the per-document lazy
// subset model: a font never embeds more glyphs than were actually drawn.
func (r *Registry) AssignGlyph(id FontID, ch rune) (subsetIdx int, byteID byte, err error) {
	f, err := r.font(id)
	if err != nil {
		return 0, 0, err
	}
	gid, ok := f.handle.GlyphIndex(ch)
	if !ok {
		return 0, 0, errs.Wrap(errs.InvalidFont, "pdfcore: font has no glyph for rune", ch)
	}
	return r.assignGlyphIndex(f, gid, ch)
}

// AssignGlyphIndex is the raw-glyph-index counterpart of AssignGlyph, for
// callers that already resolved a glyph outside the font's own cmap.
func (r *Registry) AssignGlyphIndex(id FontID, gid uint16) (subsetIdx int, byteID byte, err error) {
	f, err := r.font(id)
	if err != nil {
		return 0, 0, err
	}
	return r.assignGlyphIndex(f, gid, -1)
}

func (r *Registry) assignGlyphIndex(f *fontEntry, gid uint16, ch rune) (int, byte, error) {
	for si := range f.subsets {
		s := &f.subsets[si]
		for b := 0; b < s.used; b++ {
			if s.glyphByByte[b] == int(gid) {
				return si, byte(b), nil
			}
		}
	}

	si := len(f.subsets) - 1
	if si < 0 || f.subsets[si].used >= 255 {
		f.subsets = append(f.subsets, subsetEntry{runeToByte: map[rune]byte{}})
		for i := range f.subsets[len(f.subsets)-1].glyphByByte {
			f.subsets[len(f.subsets)-1].glyphByByte[i] = -1
		}
		si = len(f.subsets) - 1
	}
	s := &f.subsets[si]
	b := s.used
	s.glyphByByte[b] = int(gid)
	s.used++
	if ch >= 0 {
		s.runeToByte[ch] = byte(b)
		f.cidToRune[int(gid)] = ch
	}
	return si, byte(b), nil
}

// Kerning returns the pairwise kerning adjustment, in font units, between
// two runes drawn through font id.
func (r *Registry) Kerning(id FontID, a, b rune) int {
	f, err := r.font(id)
	if err != nil {
		return 0
	}
	ga, okA := f.handle.GlyphIndex(a)
	gb, okB := f.handle.GlyphIndex(b)
	if !okA || !okB {
		return 0
	}
	return f.handle.Kerning(ga, gb)
}

// Advance returns a rune's horizontal advance in font units, for callers
// laying out text before emitting it.
func (r *Registry) Advance(id FontID, ch rune) int {
	f, err := r.font(id)
	if err != nil {
		return 0
	}
	gid, ok := f.handle.GlyphIndex(ch)
	if !ok {
		return 0
	}
	return f.handle.Advance(gid)
}

// UnitsPerEm reports the font's glyph-space scale, needed to build the Tf
// text-space transform.
func (r *Registry) UnitsPerEm(id FontID) int {
	f, err := r.font(id)
	if err != nil {
		return 1000
	}
	return f.handle.UnitsPerEm()
}

// subsetResourceName is the content-stream resource key for a font subset,
// stable across the whole rendering pass even though the subset's PDF object
// number isn't known until Close assigns it.
func subsetResourceName(id FontID, subsetIdx int) string {
	return "SFont" + strconv.Itoa(int(id)) + "-" + strconv.Itoa(subsetIdx)
}
