// Package fontsrc is the external collaborator boundary for font file
// parsing. The core never parses TrueType/OpenType tables itself: it
// consumes a Handle exposing glyph index lookup, pairwise kerning, advances,
// and raw table bytes for subset embedding.
//
// Glyph metrics are delegated to golang.org/x/image/font/sfnt, a real
// shaping-adjacent library rather than a hand-rolled cmap walker. Raw table
// access (needed only at subset-embedding time, which the subsetter does)
// is not exposed by sfnt, so Handle keeps its own minimal table directory
// reader alongside it.
package fontsrc

import (
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/cdvelop/pdfcore/errs"
)

// Handle is a parsed font file, ready to answer the queries the document
// assembler's font manager needs while it assigns codepoints to subsets and,
// later, while the subsetter carves an embeddable byte stream.
type Handle struct {
	raw    []byte
	font   *sfnt.Font
	buf    sfnt.Buffer
	tables map[string]tableEntry
	upem   int
	ascii  string // best-effort PostScript name, for diagnostics only
}

type tableEntry struct {
	offset uint32
	length uint32
}

// Open parses data as a TrueType or OpenType font file.
func Open(data []byte) (*Handle, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidFont, "fontsrc: parse:", err)
	}
	h := &Handle{raw: data, font: f}
	if err := h.readTableDirectory(); err != nil {
		return nil, err
	}
	upem, err := f.UnitsPerEm()
	if err != nil {
		return nil, errs.Wrap(errs.InvalidFont, "fontsrc: units per em:", err)
	}
	h.upem = int(upem)
	return h, nil
}

// readTableDirectory walks the sfnt table directory (offset table followed
// by a run of 16-byte table records) to recover raw byte ranges for the
// tables the subsetter needs. sfnt.Font does not expose these directly.
func (h *Handle) readTableDirectory() error {
	data := h.raw
	if len(data) < 12 {
		return errs.Wrap(errs.InvalidFont, "fontsrc: file too small for an sfnt header")
	}
	numTables := int(be16(data[4:]))
	h.tables = make(map[string]tableEntry, numTables)
	pos := 12
	for i := 0; i < numTables; i++ {
		if pos+16 > len(data) {
			return errs.Wrap(errs.InvalidFont, "fontsrc: truncated table directory")
		}
		tag := string(data[pos : pos+4])
		offset := be32(data[pos+8:])
		length := be32(data[pos+12:])
		h.tables[tag] = tableEntry{offset: offset, length: length}
		pos += 16
	}
	return nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// UnitsPerEm is the font's glyph-space unit scale (typically 1000 or 2048).
func (h *Handle) UnitsPerEm() int { return h.upem }

// NumGlyphs reports the total glyph count in the source font.
func (h *Handle) NumGlyphs() int { return h.font.NumGlyphs() }

// GlyphIndex looks up the glyph for a Unicode codepoint.
func (h *Handle) GlyphIndex(r rune) (uint16, bool) {
	gid, err := h.font.GlyphIndex(&h.buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return uint16(gid), true
}

// Kerning returns the pairwise kerning adjustment, in font units, between
// two glyphs, or 0 if the font has no pairwise kerning data for the pair.
func (h *Handle) Kerning(a, b uint16) int {
	k, err := h.font.Kern(&h.buf, sfnt.GlyphIndex(a), sfnt.GlyphIndex(b), fixed.Int26_6(h.upem<<6), 0)
	if err != nil {
		return 0
	}
	return int(k) >> 6
}

// Advance returns a glyph's horizontal advance, in font units.
func (h *Handle) Advance(glyph uint16) int {
	adv, err := h.font.GlyphAdvance(&h.buf, sfnt.GlyphIndex(glyph), fixed.Int26_6(h.upem<<6), 0)
	if err != nil {
		return 0
	}
	return int(adv) >> 6
}

// TableBytes returns the raw bytes of a named sfnt table (e.g. "glyf",
// "loca", "head", "hhea", "hmtx", "maxp", "cmap"), or ok=false if the font
// does not carry that table.
func (h *Handle) TableBytes(tag string) (data []byte, ok bool) {
	e, found := h.tables[tag]
	if !found {
		return nil, false
	}
	if int(e.offset+e.length) > len(h.raw) {
		return nil, false
	}
	return h.raw[e.offset : e.offset+e.length], true
}
