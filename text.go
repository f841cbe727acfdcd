package pdfcore

import (
	"bytes"
	"fmt"
)

// Local byte glyph ids (0-254) are encoded as 2-byte big-endian CIDs (high
// byte always 0) rather than a single hex pair: a CIDFontType2 descendant
// under /Encoding /Identity-H requires 2-byte character codes, so a bare
// one-byte hex pair would not address the glyph the reader expects.

// RenderASCIIText implements the built-in ASCII text entry point: bytes
// ≥0x80 are replaced with a space, the glyphs are drawn through the same
// lazy subset-assignment path as UTF-8 text (ASCII bytes are valid Unicode
// scalar values), and the whole string is emitted inside one BT/ET block.
func (p *PageBuilder) RenderASCIIText(font FontID, size, x, y float64, text string) error {
	clamped := asciiClamp(text)
	runes := make([]rune, len(clamped))
	for i, b := range clamped {
		runes[i] = rune(b)
	}
	return p.renderRunes(font, size, x, y, runes)
}

// RenderRawGlyph implements the raw-glyph entry point: a single glyph
// index is drawn directly, bypassing cmap lookup, for debugging or
// externally shaped layout (e.g. GPOS-driven runs the pairwise kerning
// interface cannot express).
func (p *PageBuilder) RenderRawGlyph(font FontID, size, x, y float64, glyph uint16) error {
	si, b, err := p.registry.AssignGlyphIndex(font, glyph)
	if err != nil {
		return err
	}
	fs := FontSubsetID{Font: font, Index: si}
	p.usedFontSubsets[fs] = struct{}{}
	p.op(fmt.Sprintf("BT\n/%s %s Tf\n%s %s Td\n[ <%04x> ] TJ\nET",
		subsetResourceName(font, si), fmtNum(size), fmtNum(x), fmtNum(y), b))
	return nil
}

// RenderUTF8Text implements the UTF-8 text entry point: decodes text into
// Unicode scalar values, assigns each to a font subset (opening a new one
// whenever the current subset already holds 255 glyphs), switches /Tf
// whenever the subset changes, and inserts pairwise kerning values inside
// the TJ array between glyph runs.
func (p *PageBuilder) RenderUTF8Text(font FontID, size, x, y float64, text string) error {
	it := newUTF8Iterator(text)
	var runes []rune
	for {
		r, ok := it.next()
		if !ok {
			break
		}
		runes = append(runes, r)
	}
	return p.renderRunes(font, size, x, y, runes)
}

func (p *PageBuilder) renderRunes(font FontID, size, x, y float64, runes []rune) error {
	if len(runes) == 0 {
		return nil
	}

	var sb bytes.Buffer
	sb.WriteString("BT\n")

	curSubset := -1
	tjOpen := false
	positioned := false
	prevRune := rune(-1)

	closeTJ := func() {
		if tjOpen {
			sb.WriteString("> ] TJ\n")
			tjOpen = false
		}
	}

	for _, r := range runes {
		si, b, err := p.registry.AssignGlyph(font, r)
		if err != nil {
			return err
		}
		if si != curSubset {
			closeTJ()
			fmt.Fprintf(&sb, "/%s %s Tf\n", subsetResourceName(font, si), fmtNum(size))
			curSubset = si
			p.usedFontSubsets[FontSubsetID{Font: font, Index: si}] = struct{}{}
			if !positioned {
				fmt.Fprintf(&sb, "%s %s Td\n", fmtNum(x), fmtNum(y))
				positioned = true
			}
			prevRune = -1
		}
		if !tjOpen {
			sb.WriteString("[ <")
			tjOpen = true
		} else if prevRune >= 0 {
			if k := p.registry.Kerning(font, prevRune, r); k != 0 {
				fmt.Fprintf(&sb, "> %d <", k)
			}
		}
		fmt.Fprintf(&sb, "%04x", b)
		prevRune = r
	}
	closeTJ()
	sb.WriteString("ET")
	p.op(sb.String())
	return nil
}
