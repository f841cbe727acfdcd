// Package fontsubset builds an embeddable TrueType byte stream containing
// only the glyphs a document subset actually uses, renumbered 0..count-1,
// for wrapping in a Type 0 / CIDFontType2 composite font dictionary. This is
// core logic, not a collaborator boundary: the font manager decides which
// glyphs belong to a subset while rendering, and this package turns that
// glyph list into the bytes the assembler embeds in a FontFile2 stream.
//
// The output omits "cmap": CIDFontType2 fonts driven through Identity-H with
// an explicit CIDToGIDMap do not need one, and the subset's only consumer is
// the PDF reader reading literal glyph indices.
package fontsubset

import (
	"encoding/binary"

	"github.com/cdvelop/pdfcore/errs"
)

// Source is the subset of a parsed font file the subsetter needs. It is
// satisfied by *fontsrc.Handle without either package importing the other.
type Source interface {
	TableBytes(tag string) ([]byte, bool)
	NumGlyphs() int
}

// composite glyph component flag bits (TrueType glyf table).
const (
	flagWordArgs      = 0x0001
	flagHaveScale     = 0x0008
	flagMoreComponents = 0x0020
	flagXYScale       = 0x0040
	flag2x2           = 0x0080
)

// Build assembles a standalone TrueType font containing exactly the glyphs
// named by order, where order[i] is the original glyph index that subset
// byte id i maps to. len(order) must not exceed 255, the PDF single-byte CID
// subset convention this package targets.
func Build(src Source, order []uint16) ([]byte, error) {
	if len(order) == 0 {
		return nil, errs.Wrap(errs.InvalidFont, "fontsubset: empty glyph order")
	}
	if len(order) > 255 {
		return nil, errs.Wrap(errs.InvalidFont, "fontsubset: subset exceeds 255 glyphs")
	}

	head, ok := src.TableBytes("head")
	if !ok || len(head) < 54 {
		return nil, errs.Wrap(errs.InvalidFont, "fontsubset: missing or truncated head table")
	}
	hhea, ok := src.TableBytes("hhea")
	if !ok || len(hhea) < 36 {
		return nil, errs.Wrap(errs.InvalidFont, "fontsubset: missing or truncated hhea table")
	}
	maxp, ok := src.TableBytes("maxp")
	if !ok || len(maxp) < 6 {
		return nil, errs.Wrap(errs.InvalidFont, "fontsubset: missing or truncated maxp table")
	}
	hmtx, ok := src.TableBytes("hmtx")
	if !ok {
		return nil, errs.Wrap(errs.InvalidFont, "fontsubset: missing hmtx table")
	}
	glyf, ok := src.TableBytes("glyf")
	if !ok {
		return nil, errs.Wrap(errs.InvalidFont, "fontsubset: missing glyf table")
	}
	loca, ok := src.TableBytes("loca")
	if !ok {
		return nil, errs.Wrap(errs.InvalidFont, "fontsubset: missing loca table")
	}

	indexToLocFormat := int16(be16(head[50:]))
	numberOfHMetrics := int(be16(hhea[34:]))
	numGlyphs := src.NumGlyphs()

	origToNew := make(map[uint16]uint16, len(order))
	for newID, orig := range order {
		origToNew[orig] = uint16(newID)
	}

	locaOffset := func(i int) uint32 {
		if indexToLocFormat == 0 {
			return 2 * uint32(be16(loca[2*i:]))
		}
		return be32(loca[4*i:])
	}

	newGlyf := make([]byte, 0, len(order)*16)
	newLoca := make([]uint32, 0, len(order)+1)
	for _, orig := range order {
		newLoca = append(newLoca, uint32(len(newGlyf)))
		if int(orig)+1 > numGlyphs {
			continue
		}
		start, end := locaOffset(int(orig)), locaOffset(int(orig)+1)
		if end <= start || int(end) > len(glyf) {
			continue
		}
		g := append([]byte(nil), glyf[start:end]...)
		if len(g) >= 10 {
			numberOfContours := int16(be16(g[0:]))
			if numberOfContours < 0 {
				remapComposite(g, origToNew)
			}
		}
		newGlyf = append(newGlyf, g...)
		for len(newGlyf)%2 != 0 {
			newGlyf = append(newGlyf, 0)
		}
	}
	newLoca = append(newLoca, uint32(len(newGlyf)))

	newLocaBytes := make([]byte, 4*len(newLoca))
	for i, off := range newLoca {
		binary.BigEndian.PutUint32(newLocaBytes[4*i:], off)
	}

	newHmtx := make([]byte, 4*len(order))
	for i, orig := range order {
		advance, lsb := hmtxEntry(hmtx, int(orig), numberOfHMetrics)
		binary.BigEndian.PutUint16(newHmtx[4*i:], advance)
		binary.BigEndian.PutUint16(newHmtx[4*i+2:], uint16(lsb))
	}

	newHead := append([]byte(nil), head...)
	binary.BigEndian.PutUint16(newHead[50:], 1) // long loca format
	binary.BigEndian.PutUint32(newHead[8:], 0)  // checkSumAdjustment, left unset

	newHhea := append([]byte(nil), hhea...)
	binary.BigEndian.PutUint16(newHhea[34:], uint16(len(order)))

	newMaxp := append([]byte(nil), maxp...)
	binary.BigEndian.PutUint16(newMaxp[4:], uint16(len(order)))

	return assemble(map[string][]byte{
		"head": newHead,
		"hhea": newHhea,
		"maxp": newMaxp,
		"hmtx": newHmtx,
		"loca": newLocaBytes,
		"glyf": newGlyf,
	}), nil
}

func hmtxEntry(hmtx []byte, orig, numberOfHMetrics int) (advance uint16, lsb int16) {
	if numberOfHMetrics == 0 {
		return 0, 0
	}
	if orig < numberOfHMetrics {
		off := 4 * orig
		if off+4 > len(hmtx) {
			return 0, 0
		}
		return be16(hmtx[off:]), int16(be16(hmtx[off+2:]))
	}
	off := 4 * (numberOfHMetrics - 1)
	if off+4 > len(hmtx) {
		return 0, 0
	}
	advance = be16(hmtx[off:])
	lsbOff := 4*numberOfHMetrics + 2*(orig-numberOfHMetrics)
	if lsbOff+2 <= len(hmtx) {
		lsb = int16(be16(hmtx[lsbOff:]))
	}
	return advance, lsb
}

// remapComposite rewrites every component glyph index inside a composite
// glyf entry in place, using origToNew (missing components fall back to
// glyph 0, the required .notdef).
func remapComposite(g []byte, origToNew map[uint16]uint16) {
	pos := 10
	for pos+4 <= len(g) {
		flags := be16(g[pos:])
		orig := be16(g[pos+2:])
		newID, ok := origToNew[orig]
		if !ok {
			newID = 0
		}
		binary.BigEndian.PutUint16(g[pos+2:], newID)
		pos += 4
		if flags&flagWordArgs != 0 {
			pos += 4
		} else {
			pos += 2
		}
		switch {
		case flags&flag2x2 != 0:
			pos += 8
		case flags&flagXYScale != 0:
			pos += 4
		case flags&flagHaveScale != 0:
			pos += 2
		}
		if flags&flagMoreComponents == 0 {
			break
		}
	}
}

var tableOrder = []string{"head", "hhea", "maxp", "hmtx", "loca", "glyf"}

func assemble(tables map[string][]byte) []byte {
	n := len(tableOrder)
	searchRange, entrySelector, rangeShift := sfntSearchParams(n)

	header := make([]byte, 12)
	binary.BigEndian.PutUint32(header[0:], 0x00010000)
	binary.BigEndian.PutUint16(header[4:], uint16(n))
	binary.BigEndian.PutUint16(header[6:], searchRange)
	binary.BigEndian.PutUint16(header[8:], entrySelector)
	binary.BigEndian.PutUint16(header[10:], rangeShift)

	dir := make([]byte, 16*n)
	offset := uint32(12 + 16*n)
	var body []byte
	for i, tag := range tableOrder {
		data := tables[tag]
		padded := pad4(data)
		copy(dir[16*i:], tag)
		binary.BigEndian.PutUint32(dir[16*i+4:], checksum(padded))
		binary.BigEndian.PutUint32(dir[16*i+8:], offset)
		binary.BigEndian.PutUint32(dir[16*i+12:], uint32(len(data)))
		body = append(body, padded...)
		offset += uint32(len(padded))
	}

	out := make([]byte, 0, len(header)+len(dir)+len(body))
	out = append(out, header...)
	out = append(out, dir...)
	out = append(out, body...)
	return out
}

func pad4(b []byte) []byte {
	out := append([]byte(nil), b...)
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

func checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i+4 <= len(b); i += 4 {
		sum += binary.BigEndian.Uint32(b[i:])
	}
	return sum
}

func sfntSearchParams(numTables int) (searchRange, entrySelector, rangeShift uint16) {
	entries := 1
	log := 0
	for entries*2 <= numTables {
		entries *= 2
		log++
	}
	searchRange = uint16(entries * 16)
	entrySelector = uint16(log)
	rangeShift = uint16(numTables*16) - searchRange
	return
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
