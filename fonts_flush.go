package pdfcore

import (
	"bytes"
	"fmt"

	"github.com/cdvelop/pdfcore/errs"
	"github.com/cdvelop/pdfcore/fontsubset"
)

// flushFonts carves and embeds every subset any rendering pass touched,
// exactly once, before any page is finalized (a page's resource dictionary
// must be able to resolve its subset resource keys to real object numbers).
func (d *Document) flushFonts() error {
	for fi := range d.registry.fonts {
		f := &d.registry.fonts[fi]
		for si := range f.subsets {
			s := &f.subsets[si]
			if s.used == 0 {
				continue
			}
			order := make([]uint16, s.used)
			for b := 0; b < s.used; b++ {
				g := s.glyphByByte[b]
				if g < 0 {
					g = 0
				}
				order[b] = uint16(g)
			}
			raw, err := fontsubset.Build(f.handle, order)
			if err != nil {
				return err
			}
			if err := d.embedSubset(FontID(fi), si, s, raw); err != nil {
				return err
			}
		}
	}
	return nil
}

// embedSubset emits the FontFile2 stream, the CIDFontType2 descendant font
// (with its FontDescriptor), and the wrapping Type0 composite font, in
// that dependency order, and records their object numbers on the subset.
// subsetIdx is the subset's stable position within its font's subset slice,
// used for the /BaseFont tag since s.objNum is not assigned until this call
// returns.
func (d *Document) embedSubset(fid FontID, subsetIdx int, s *subsetEntry, raw []byte) error {
	compressed, err := deflate(raw)
	if err != nil {
		return errs.Wrap(errs.IOError, "pdfcore: compress font subset:", err)
	}
	var fileBody bytes.Buffer
	fmt.Fprintf(&fileBody, "<<\n /Length %d\n /Length1 %d\n /Filter /FlateDecode\n>>\nstream\n", len(compressed), len(raw))
	fileBody.Write(compressed)
	fileBody.WriteString("\nendstream")
	fileObj, err := d.addIndirectObject(fileBody.Bytes())
	if err != nil {
		return err
	}

	descBody := fmt.Sprintf("<<\n /Type /FontDescriptor\n /FontName /Subset%d+%d\n /Flags 4\n /FontFile2 %d 0 R\n /ItalicAngle 0\n /Ascent 0\n /Descent 0\n /CapHeight 0\n /StemV 0\n>>", int(fid), subsetIdx, fileObj)
	descObj, err := d.addIndirectObject([]byte(descBody))
	if err != nil {
		return err
	}

	var widths bytes.Buffer
	widths.WriteString("[")
	for b := 0; b < s.used; b++ {
		if b > 0 {
			widths.WriteByte(' ')
		}
		widths.WriteString("1000")
	}
	widths.WriteString("]")

	cidBody := fmt.Sprintf("<<\n /Type /Font\n /Subtype /CIDFontType2\n /BaseFont /Subset%d+%d\n /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >>\n /FontDescriptor %d 0 R\n /DW 1000\n /W [0 %s]\n /CIDToGIDMap /Identity\n>>", int(fid), subsetIdx, descObj, widths.String())
	cidObj, err := d.addIndirectObject([]byte(cidBody))
	if err != nil {
		return err
	}

	type0Body := fmt.Sprintf("<<\n /Type /Font\n /Subtype /Type0\n /BaseFont /Subset%d+%d\n /Encoding /Identity-H\n /DescendantFonts [%d 0 R]\n>>", int(fid), subsetIdx, cidObj)
	type0Obj, err := d.addIndirectObject([]byte(type0Body))
	if err != nil {
		return err
	}

	s.objNum = type0Obj
	s.cidFontObj = cidObj
	s.fileObj = fileObj
	return nil
}
