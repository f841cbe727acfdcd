package pdfcore

import (
	"bytes"
	"compress/flate"
	"fmt"

	"github.com/cdvelop/pdfcore/errs"
	"github.com/cdvelop/pdfcore/fontsrc"
	"github.com/cdvelop/pdfcore/rasterdecode"
)

// LoadImage decodes image data (PNG or JPEG) and emits its XObject (and, if
// present, a soft-mask XObject for the alpha plane) immediately: unlike
// fonts, an image's object number is fully known at load time, so there is
// no reason to defer its emission to Close.
func (d *Document) LoadImage(data []byte) (ImageID, error) {
	pm, err := rasterdecode.Decode(data)
	if err != nil {
		return NoImage, err
	}

	smaskObj := 0
	if pm.Alpha != nil {
		obj, err := d.emitImageXObject(pm.Width, pm.Height, "DeviceGray", 1, pm.Alpha, 0)
		if err != nil {
			return NoImage, err
		}
		smaskObj = obj
	}

	colorSpace := "DeviceRGB"
	comps := 3
	if pm.ColorSpace == rasterdecode.DeviceGray {
		colorSpace = "DeviceGray"
		comps = 1
	}
	obj, err := d.emitImageXObject(pm.Width, pm.Height, colorSpace, comps, pm.Pixels, smaskObj)
	if err != nil {
		return NoImage, err
	}

	r := d.registry
	r.images = append(r.images, imageEntry{objNum: obj, smaskObj: smaskObj, width: pm.Width, height: pm.Height, colorSpace: colorSpace})
	return ImageID(len(r.images) - 1), nil
}

func (d *Document) emitImageXObject(w, h int, colorSpace string, comps int, pixels []byte, smaskObj int) (int, error) {
	compressed, err := deflate(pixels)
	if err != nil {
		return 0, errs.Wrap(errs.IOError, "pdfcore: compress image:", err)
	}
	var b bytes.Buffer
	b.WriteString("<<\n /Type /XObject\n /Subtype /Image\n")
	fmt.Fprintf(&b, " /Width %d\n /Height %d\n /BitsPerComponent 8\n /ColorSpace /%s\n", w, h, colorSpace)
	fmt.Fprintf(&b, " /Length %d\n /Filter /FlateDecode\n", len(compressed))
	if smaskObj != 0 {
		fmt.Fprintf(&b, " /SMask %d 0 R\n", smaskObj)
	}
	b.WriteString(">>\nstream\n")
	b.Write(compressed)
	b.WriteString("\nendstream")
	return d.addIndirectObject(b.Bytes())
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFont parses a TrueType/OpenType font file and registers it. No object
// is emitted yet: embedding is deferred to Close, once every subset a
// rendering pass touched is known (see flushFonts).
func (d *Document) LoadFont(data []byte) (FontID, error) {
	h, err := fontsrc.Open(data)
	if err != nil {
		return NoFont, err
	}
	return d.registry.LoadFont(h), nil
}

// LoadICCProfile registers an ICC color space, emitting its
// `[/ICCBased <stream>]` object immediately.
func (d *Document) LoadICCProfile(profile []byte, channels int) (ICCSpaceID, error) {
	compressed, err := deflate(profile)
	if err != nil {
		return NoICCSpace, errs.Wrap(errs.IOError, "pdfcore: compress icc profile:", err)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "<<\n /N %d\n /Length %d\n /Filter /FlateDecode\n>>\nstream\n", channels, len(compressed))
	b.Write(compressed)
	b.WriteString("\nendstream")
	streamObj, err := d.addIndirectObject(b.Bytes())
	if err != nil {
		return NoICCSpace, err
	}
	obj, err := d.addIndirectObject([]byte(fmt.Sprintf("[/ICCBased %d 0 R]", streamObj)))
	if err != nil {
		return NoICCSpace, err
	}
	r := d.registry
	r.iccSpaces = append(r.iccSpaces, iccSpaceEntry{objNum: obj, channels: channels, profile: profile})
	return ICCSpaceID(len(r.iccSpaces) - 1), nil
}

// AddLabColorSpace registers a CIE L*a*b* color space with the given white
// point, emitting its `[/Lab <<...>>]` object immediately.
func (d *Document) AddLabColorSpace(whitePoint [3]float64) (LabSpaceID, error) {
	body := fmt.Sprintf("[/Lab << /WhitePoint [%s %s %s] /Range [-100 100 -100 100] >>]",
		fmtNum(whitePoint[0]), fmtNum(whitePoint[1]), fmtNum(whitePoint[2]))
	obj, err := d.addIndirectObject([]byte(body))
	if err != nil {
		return LabSpaceID(invalidID), err
	}
	r := d.registry
	r.labSpaces = append(r.labSpaces, labSpaceEntry{objNum: obj, whitePoint: whitePoint})
	return LabSpaceID(len(r.labSpaces) - 1), nil
}

// CreateSeparation registers a named spot color with a fallback CMYK tint,
// emitting a PDF Function Type 2 object followed by the
// `[/Separation /<name> /DeviceCMYK <fn>]` color-space object.
func (d *Document) CreateSeparation(name string, fallback DeviceCMYK) (SeparationID, error) {
	fnBody := []byte(fmt.Sprintf("<<\n /FunctionType 2\n /Domain [0 1]\n /C0 [0 0 0 0]\n /C1 [%s %s %s %s]\n /N 1\n>>",
		fmtNum(float64(fallback.C)), fmtNum(float64(fallback.M)), fmtNum(float64(fallback.Y)), fmtNum(float64(fallback.K))))
	fnObj, err := d.addIndirectObject(fnBody)
	if err != nil {
		return NoSeparation, err
	}

	csBody := []byte(fmt.Sprintf("[/Separation %s /DeviceCMYK %d 0 R]", escapeName(name), fnObj))
	obj, err := d.addIndirectObject(csBody)
	if err != nil {
		return NoSeparation, err
	}

	r := d.registry
	r.separations = append(r.separations, separationEntry{objNum: obj, name: name, fallback: fallback, fnObj: fnObj})
	return SeparationID(len(r.separations) - 1), nil
}

// AddGraphicsState registers an ExtGState dictionary and returns a fresh id;
// per spec, deduplication is not required.
func (d *Document) AddGraphicsState(gs GraphicsStateDict) (GraphicsStateID, error) {
	obj, err := d.addIndirectObject(gstateDictBody(gs))
	if err != nil {
		return NoGraphicsState, err
	}
	r := d.registry
	name := fmt.Sprintf("GS%d", len(r.gstates))
	r.gstates = append(r.gstates, gstateEntry{objNum: obj, name: name, dict: gs})
	return GraphicsStateID(len(r.gstates) - 1), nil
}

func gstateDictBody(gs GraphicsStateDict) []byte {
	var b bytes.Buffer
	b.WriteString("<<\n /Type /ExtGState\n")
	if gs.LineWidth != nil {
		fmt.Fprintf(&b, " /LW %s\n", fmtNum(*gs.LineWidth))
	}
	if gs.LineCap != nil {
		fmt.Fprintf(&b, " /LC %d\n", *gs.LineCap)
	}
	if gs.LineJoin != nil {
		fmt.Fprintf(&b, " /LJ %d\n", *gs.LineJoin)
	}
	if gs.MiterLimit != nil {
		fmt.Fprintf(&b, " /ML %s\n", fmtNum(*gs.MiterLimit))
	}
	if gs.RenderingIntent != nil {
		fmt.Fprintf(&b, " /RI /%s\n", *gs.RenderingIntent)
	}
	if gs.StrokeOverprint != nil {
		fmt.Fprintf(&b, " /OP %s\n", boolName(*gs.StrokeOverprint))
	}
	if gs.FillOverprint != nil {
		fmt.Fprintf(&b, " /op %s\n", boolName(*gs.FillOverprint))
	}
	if gs.OverprintMode != nil {
		fmt.Fprintf(&b, " /OPM %d\n", *gs.OverprintMode)
	}
	if gs.Flatness != nil {
		fmt.Fprintf(&b, " /FL %s\n", fmtNum(*gs.Flatness))
	}
	if gs.Smoothness != nil {
		fmt.Fprintf(&b, " /SM %s\n", fmtNum(*gs.Smoothness))
	}
	if gs.StrokeAdjustment != nil {
		fmt.Fprintf(&b, " /SA %s\n", boolName(*gs.StrokeAdjustment))
	}
	if gs.BlendMode != nil {
		fmt.Fprintf(&b, " /BM /%s\n", *gs.BlendMode)
	}
	if gs.StrokeAlpha != nil {
		fmt.Fprintf(&b, " /CA %s\n", fmtNum(*gs.StrokeAlpha))
	}
	if gs.FillAlpha != nil {
		fmt.Fprintf(&b, " /ca %s\n", fmtNum(*gs.FillAlpha))
	}
	if gs.AlphaIsShape != nil {
		fmt.Fprintf(&b, " /AIS %s\n", boolName(*gs.AlphaIsShape))
	}
	if gs.TextKnockout != nil {
		fmt.Fprintf(&b, " /TK %s\n", boolName(*gs.TextKnockout))
	}
	b.WriteString(">>")
	return b.Bytes()
}

func boolName(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// AddFunction registers a raw PDF Function object body (without the
// enclosing << >>) and emits it immediately.
func (d *Document) AddFunction(body string) (FunctionID, error) {
	obj, err := d.addIndirectObject([]byte("<<\n" + body + "\n>>"))
	if err != nil {
		return FunctionID(invalidID), err
	}
	r := d.registry
	r.functions = append(r.functions, functionEntry{objNum: obj})
	return FunctionID(len(r.functions) - 1), nil
}

// AddShading registers a raw PDF Shading dictionary body and emits it
// immediately.
func (d *Document) AddShading(body string) (ShadingID, error) {
	obj, err := d.addIndirectObject([]byte("<<\n" + body + "\n>>"))
	if err != nil {
		return ShadingID(invalidID), err
	}
	r := d.registry
	r.shadings = append(r.shadings, shadingEntry{objNum: obj})
	return ShadingID(len(r.shadings) - 1), nil
}

// AddPattern registers a shading pattern (PatternType 2) wrapping an
// already-registered shading, emitting its object immediately: unlike
// fonts, a pattern's object number is fully known once its shading exists.
func (d *Document) AddPattern(shading ShadingID) (PatternID, error) {
	if !shading.valid() || int(shading) >= len(d.registry.shadings) {
		return NoPattern, errs.Wrap(errs.BadID, "pdfcore: invalid shading id")
	}
	shadingObj := d.registry.shadings[int(shading)].objNum
	body := fmt.Sprintf("<<\n /Type /Pattern\n /PatternType 2\n /Shading %d 0 R\n>>", shadingObj)
	obj, err := d.addIndirectObject([]byte(body))
	if err != nil {
		return NoPattern, err
	}
	r := d.registry
	r.patterns = append(r.patterns, patternEntry{objNum: obj})
	return PatternID(len(r.patterns) - 1), nil
}

// AddFormXObject finalizes pb as a reusable form XObject instead of a page:
// its resource dictionary and content stream are emitted immediately, since
// (unlike a page) it never contributes to the page-tree root's predicted
// object number.
func (d *Document) AddFormXObject(pb *PageBuilder, bbox Rect) (FormXObjectID, error) {
	content := pb.buf.Bytes()
	resBody, _, err := pb.finalize(d.registry)
	if err != nil {
		return NoFormXObject, err
	}
	resObj, err := d.addIndirectObject(resBody)
	if err != nil {
		return NoFormXObject, err
	}

	var b bytes.Buffer
	b.WriteString("<<\n /Type /XObject\n /Subtype /Form\n /FormType 1\n")
	fmt.Fprintf(&b, " /BBox [%s %s %s %s]\n", fmtNum(bbox.Llx), fmtNum(bbox.Lly), fmtNum(bbox.Urx), fmtNum(bbox.Ury))
	fmt.Fprintf(&b, " /Resources %d 0 R\n", resObj)
	fmt.Fprintf(&b, " /Length %d\n>>\nstream\n", len(content))
	b.Write(content)
	b.WriteString("\nendstream")
	obj, err := d.addIndirectObject(b.Bytes())
	if err != nil {
		return NoFormXObject, err
	}
	r := d.registry
	r.forms = append(r.forms, formXObjectEntry{objNum: obj, bbox: bbox})
	return FormXObjectID(len(r.forms) - 1), nil
}

// AddAnnotationObj registers a raw PDF annotation dictionary body and emits
// it immediately, returning the id to pass to Document.AddAnnotation.
func (d *Document) AddAnnotationObj(body string) (AnnotationID, error) {
	obj, err := d.addIndirectObject([]byte("<<\n" + body + "\n>>"))
	if err != nil {
		return AnnotationID(invalidID), err
	}
	return AnnotationID(obj), nil
}
