package pdfcore

import (
	"bytes"
	"fmt"
	"math"

	"github.com/cdvelop/pdfcore/errs"
)

// PageBuilder records content-stream operators for one page (or form
// XObject) and, in parallel, the used-resource set that must appear in the
// page's resource dictionary at Finalize. It holds a live *Registry rather
// than returning an immutable artifact at finalize time: font subset
// assignment and color re-expression must happen while operators are being
// emitted, not only afterward, which the registry's arena+index design
// (entries addressed by stable index, never moved) makes safe to share.
type PageBuilder struct {
	registry  *Registry
	converter *ColorConverter
	outputCS  OutputColorSpace

	buf       bytes.Buffer
	finalized bool

	usedImages      map[ImageID]struct{}
	usedFontSubsets map[FontSubsetID]struct{}
	usedICC         map[ICCSpaceID]struct{}
	usedLab         map[LabSpaceID]struct{}
	usedSeparations map[SeparationID]struct{}
	usedAllSep      bool
	usedGStates     map[GraphicsStateID]struct{}
	usedPatterns    map[PatternID]struct{}
	usedForms       map[FormXObjectID]struct{}

	inText    bool
	tjOpen    bool
	curSubset FontSubsetID
	haveFont  bool
}

func newPageBuilder(r *Registry, c *ColorConverter, outputCS OutputColorSpace) *PageBuilder {
	return &PageBuilder{
		registry:        r,
		converter:       c,
		outputCS:        outputCS,
		usedImages:      map[ImageID]struct{}{},
		usedFontSubsets: map[FontSubsetID]struct{}{},
		usedICC:         map[ICCSpaceID]struct{}{},
		usedLab:         map[LabSpaceID]struct{}{},
		usedSeparations: map[SeparationID]struct{}{},
		usedGStates:     map[GraphicsStateID]struct{}{},
		usedPatterns:    map[PatternID]struct{}{},
		usedForms:       map[FormXObjectID]struct{}{},
	}
}

func (p *PageBuilder) op(s string) { p.buf.WriteString(s); p.buf.WriteByte('\n') }

// --- Graphics state stack ---

// Save emits `q`.
func (p *PageBuilder) Save() { p.op("q") }

// Restore emits `Q`.
func (p *PageBuilder) Restore() { p.op("Q") }

// Scoped runs fn between a save and a guaranteed restore, even if fn panics.
func (p *PageBuilder) Scoped(fn func(*PageBuilder)) {
	p.Save()
	defer p.Restore()
	fn(p)
}

// GState saves the graphics state and returns a release closure that
// restores it; call release on every exit path (typically via defer).
func (p *PageBuilder) GState() (release func()) {
	p.Save()
	return p.Restore
}

// --- Path construction ---

func (p *PageBuilder) MoveTo(x, y float64) { p.op(fmt.Sprintf("%s %s m", fmtNum(x), fmtNum(y))) }
func (p *PageBuilder) LineTo(x, y float64) { p.op(fmt.Sprintf("%s %s l", fmtNum(x), fmtNum(y))) }
func (p *PageBuilder) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	p.op(fmt.Sprintf("%s %s %s %s %s %s c", fmtNum(x1), fmtNum(y1), fmtNum(x2), fmtNum(y2), fmtNum(x3), fmtNum(y3)))
}
func (p *PageBuilder) Rectangle(x, y, w, h float64) {
	p.op(fmt.Sprintf("%s %s %s %s re", fmtNum(x), fmtNum(y), fmtNum(w), fmtNum(h)))
}
func (p *PageBuilder) ClosePath() { p.op("h") }

// --- Painting ---

func (p *PageBuilder) Stroke()        { p.op("S") }
func (p *PageBuilder) CloseStroke()   { p.op("s") }
func (p *PageBuilder) Fill()          { p.op("f") }
func (p *PageBuilder) FillStroke()    { p.op("B") }
func (p *PageBuilder) FillStrokeEO()  { p.op("B*") }
func (p *PageBuilder) EndPath()       { p.op("n") }
func (p *PageBuilder) Clip()          { p.op("W") }
func (p *PageBuilder) ClipEvenOdd()   { p.op("W*") }

// --- Line parameters ---

// SetLineWidth emits `w`, rejecting a negative width per the invariant.
func (p *PageBuilder) SetLineWidth(width float64) error {
	if width < 0 {
		return errs.Wrap(errs.NegativeLineWidth, "pdfcore: negative line width", width)
	}
	p.op(fmt.Sprintf("%s w", fmtNum(width)))
	return nil
}

func (p *PageBuilder) SetLineCap(style int)  { p.op(fmtInt(style) + " J") }
func (p *PageBuilder) SetLineJoin(style int) { p.op(fmtInt(style) + " j") }

// --- CTM ---

// Concat emits `cm` with the six matrix components. A degenerate matrix
// (zero determinant, i.e. the matrix collapses a dimension) is rejected:
// the spec requires translate/scale/rotate helpers never emit such a
// matrix, so this guard catches the same mistake on the raw entry point.
func (p *PageBuilder) Concat(a, b, c, d, e, f float64) error {
	if a*d-b*c == 0 {
		return errs.Wrap(errs.FormatError, "pdfcore: degenerate cm matrix (zero determinant)")
	}
	p.op(fmt.Sprintf("%s %s %s %s %s %s cm", fmtNum(a), fmtNum(b), fmtNum(c), fmtNum(d), fmtNum(e), fmtNum(f)))
	return nil
}

// Translate emits the identity CTM with (tx,ty) in the translation slots.
func (p *PageBuilder) Translate(tx, ty float64) {
	p.op(fmt.Sprintf("1 0 0 1 %s %s cm", fmtNum(tx), fmtNum(ty)))
}

// ScaleCTM emits a pure scale matrix; sx and sy must both be nonzero.
func (p *PageBuilder) ScaleCTM(sx, sy float64) error {
	return p.Concat(sx, 0, 0, sy, 0, 0)
}

// RotateCTM emits `cm(cos, sin, -sin, cos, 0, 0)` for angleRadians.
func (p *PageBuilder) RotateCTM(angleRadians float64) {
	c, s := math.Cos(angleRadians), math.Sin(angleRadians)
	p.op(fmt.Sprintf("%s %s %s %s 0 0 cm", fmtNum(c), fmtNum(s), fmtNum(-s), fmtNum(c)))
}

// --- Color selection ---

// SetStrokeColor emits RG/G/K (or a named color space selection) for the
// stroking color, without re-expression: the stroking path draws lines and
// curve outlines, which callers already describe in the document's device
// space in practice, so only non-stroking fills carry the re-expression
// cost.
func (p *PageBuilder) SetStrokeColor(v any) error {
	switch c := v.(type) {
	case DeviceRGB:
		p.op(fmt.Sprintf("%s %s %s RG", fmtNum(float64(c.R)), fmtNum(float64(c.G)), fmtNum(float64(c.B))))
	case DeviceGray:
		p.op(fmt.Sprintf("%s G", fmtNum(float64(c.V))))
	case DeviceCMYK:
		p.op(fmt.Sprintf("%s %s %s %s K", fmtNum(float64(c.C)), fmtNum(float64(c.M)), fmtNum(float64(c.Y)), fmtNum(float64(c.K))))
	case ICCColor, LabColor, SeparationColor, PatternColor:
		return p.namedColor(c, true)
	default:
		return errs.Wrap(errs.ColorComponentOutOfRange, "pdfcore: unsupported stroke color")
	}
	return nil
}

// SetFillColor emits rg/g/k (or a named color space selection) for the
// non-stroking color. When v is a device color in a space other than the
// document's output color space, it is re-expressed through the color
// converter before emission.
func (p *PageBuilder) SetFillColor(v any) error {
	switch v.(type) {
	case DeviceRGB, DeviceGray, DeviceCMYK:
		reexpressed, err := p.converter.reexpress(p.outputCS, v)
		if err != nil {
			return err
		}
		v = reexpressed
	}
	switch c := v.(type) {
	case DeviceRGB:
		p.op(fmt.Sprintf("%s %s %s rg", fmtNum(float64(c.R)), fmtNum(float64(c.G)), fmtNum(float64(c.B))))
	case DeviceGray:
		p.op(fmt.Sprintf("%s g", fmtNum(float64(c.V))))
	case DeviceCMYK:
		p.op(fmt.Sprintf("%s %s %s %s k", fmtNum(float64(c.C)), fmtNum(float64(c.M)), fmtNum(float64(c.Y)), fmtNum(float64(c.K))))
	case ICCColor, LabColor, SeparationColor, PatternColor:
		return p.namedColor(c, false)
	default:
		return errs.Wrap(errs.ColorComponentOutOfRange, "pdfcore: unsupported fill color")
	}
	return nil
}

func (p *PageBuilder) namedColor(v any, stroking bool) error {
	var csName string
	var comps []float64
	switch c := v.(type) {
	case ICCColor:
		if !c.Space.valid() || int(c.Space) >= len(p.registry.iccSpaces) {
			return errs.Wrap(errs.BadID, "pdfcore: invalid icc color space id")
		}
		p.usedICC[c.Space] = struct{}{}
		csName = fmt.Sprintf("CSpace%d", p.registry.iccSpaces[int(c.Space)].objNum)
		for _, v := range c.Values {
			comps = append(comps, float64(v))
		}
	case LabColor:
		if int(c.Space) >= len(p.registry.labSpaces) {
			return errs.Wrap(errs.BadID, "pdfcore: invalid lab color space id")
		}
		p.usedLab[c.Space] = struct{}{}
		csName = fmt.Sprintf("CSpace%d", p.registry.labSpaces[int(c.Space)].objNum)
		comps = []float64{c.L, c.A, c.B}
	case SeparationColor:
		if !c.Space.valid() || int(c.Space) >= len(p.registry.separations) {
			return errs.Wrap(errs.BadID, "pdfcore: invalid separation id")
		}
		p.usedSeparations[c.Space] = struct{}{}
		comps = []float64{float64(c.V)}
		if p.registry.separations[int(c.Space)].name == "All" {
			p.usedAllSep = true
			csName = "All"
		} else {
			csName = fmt.Sprintf("CSpace%d", p.registry.separations[int(c.Space)].objNum)
		}
	case PatternColor:
		if !c.Pattern.valid() || int(c.Pattern) >= len(p.registry.patterns) {
			return errs.Wrap(errs.BadID, "pdfcore: invalid pattern id")
		}
		p.usedPatterns[c.Pattern] = struct{}{}
		obj := p.registry.patterns[int(c.Pattern)].objNum
		p.op("/Pattern " + opName(stroking, true))
		p.op(fmt.Sprintf("/P%d %s", obj, opName(stroking, false)))
		return nil
	}
	p.op("/" + csName + " " + opName(stroking, true))
	var b bytes.Buffer
	for _, v := range comps {
		b.WriteString(fmtNum(v))
		b.WriteByte(' ')
	}
	b.WriteString(opName(stroking, false))
	p.op(b.String())
	return nil
}

func opName(stroking, isCS bool) string {
	if isCS {
		if stroking {
			return "CS"
		}
		return "cs"
	}
	if stroking {
		return "SCN"
	}
	return "scn"
}

// --- External resources ---

// DrawImage emits `/Image<N> Do` for a loaded image.
func (p *PageBuilder) DrawImage(id ImageID) error {
	if !id.valid() || int(id) >= len(p.registry.images) {
		return errs.Wrap(errs.BadID, "pdfcore: invalid image id")
	}
	p.usedImages[id] = struct{}{}
	obj := p.registry.images[int(id)].objNum
	p.op(fmt.Sprintf("/Image%d Do", obj))
	return nil
}

// DrawForm emits `/Form<N> Do` for a form XObject.
func (p *PageBuilder) DrawForm(id FormXObjectID) error {
	if !id.valid() || int(id) >= len(p.registry.forms) {
		return errs.Wrap(errs.BadID, "pdfcore: invalid form xobject id")
	}
	p.usedForms[id] = struct{}{}
	obj := p.registry.forms[int(id)].objNum
	p.op(fmt.Sprintf("/Form%d Do", obj))
	return nil
}

// SetGState emits `/<name> gs` for a registered ExtGState.
func (p *PageBuilder) SetGState(id GraphicsStateID) error {
	if !id.valid() || int(id) >= len(p.registry.gstates) {
		return errs.Wrap(errs.BadID, "pdfcore: invalid graphics state id")
	}
	p.usedGStates[id] = struct{}{}
	p.op("/" + p.registry.gstates[int(id)].name + " gs")
	return nil
}

// finalize produces the resource dictionary and content-stream objects for
// the assembler. The builder is unusable afterward; re-finalizing fails.
func (p *PageBuilder) finalize(r *Registry) (resourceBody, streamBody []byte, err error) {
	if p.finalized {
		return nil, nil, errs.Wrap(errs.DoubleFinalize, "pdfcore: page builder already finalized")
	}
	p.finalized = true
	resourceBody = p.resourceDictBody()

	content := p.buf.Bytes()
	var sb bytes.Buffer
	fmt.Fprintf(&sb, "<<\n /Length %d\n>>\nstream\n", len(content))
	sb.Write(content)
	sb.WriteString("\nendstream")
	return resourceBody, sb.Bytes(), nil
}

func (p *PageBuilder) resourceDictBody() []byte {
	var b bytes.Buffer
	b.WriteString("<<\n")

	if len(p.usedImages)+len(p.usedForms) > 0 {
		b.WriteString(" /XObject <<")
		for id := range p.usedImages {
			obj := p.registry.images[int(id)].objNum
			fmt.Fprintf(&b, " /Image%d %d 0 R", obj, obj)
		}
		for id := range p.usedForms {
			obj := p.registry.forms[int(id)].objNum
			fmt.Fprintf(&b, " /Form%d %d 0 R", obj, obj)
		}
		b.WriteString(" >>\n")
	}

	if len(p.usedPatterns) > 0 {
		b.WriteString(" /Pattern <<")
		for id := range p.usedPatterns {
			obj := p.registry.patterns[int(id)].objNum
			fmt.Fprintf(&b, " /P%d %d 0 R", obj, obj)
		}
		b.WriteString(" >>\n")
	}

	if len(p.usedFontSubsets) > 0 {
		b.WriteString(" /Font <<")
		for fs := range p.usedFontSubsets {
			sub := &p.registry.fonts[int(fs.Font)].subsets[fs.Index]
			fmt.Fprintf(&b, " /SFont%d-%d %d 0 R", int(fs.Font), fs.Index, sub.objNum)
		}
		b.WriteString(" >>\n")
	}

	if len(p.usedICC)+len(p.usedLab)+len(p.usedSeparations) > 0 || p.usedAllSep {
		b.WriteString(" /ColorSpace <<")
		for id := range p.usedICC {
			obj := p.registry.iccSpaces[int(id)].objNum
			fmt.Fprintf(&b, " /CSpace%d %d 0 R", obj, obj)
		}
		for id := range p.usedLab {
			obj := p.registry.labSpaces[int(id)].objNum
			fmt.Fprintf(&b, " /CSpace%d %d 0 R", obj, obj)
		}
		for id := range p.usedSeparations {
			sep := p.registry.separations[int(id)]
			if sep.name == "All" {
				continue
			}
			fmt.Fprintf(&b, " /CSpace%d %d 0 R", sep.objNum, sep.objNum)
		}
		if p.usedAllSep {
			for id := range p.usedSeparations {
				sep := p.registry.separations[int(id)]
				if sep.name == "All" {
					fmt.Fprintf(&b, " /All %d 0 R", sep.objNum)
					break
				}
			}
		}
		b.WriteString(" >>\n")
	}

	if len(p.usedGStates) > 0 {
		b.WriteString(" /ExtGState <<")
		for id := range p.usedGStates {
			g := p.registry.gstates[int(id)]
			fmt.Fprintf(&b, " /%s %d 0 R", g.name, g.objNum)
		}
		b.WriteString(" >>\n")
	}

	b.WriteString(">>")
	return b.Bytes()
}
