package pdfcore

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/cdvelop/pdfcore/errs"
)

// binary marker bytes written immediately after the header, per the PDF 1.7
// convention of declaring the file binary to naive line-ending transcoders.
var binaryMarker = []byte{'%', 0xe5, 0xf6, 0xc4, 0xd6, 0x0a}

// Document is the assembler: the only component that writes bytes to the
// output. It owns the indirect-object offset table, the page tree, and the
// resource registry every page builder draws against.
type Document struct {
	opts      Options
	registry  *Registry
	converter *ColorConverter

	f       *os.File
	offsets []int // offsets[i] is object i's byte offset; index 0 unused
	pos     int
	nextObj int

	pending      []pendingPage
	outlines     []outlineNode
	ocgs         []ocgEntry
	closed       bool
	failed       bool
	firstErr     error
}

type pendingPage struct {
	builder    *PageBuilder
	box        Rect
	rotate     int
	annots     []AnnotationID
	altBoxes   map[PageBoxKind]Rect
	transition string // raw /Trans dictionary body, or ""
}

type outlineNode struct {
	title  string
	dest   PageID
	parent int // index into outlines, -1 for root-level
	objNum int
}

type ocgEntry struct {
	id      OCGID
	name    string
	visible bool
	objNum  int
}

// OpenDocument creates the output file and writes the header, binary
// marker, and info dictionary (object 1). Every subsequent mutation goes
// through add_indirect_object per the write protocol.
func OpenDocument(path string, opts Options) (*Document, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Wrap(errs.IOError, "pdfcore: create", path, ":", err)
	}
	return openWith(f, opts)
}

func openWith(f *os.File, opts Options) (*Document, error) {
	if opts.DefaultPageBox == (Rect{}) {
		opts.DefaultPageBox = DefaultLetterBox
	}
	conv := NewColorConverter(opts.ICCProfiles, opts.logf)
	d := &Document{
		opts:      opts,
		registry:  newRegistry(conv),
		converter: conv,
		f:         f,
		offsets:   []int{0}, // index 0 reserved for the free-list head, never read
		nextObj:   2,        // object 1 is the info dictionary
	}
	if err := d.write([]byte("%PDF-1.7\n")); err != nil {
		return nil, err
	}
	if err := d.write(binaryMarker); err != nil {
		return nil, err
	}
	if err := d.writeInfoObject(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) writeInfoObject() error {
	now := time.Now()
	var b bytes.Buffer
	b.WriteString("<<\n")
	if d.opts.Title != "" {
		b.WriteString(" /Title " + docInfoString(d.opts.Title) + "\n")
	}
	if d.opts.Author != "" {
		b.WriteString(" /Author " + docInfoString(d.opts.Author) + "\n")
	}
	b.WriteString(" /Producer (pdfcore)\n")
	b.WriteString(" /CreationDate (D:" + now.Format("20060102150405") + ")\n")
	b.WriteString(">>")
	d.offsets = append(d.offsets, d.pos)
	return d.emitObjectBody(1, b.Bytes())
}

// write appends raw bytes to the output, failing the document permanently
// on the first I/O error per the stop-on-error model.
func (d *Document) write(b []byte) error {
	if d.failed {
		return d.firstErr
	}
	n, err := d.f.Write(b)
	d.pos += n
	if err != nil {
		d.failed = true
		d.firstErr = errs.Wrap(errs.IOError, "pdfcore: write:", err)
		d.f.Close()
		return d.firstErr
	}
	return nil
}

func (d *Document) emitObjectBody(objNum int, body []byte) error {
	if err := d.write([]byte(fmt.Sprintf("%d 0 obj\n", objNum))); err != nil {
		return err
	}
	if err := d.write(body); err != nil {
		return err
	}
	return d.write([]byte("\nendobj\n"))
}

// addIndirectObject implements add_indirect_object: records the current
// offset, writes the "N 0 obj" wrapper around body, and returns the
// allocated object number.
func (d *Document) addIndirectObject(body []byte) (int, error) {
	if d.failed {
		return 0, d.firstErr
	}
	n := d.nextObj
	d.nextObj++
	d.offsets = append(d.offsets, d.pos)
	if err := d.emitObjectBody(n, body); err != nil {
		return 0, err
	}
	return n, nil
}

// Registry exposes the resource registry so resource loaders (images,
// fonts, color spaces, graphics states) can register entries and, where
// the resource type emits immediately, call back into addIndirectObject.
func (d *Document) Registry() *Registry { return d.registry }

// NewPage creates a page builder bound to this document's registry and
// color converter. Nothing is queued or written until it is passed to
// AddPage.
func (d *Document) NewPage() *PageBuilder {
	return newPageBuilder(d.registry, d.converter, d.opts.OutputColorSpace)
}

// AddPage queues a not-yet-finalized page builder for emission at Close
// (which finalizes it; an already finalized builder makes Close fail), with the given media box and page rotation in degrees
// (0/90/180/270). Object numbers for the page's resource dictionary,
// content stream, and page object are only allocated when the document
// closes, so that the page-tree root's predicted object number invariant
// holds.
func (d *Document) AddPage(pb *PageBuilder, box Rect, rotate int) (PageID, error) {
	if d.closed {
		return NoPage, errs.Wrap(errs.DoubleFinalize, "pdfcore: document already closed")
	}
	if box == (Rect{}) {
		box = d.opts.DefaultPageBox
	}
	d.pending = append(d.pending, pendingPage{builder: pb, box: box, rotate: rotate})
	return PageID(len(d.pending) - 1), nil
}

// SetPageBox records an alternate page boundary (CropBox/BleedBox/TrimBox/
// ArtBox) for an already-queued page.
func (d *Document) SetPageBox(page PageID, kind PageBoxKind, box Rect) error {
	if int(page) < 0 || int(page) >= len(d.pending) {
		return errs.Wrap(errs.BadID, "pdfcore: invalid page id")
	}
	pp := &d.pending[int(page)]
	if pp.altBoxes == nil {
		pp.altBoxes = map[PageBoxKind]Rect{}
	}
	pp.altBoxes[kind] = box
	return nil
}

// SetTransition records a raw /Trans dictionary body (without the
// enclosing << >>) for an already-queued page's presentation transition.
func (d *Document) SetTransition(page PageID, body string) error {
	if int(page) < 0 || int(page) >= len(d.pending) {
		return errs.Wrap(errs.BadID, "pdfcore: invalid page id")
	}
	d.pending[int(page)].transition = body
	return nil
}

// AddAnnotation attaches an annotation to an already-queued page.
func (d *Document) AddAnnotation(page PageID, a AnnotationID) error {
	if int(page) < 0 || int(page) >= len(d.pending) {
		return errs.Wrap(errs.BadID, "pdfcore: invalid page id")
	}
	d.pending[int(page)].annots = append(d.pending[int(page)].annots, a)
	return nil
}

// AddOutline registers a bookmark entry pointing at a page, returning its
// OutlineID. parent == NoOutlineParent places it at the top level.
func (d *Document) AddOutline(title string, dest PageID, parent OutlineID) OutlineID {
	parentIdx := -1
	if parent.valid() {
		parentIdx = int(parent)
	}
	d.outlines = append(d.outlines, outlineNode{title: title, dest: dest, parent: parentIdx})
	return OutlineID(len(d.outlines) - 1)
}

// NoOutlineParent is passed to AddOutline for a top-level entry.
const NoOutlineParent = OutlineID(invalidID)

// AddOCG registers an optional content group (a togglable layer) and
// returns its id. Close lists every group in the catalog's /OCProperties;
// no page or content operator in this package references the id.
func (d *Document) AddOCG(name string, visibleByDefault bool) OCGID {
	id := OCGID(len(d.ocgs))
	d.ocgs = append(d.ocgs, ocgEntry{id: id, name: name, visible: visibleByDefault})
	return id
}

// Close runs the full close protocol: flush pages, page tree, catalog,
// xref table, trailer. Double close is an error. A failure partway leaves
// the partial file for the caller to remove, per the stop-on-error model.
func (d *Document) Close() error {
	if d.closed {
		return errs.Wrap(errs.DoubleFinalize, "pdfcore: document already closed")
	}
	d.closed = true
	defer d.f.Close()

	if err := d.flushFonts(); err != nil {
		return err
	}

	pageObjNums := make([]int, len(d.pending))
	// Each page costs exactly three objects (resource dict, content
	// stream, page object) emitted in that fixed order, so the page-tree
	// root's object number is known before the first page is flushed.
	pagesRootObj := d.nextObj + 3*len(d.pending)
	ocgObjNums := make([]int, len(d.ocgs))

	for i := range d.pending {
		pp := &d.pending[i]
		resBody, streamBody, err := pp.builder.finalize(d.registry)
		if err != nil {
			return err
		}
		resObj, err := d.addIndirectObject(resBody)
		if err != nil {
			return err
		}
		contentObj, err := d.addIndirectObject(streamBody)
		if err != nil {
			return err
		}
		pageObj, err := d.addIndirectObject(d.pageDictBody(pp, resObj, contentObj, pagesRootObj))
		if err != nil {
			return err
		}
		pageObjNums[i] = pageObj
	}

	if pagesRootObj != d.nextObj {
		return errs.Wrap(errs.IOError, "pdfcore: page-tree object number prediction violated")
	}
	if _, err := d.addIndirectObject(d.pagesRootBody(pageObjNums)); err != nil {
		return err
	}

	for i, g := range d.ocgs {
		obj, err := d.addIndirectObject([]byte("<<\n /Type /OCG\n /Name " + docInfoString(g.name) + "\n>>"))
		if err != nil {
			return err
		}
		ocgObjNums[i] = obj
	}

	outlinesRootObj := 0
	if len(d.outlines) > 0 {
		var err error
		outlinesRootObj, err = d.flushOutlines(pageObjNums)
		if err != nil {
			return err
		}
	}

	catalogObj, err := d.addIndirectObject(d.catalogBody(pagesRootObj, outlinesRootObj, ocgObjNums))
	if err != nil {
		return err
	}

	startxref := d.pos
	if err := d.writeXref(); err != nil {
		return err
	}
	return d.writeTrailer(catalogObj, startxref)
}

func (d *Document) pageDictBody(pp *pendingPage, resObj, contentObj, parentObj int) []byte {
	var b bytes.Buffer
	b.WriteString("<<\n /Type /Page\n /Parent " + fmt.Sprintf("%d 0 R", parentObj) + "\n")
	b.WriteString(fmt.Sprintf(" /MediaBox [%s %s %s %s]\n", fmtNum(pp.box.Llx), fmtNum(pp.box.Lly), fmtNum(pp.box.Urx), fmtNum(pp.box.Ury)))
	if pp.rotate != 0 {
		b.WriteString(fmt.Sprintf(" /Rotate %d\n", pp.rotate))
	}
	for kind, box := range pp.altBoxes {
		b.WriteString(fmt.Sprintf(" /%s [%s %s %s %s]\n", kind.pdfName(), fmtNum(box.Llx), fmtNum(box.Lly), fmtNum(box.Urx), fmtNum(box.Ury)))
	}
	if pp.transition != "" {
		b.WriteString(" /Trans <<" + pp.transition + ">>\n")
	}
	b.WriteString(fmt.Sprintf(" /Resources %d 0 R\n", resObj))
	b.WriteString(fmt.Sprintf(" /Contents %d 0 R\n", contentObj))
	if len(pp.annots) > 0 {
		b.WriteString(" /Annots [")
		for i, a := range pp.annots {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(fmt.Sprintf("%d 0 R", int(a)))
		}
		b.WriteString("]\n")
	}
	b.WriteString(">>")
	return b.Bytes()
}

func (d *Document) pagesRootBody(pageObjNums []int) []byte {
	var b bytes.Buffer
	b.WriteString("<<\n /Type /Pages\n /Kids [")
	for i, n := range pageObjNums {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(fmt.Sprintf("%d 0 R", n))
	}
	b.WriteString(fmt.Sprintf("]\n /Count %d\n>>", len(pageObjNums)))
	return b.Bytes()
}

func (d *Document) catalogBody(pagesRootObj, outlinesRootObj int, ocgObjNums []int) []byte {
	var b bytes.Buffer
	b.WriteString("<<\n /Type /Catalog\n")
	b.WriteString(fmt.Sprintf(" /Pages %d 0 R\n", pagesRootObj))
	if outlinesRootObj != 0 {
		b.WriteString(fmt.Sprintf(" /Outlines %d 0 R\n", outlinesRootObj))
	}
	if d.opts.Language != "" {
		b.WriteString(" /Lang " + docInfoString(d.opts.Language) + "\n")
	}
	if len(ocgObjNums) > 0 {
		b.WriteString(" /OCProperties <<\n  /OCGs [")
		for i, n := range ocgObjNums {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(fmt.Sprintf("%d 0 R", n))
		}
		b.WriteString("]\n  /D << /ON [")
		first := true
		for i, g := range d.ocgs {
			if !g.visible {
				continue
			}
			if !first {
				b.WriteString(" ")
			}
			first = false
			b.WriteString(fmt.Sprintf("%d 0 R", ocgObjNums[i]))
		}
		b.WriteString("] >>\n >>\n")
	}
	if d.opts.StructTreeRoot != nil {
		b.WriteString(" /StructTreeRoot " + string(d.opts.StructTreeRoot) + "\n")
	}
	b.WriteString(">>")
	return b.Bytes()
}

func (d *Document) flushOutlines(pageObjNums []int) (int, error) {
	objNums := make([]int, len(d.outlines))
	rootKids := []int{}
	children := map[int][]int{}
	for i, o := range d.outlines {
		if o.parent < 0 {
			rootKids = append(rootKids, i)
		} else {
			children[o.parent] = append(children[o.parent], i)
		}
	}
	children[-1] = rootKids
	// Predict object numbers up front so cross references (parent/kids)
	// can be written without a second pass: addIndirectObject hands out
	// numbers in emission order, the entries are emitted in index order,
	// and the root is emitted last.
	for i := range d.outlines {
		objNums[i] = d.nextObj + i
	}
	rootObj := d.nextObj + len(d.outlines)
	for i, o := range d.outlines {
		destObj := 0
		if int(o.dest) < len(pageObjNums) {
			destObj = pageObjNums[int(o.dest)]
		}
		var b bytes.Buffer
		b.WriteString("<<\n /Title " + docInfoString(o.title) + "\n")
		parentObj := rootObj
		if o.parent >= 0 {
			parentObj = objNums[o.parent]
		}
		b.WriteString(fmt.Sprintf(" /Parent %d 0 R\n", parentObj))
		if destObj != 0 {
			b.WriteString(fmt.Sprintf(" /Dest [%d 0 R /Fit]\n", destObj))
		}
		kids := children[i]
		if len(kids) > 0 {
			b.WriteString(fmt.Sprintf(" /First %d 0 R\n /Last %d 0 R\n", objNums[kids[0]], objNums[kids[len(kids)-1]]))
			b.WriteString(fmt.Sprintf(" /Count %d\n", len(kids)))
		}
		if n := siblingAfter(children, o.parent, i); n != 0 {
			b.WriteString(fmt.Sprintf(" /Next %d 0 R\n", objNums[n]))
		}
		if n := siblingBefore(children, o.parent, i, rootKids); n != 0 {
			b.WriteString(fmt.Sprintf(" /Prev %d 0 R\n", objNums[n]))
		}
		b.WriteString(">>")
		if _, err := d.addIndirectObject(b.Bytes()); err != nil {
			return 0, err
		}
	}
	var root bytes.Buffer
	root.WriteString("<<\n /Type /Outlines\n")
	if len(rootKids) > 0 {
		root.WriteString(fmt.Sprintf(" /First %d 0 R\n /Last %d 0 R\n /Count %d\n", objNums[rootKids[0]], objNums[rootKids[len(rootKids)-1]], len(rootKids)))
	}
	root.WriteString(">>")
	if _, err := d.addIndirectObject(root.Bytes()); err != nil {
		return 0, err
	}
	return rootObj, nil
}

func siblingAfter(children map[int][]int, parent, i int) int {
	list := siblingList(children, parent)
	for idx, v := range list {
		if v == i && idx+1 < len(list) {
			return list[idx+1]
		}
	}
	return 0
}

func siblingBefore(children map[int][]int, parent, i int, rootKids []int) int {
	list := siblingList(children, parent)
	for idx, v := range list {
		if v == i && idx > 0 {
			return list[idx-1]
		}
	}
	return 0
}

func siblingList(children map[int][]int, parent int) []int {
	if parent < 0 {
		return children[-1]
	}
	return children[parent]
}

func (d *Document) writeXref() error {
	n := d.nextObj // object_count + 1
	if err := d.write([]byte(fmt.Sprintf("xref\n0 %d\n", n))); err != nil {
		return err
	}
	if err := d.write([]byte("0000000000 65535 f \n")); err != nil {
		return err
	}
	for i := 1; i < n; i++ {
		off := 0
		if i < len(d.offsets) {
			off = d.offsets[i]
		}
		if err := d.write([]byte(fmt.Sprintf("%010d 00000 n \n", off))); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) writeTrailer(rootObj, startxref int) error {
	n := d.nextObj
	trailer := fmt.Sprintf("trailer\n<<\n /Size %d\n /Root %d 0 R\n /Info 1 0 R\n>>\nstartxref\n%d\n%%%%EOF\n", n, rootObj, startxref)
	return d.write([]byte(trailer))
}
