package pdfcore

// OutputColorSpace selects the device color space pages are synthesized
// against. Non-stroking colors supplied in a different space are re-expressed
// through the color converter before emission (see PageBuilder.SetFillColor).
type OutputColorSpace int

const (
	OutputRGB OutputColorSpace = iota
	OutputGray
	OutputCMYK
)

// Rect is an axis-aligned rectangle in PDF points: [Llx,Lly,Urx,Ury].
type Rect struct {
	Llx, Lly, Urx, Ury float64
}

// DefaultLetterBox is the media box for US Letter, in points.
var DefaultLetterBox = Rect{0, 0, 612, 792}

// DefaultA4Box is the media box for A4, in points.
var DefaultA4Box = Rect{0, 0, 595.28, 841.89}

// Options configures a newly opened document.
type Options struct {
	OutputColorSpace OutputColorSpace
	DefaultPageBox   Rect
	Title            string
	Author           string
	Language         string

	// Logger receives ambient diagnostics: the color converter's non-fatal
	// warnings about ICC profiles it discards. A nil Logger discards them.
	Logger func(...any)

	// ICCProfiles supplies the converter's profiles (RGB, Gray, CMYK). A nil
	// entry leaves that channel on the matrix approximation; no profiles are
	// built in.
	ICCProfiles DefaultICCProfiles

	// StructTreeRoot, when non-nil, is written verbatim as the value of the
	// catalog's /StructTreeRoot entry. The core does not build a structure
	// tree; it only wires one through if the caller supplies it.
	StructTreeRoot []byte
}

// DefaultICCProfiles holds caller-supplied profile bytes for the color
// converter's three device channels; a nil entry means no profile for that
// channel.
type DefaultICCProfiles struct {
	RGB, Gray, CMYK []byte
}

func (o Options) logf(args ...any) {
	if o.Logger != nil {
		o.Logger(args...)
	}
}
