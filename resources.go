package pdfcore

// Registry owns every resource table the document can reference from a
// content stream: images, fonts (and their lazily carved subsets), ICC and
// Lab color spaces, separations, graphics states, functions, shadings,
// patterns, and form XObjects. It is arena+index per the design note on cyclic needs: entries
// are appended and only ever addressed by their slice index (wrapped in a
// tagged ID), never removed, so an ID handed out during rendering stays
// valid until the document closes.
type Registry struct {
	images      []imageEntry
	fonts       []fontEntry
	iccSpaces   []iccSpaceEntry
	labSpaces   []labSpaceEntry
	separations []separationEntry
	gstates     []gstateEntry
	functions   []functionEntry
	shadings    []shadingEntry
	patterns    []patternEntry
	forms       []formXObjectEntry

	converter *ColorConverter
}

func newRegistry(conv *ColorConverter) *Registry {
	return &Registry{converter: conv}
}

type imageEntry struct {
	objNum     int // assigned once the assembler emits the XObject
	smaskObj   int // 0 if no soft mask
	width      int
	height     int
	colorSpace string // "DeviceRGB", "DeviceGray", "DeviceCMYK"
}

type fontEntry struct {
	handle     FontHandle
	subsets    []subsetEntry
	cidToRune  map[int]rune // reverse lookup from glyph index; not read when writing the file
}

type subsetEntry struct {
	objNum       int // Type0 composite font object number, set at finalize
	cidFontObj   int // CIDFontType2 descendant object number
	fileObj      int // embedded FontFile2 stream object number
	runeToByte   map[rune]byte
	glyphByByte  [256]int // original glyph index for each assigned local byte id; -1 if unused
	used         int      // number of assigned glyph slots (0..255)
}

type iccSpaceEntry struct {
	objNum   int
	channels int
	profile  []byte
}

type labSpaceEntry struct {
	objNum int
	whitePoint [3]float64
}

type separationEntry struct {
	objNum   int
	name     string
	fallback DeviceCMYK
	fnObj    int
}

type gstateEntry struct {
	objNum int
	name   string // /<name> resource key, e.g. "GS0"
	dict   GraphicsStateDict
}

type functionEntry struct {
	objNum int
	body   []byte
}

type shadingEntry struct {
	objNum int
	body   []byte
}

type patternEntry struct {
	objNum int
}

type formXObjectEntry struct {
	objNum int
	bbox   Rect
}

// GraphicsStateDict mirrors the optional entries of a PDF ExtGState
// dictionary. Unset pointer fields are omitted from the emitted object.
type GraphicsStateDict struct {
	LineWidth        *float64
	LineCap          *int
	LineJoin         *int
	MiterLimit       *float64
	RenderingIntent  *string
	StrokeOverprint  *bool
	FillOverprint    *bool
	OverprintMode    *int
	Flatness         *float64
	Smoothness       *float64
	StrokeAdjustment *bool
	BlendMode        *string
	StrokeAlpha      *float64
	FillAlpha        *float64
	AlphaIsShape     *bool
	TextKnockout     *bool
}
