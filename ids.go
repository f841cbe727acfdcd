package pdfcore

import "math"

// invalidID marks a tagged identifier that has not been assigned by a
// registry. All tagged ID types reserve this sentinel so a zero-value ID
// (the Go zero value) is distinguishable from a freshly allocated one —
// registries start allocating at 0, so the sentinel must sit outside the
// valid range rather than coincide with it.
const invalidID = math.MaxUint32

// ImageID identifies a raster image registered with the resource registry.
type ImageID uint32

// FontID identifies a loaded font (before any subset has been carved out).
type FontID uint32

// FontSubsetID pairs a font with one of its lazily created glyph subsets.
// Each subset holds at most 255 glyphs, per PDF's single-byte CID subset
// convention used here.
type FontSubsetID struct {
	Font  FontID
	Index int
}

// ICCSpaceID identifies an ICCBased color space object.
type ICCSpaceID uint32

// LabSpaceID identifies a Lab color space object.
type LabSpaceID uint32

// SeparationID identifies a Separation color space object (a named ink with
// a fallback conversion function).
type SeparationID uint32

// GraphicsStateID identifies an ExtGState dictionary.
type GraphicsStateID uint32

// FunctionID identifies a PDF Function object.
type FunctionID uint32

// ShadingID identifies a Shading dictionary.
type ShadingID uint32

// PatternID identifies a Pattern color space value.
type PatternID uint32

// FormXObjectID identifies a finalized form XObject.
type FormXObjectID uint32

// AnnotationID identifies a page annotation.
type AnnotationID uint32

// OCGID identifies an optional content group (a togglable layer).
type OCGID uint32

// PageID identifies a page once it has been handed to the assembler.
type PageID uint32

// OutlineID identifies a bookmark/outline entry.
type OutlineID uint32

func (id ImageID) valid() bool         { return uint32(id) != invalidID }
func (id FontID) valid() bool          { return uint32(id) != invalidID }
func (id ICCSpaceID) valid() bool      { return uint32(id) != invalidID }
func (id SeparationID) valid() bool    { return uint32(id) != invalidID }
func (id GraphicsStateID) valid() bool { return uint32(id) != invalidID }
func (id PageID) valid() bool          { return uint32(id) != invalidID }
func (id OutlineID) valid() bool       { return uint32(id) != invalidID }
func (id ShadingID) valid() bool       { return uint32(id) != invalidID }
func (id PatternID) valid() bool       { return uint32(id) != invalidID }
func (id FormXObjectID) valid() bool   { return uint32(id) != invalidID }

// NoImage, NoFont, ... are the invalid sentinels for each tagged ID type,
// returned by fallible allocators instead of a zero-value ID that could be
// mistaken for object index 0.
const (
	NoImage         ImageID         = invalidID
	NoFont          FontID          = invalidID
	NoICCSpace      ICCSpaceID      = invalidID
	NoSeparation    SeparationID    = invalidID
	NoGraphicsState GraphicsStateID = invalidID
	NoPage          PageID          = invalidID
	NoShading       ShadingID       = invalidID
	NoPattern       PatternID       = invalidID
	NoFormXObject   FormXObjectID   = invalidID
)
