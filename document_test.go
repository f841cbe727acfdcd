package pdfcore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmptyDocumentCloseProtocol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	d, err := OpenDocument(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "%PDF-1.7\n") {
		t.Fatalf("missing header: %q", s[:20])
	}
	if !strings.HasSuffix(s, "%%EOF\n") {
		t.Fatalf("missing trailing %%%%EOF: %q", s[len(s)-10:])
	}
	if !strings.Contains(s, "/Count 0") {
		t.Fatalf("expected /Count 0 for empty page tree")
	}
	if !strings.Contains(s, "/Size 4") {
		t.Fatalf("expected /Size 4 in trailer for free entry+info+pages+catalog")
	}
}

func TestDoubleCloseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "double.pdf")
	d, err := OpenDocument(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err == nil {
		t.Fatal("expected error on double close")
	}
}

func TestStrokedLineContentStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.pdf")
	d, err := OpenDocument(path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	pb := d.NewPage()
	if err := pb.SetStrokeColor(RGB(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	pb.MoveTo(0, 0)
	pb.LineTo(100, 100)
	pb.Stroke()

	if _, err := d.AddPage(pb, DefaultLetterBox, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{"1 0 0 RG", "0 0 m", "100 100 l", "S"} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing operator %q in output", want)
		}
	}
}

func TestPatternAndFormXObjectRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pattern.pdf")
	d, err := OpenDocument(path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	shading, err := d.AddShading("/ShadingType 2 /ColorSpace /DeviceRGB /Coords [0 0 10 10]")
	if err != nil {
		t.Fatal(err)
	}
	pattern, err := d.AddPattern(shading)
	if err != nil {
		t.Fatal(err)
	}

	tile := d.NewPage()
	tile.Rectangle(0, 0, 10, 10)
	tile.Fill()
	form, err := d.AddFormXObject(tile, Rect{Urx: 10, Ury: 10})
	if err != nil {
		t.Fatal(err)
	}

	lab, err := d.AddLabColorSpace([3]float64{0.9505, 1.0, 1.089})
	if err != nil {
		t.Fatal(err)
	}

	page := d.NewPage()
	if err := page.SetFillColor(LabColor{Space: lab, L: 50, A: 0, B: 0}); err != nil {
		t.Fatal(err)
	}
	page.Rectangle(0, 0, 5, 5)
	page.Fill()
	if err := page.SetFillColor(PatternColor{Pattern: pattern}); err != nil {
		t.Fatal(err)
	}
	page.Rectangle(20, 20, 10, 10)
	page.Fill()
	if err := page.DrawForm(form); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddPage(page, DefaultLetterBox, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{"/PatternType 2", "/Subtype /Form", "/Pattern cs", "scn", "Do"} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in output", want)
		}
	}
}

func TestXrefEntryWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xref.pdf")
	d, err := OpenDocument(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	pb := d.NewPage()
	pb.MoveTo(1, 1)
	if _, err := d.AddPage(pb, DefaultLetterBox, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	idx := strings.Index(string(data), "xref\n")
	if idx < 0 {
		t.Fatal("no xref section found")
	}
	lines := strings.Split(string(data[idx:]), "\n")
	for _, l := range lines[2:] {
		if l == "" || strings.HasPrefix(l, "trailer") {
			break
		}
		if len(l) != 19 {
			t.Fatalf("xref entry line %q has length %d, want 19 (plus newline = 20 bytes)", l, len(l))
		}
	}
}
