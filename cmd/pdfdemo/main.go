// Command pdfdemo exercises the core library end to end: a stroked line, a
// CMYK separation fill, a rotated page, a Lab fill, a shading pattern fill, a
// reusable form XObject, and kerned UTF-8 text.
package main

import (
	"log"
	"os"

	"github.com/cdvelop/pdfcore"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatal("usage: pdfdemo <output.pdf> <font.ttf>")
	}
	if err := run(os.Args[1], os.Args[2]); err != nil {
		log.Fatal(err)
	}
}

func run(path, fontPath string) error {
	d, err := pdfcore.OpenDocument(path, pdfcore.Options{
		OutputColorSpace: pdfcore.OutputRGB,
		Title:            "pdfdemo output",
		Author:           "pdfcore",
		Logger:           func(args ...any) { log.Println(args...) },
	})
	if err != nil {
		return err
	}

	// Scenario: stroked red line.
	line := d.NewPage()
	if err := line.SetStrokeColor(pdfcore.RGB(1, 0, 0)); err != nil {
		return err
	}
	if err := line.SetLineWidth(10); err != nil {
		return err
	}
	line.MoveTo(0, 0)
	line.LineTo(100, 100)
	line.Stroke()
	if _, err := d.AddPage(line, pdfcore.DefaultLetterBox, 0); err != nil {
		return err
	}

	// Scenario: CMYK separation fill.
	gold, err := d.CreateSeparation("Gold", pdfcore.CMYK(0, 0.2, 1, 0))
	if err != nil {
		return err
	}
	square := d.NewPage()
	if err := square.SetFillColor(pdfcore.SeparationColor{Space: gold, V: pdfcore.Limit(1)}); err != nil {
		return err
	}
	square.Rectangle(50, 50, 200, 200)
	square.Fill()
	if _, err := d.AddPage(square, pdfcore.DefaultLetterBox, 0); err != nil {
		return err
	}

	// Scenario: rotated second page.
	rotated := d.NewPage()
	rotated.MoveTo(0, 0)
	rotated.LineTo(50, 50)
	rotated.Stroke()
	if _, err := d.AddPage(rotated, pdfcore.DefaultLetterBox, 90); err != nil {
		return err
	}

	// Scenario: Lab color fill, a shading-backed pattern fill, and a form
	// XObject drawn on the same page.
	lab, err := d.AddLabColorSpace([3]float64{0.9505, 1.0, 1.089})
	if err != nil {
		return err
	}
	shading, err := d.AddShading("/ShadingType 2 /ColorSpace /DeviceRGB /Coords [0 0 100 100]")
	if err != nil {
		return err
	}
	pattern, err := d.AddPattern(shading)
	if err != nil {
		return err
	}
	tile := d.NewPage()
	tile.Rectangle(0, 0, 50, 50)
	tile.Fill()
	form, err := d.AddFormXObject(tile, pdfcore.Rect{Llx: 0, Lly: 0, Urx: 50, Ury: 50})
	if err != nil {
		return err
	}
	colorPage := d.NewPage()
	if err := colorPage.SetFillColor(pdfcore.LabColor{Space: lab, L: 60, A: 20, B: -10}); err != nil {
		return err
	}
	colorPage.Rectangle(0, 0, 20, 20)
	colorPage.Fill()
	if err := colorPage.SetFillColor(pdfcore.PatternColor{Pattern: pattern}); err != nil {
		return err
	}
	colorPage.Rectangle(100, 100, 100, 100)
	colorPage.Fill()
	if err := colorPage.DrawForm(form); err != nil {
		return err
	}
	if _, err := d.AddPage(colorPage, pdfcore.DefaultLetterBox, 0); err != nil {
		return err
	}

	// Scenario: kerned UTF-8 text against an embedded TrueType font.
	fontData, err := os.ReadFile(fontPath)
	if err != nil {
		return err
	}
	fontID, err := d.LoadFont(fontData)
	if err != nil {
		return err
	}
	textPage := d.NewPage()
	if err := textPage.RenderUTF8Text(fontID, 14, 72, 700, "Hello, world"); err != nil {
		return err
	}
	if _, err := d.AddPage(textPage, pdfcore.DefaultLetterBox, 0); err != nil {
		return err
	}

	return d.Close()
}
