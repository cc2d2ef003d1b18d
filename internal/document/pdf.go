package document

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"meeting-minutes-go/internal/types"
)

const (
	pdfBodySize    = 11.0
	pdfHeadingSize = 14.0
	pdfTitleSize   = 18.0
	pdfLineHeight  = 6.0
)

// RenderPDF writes the analysis as a PDF. Core fonts cover the Latin
// languages; fontPath, when set, names a Unicode TTF used instead so
// Hebrew and Arabic glyphs render. Right-to-left languages are aligned
// right.
func RenderPDF(a *types.FinalAnalysis, fontPath string, w io.Writer) error {
	l := labelsFor(a.Language)
	rtl := a.Language.Direction() == types.DirectionRTL

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	family := "Helvetica"
	text := func(s string) string { return s }
	if fontPath != "" {
		family = "report"
		pdf.AddUTF8Font(family, "", fontPath)
		pdf.AddUTF8Font(family, "B", fontPath)
	} else {
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		text = tr
	}

	align := "L"
	if rtl {
		align = "R"
	}

	heading := func(s string) {
		pdf.SetFont(family, "B", pdfHeadingSize)
		pdf.MultiCell(0, pdfLineHeight+2, text(s), "", align, false)
	}
	body := func(s string) {
		pdf.SetFont(family, "", pdfBodySize)
		pdf.MultiCell(0, pdfLineHeight, text(s), "", align, false)
	}

	pdf.SetFont(family, "B", pdfTitleSize)
	pdf.MultiCell(0, pdfLineHeight+4, text(l.Title), "", "C", false)
	pdf.Ln(4)

	heading(l.Summary)
	body(orNone(a.Summary, l))
	pdf.Ln(3)

	heading(l.Participants)
	if len(a.Participants) == 0 {
		body(l.None)
	}
	for _, p := range a.Participants {
		body("- " + p)
	}
	pdf.Ln(3)

	heading(l.Decisions)
	if len(a.Decisions) == 0 {
		body(l.None)
	}
	for _, d := range a.Decisions {
		body("- " + d)
	}
	pdf.Ln(3)

	heading(l.ActionItems)
	if len(a.ActionItems) == 0 {
		body(l.None)
	}
	for _, item := range a.ActionItems {
		body("- " + actionItemLine(item, l))
	}
	pdf.Ln(3)

	heading(l.Transcript)
	if a.IsCondensed {
		body(l.CondensedNote)
	}
	body(orNone(a.TranslatedTranscript, l))

	if pdf.Err() {
		return fmt.Errorf("render pdf: %w", pdf.Error())
	}
	return pdf.Output(w)
}
