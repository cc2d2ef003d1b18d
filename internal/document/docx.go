package document

import (
	"fmt"
	"io"
	"os"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/stypes"

	"meeting-minutes-go/internal/types"
)

const (
	docxFont        = "Calibri"
	docxBodySize    = 11
	docxHeadingSize = 14
	docxTitleSize   = 18
)

// RenderDocx writes the analysis as a Word document. Paragraphs are
// right-aligned for right-to-left languages. godocx only saves to a path,
// so the document goes through a temp file before streaming out.
func RenderDocx(a *types.FinalAnalysis, w io.Writer) error {
	l := labelsFor(a.Language)
	rtl := a.Language.Direction() == types.DirectionRTL

	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	para := func(text string, bold bool, size uint64) {
		p := doc.AddParagraph("")
		if rtl {
			p.Justification(stypes.JustificationRight)
		}
		run := p.AddText(text).Font(docxFont).Size(size).Color("000000")
		if bold {
			run.Bold(true)
		}
	}
	heading := func(s string) { para(s, true, docxHeadingSize) }
	body := func(s string) { para(s, false, docxBodySize) }

	para(l.Title, true, docxTitleSize)
	doc.AddParagraph("")

	heading(l.Summary)
	body(orNone(a.Summary, l))
	doc.AddParagraph("")

	heading(l.Participants)
	if len(a.Participants) == 0 {
		body(l.None)
	}
	for _, p := range a.Participants {
		body("• " + p)
	}
	doc.AddParagraph("")

	heading(l.Decisions)
	if len(a.Decisions) == 0 {
		body(l.None)
	}
	for _, d := range a.Decisions {
		body("• " + d)
	}
	doc.AddParagraph("")

	heading(l.ActionItems)
	if len(a.ActionItems) == 0 {
		body(l.None)
	}
	for _, item := range a.ActionItems {
		body("• " + actionItemLine(item, l))
	}
	doc.AddParagraph("")

	heading(l.Transcript)
	if a.IsCondensed {
		body(l.CondensedNote)
	}
	body(orNone(a.TranslatedTranscript, l))

	return saveThrough(doc, w)
}

func orNone(s string, l labels) string {
	if s == "" {
		return l.None
	}
	return s
}

func saveThrough(doc *docx.RootDoc, w io.Writer) error {
	tmp, err := os.CreateTemp("", "report-*.docx")
	if err != nil {
		return err
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
