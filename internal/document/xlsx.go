package document

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"meeting-minutes-go/internal/types"
)

// RenderXlsx writes the analysis as a workbook: an overview sheet plus a
// dedicated action-items sheet.
func RenderXlsx(a *types.FinalAnalysis, w io.Writer) error {
	l := labelsFor(a.Language)

	f := excelize.NewFile()
	defer f.Close()

	overview := "Sheet1"
	if err := f.SetSheetName(overview, l.Summary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	overview = l.Summary

	row := 1
	set := func(col string, v any) {
		f.SetCellValue(overview, fmt.Sprintf("%s%d", col, row), v)
	}

	set("A", l.Title)
	row += 2

	set("A", l.Summary)
	row++
	set("A", orNone(a.Summary, l))
	row += 2

	set("A", l.Participants)
	row++
	if len(a.Participants) == 0 {
		set("A", l.None)
		row++
	}
	for _, p := range a.Participants {
		set("A", p)
		row++
	}
	row++

	set("A", l.Decisions)
	row++
	if len(a.Decisions) == 0 {
		set("A", l.None)
		row++
	}
	for _, d := range a.Decisions {
		set("A", d)
		row++
	}
	row++

	set("A", l.Transcript)
	row++
	if a.IsCondensed {
		set("A", l.CondensedNote)
		row++
	}
	set("A", orNone(a.TranslatedTranscript, l))

	if _, err := f.NewSheet(l.ActionItems); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	f.SetCellValue(l.ActionItems, "A1", l.ActionItems)
	f.SetCellValue(l.ActionItems, "B1", l.Owner)
	for i, item := range a.ActionItems {
		owner := item.Owner
		if owner == "" {
			owner = l.Unassigned
		}
		f.SetCellValue(l.ActionItems, fmt.Sprintf("A%d", i+2), item.Description)
		f.SetCellValue(l.ActionItems, fmt.Sprintf("B%d", i+2), owner)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
