// Package document renders a finished meeting analysis into downloadable
// report files (docx, pdf, xlsx) with section headings localized to the
// report language.
package document

import "meeting-minutes-go/internal/types"

type labels struct {
	Title         string
	Summary       string
	Participants  string
	Decisions     string
	ActionItems   string
	Transcript    string
	Owner         string
	Unassigned    string
	None          string
	CondensedNote string
}

var labelsByLang = map[types.Language]labels{
	types.LangEnglish: {
		Title:         "Meeting Report",
		Summary:       "Summary",
		Participants:  "Participants",
		Decisions:     "Decisions",
		ActionItems:   "Action Items",
		Transcript:    "Transcript",
		Owner:         "Owner",
		Unassigned:    "Unassigned",
		None:          "None",
		CondensedNote: "Note: the transcript below was condensed to fit the report.",
	},
	types.LangHebrew: {
		Title:         "דוח פגישה",
		Summary:       "סיכום",
		Participants:  "משתתפים",
		Decisions:     "החלטות",
		ActionItems:   "משימות",
		Transcript:    "תמליל",
		Owner:         "אחראי",
		Unassigned:    "ללא אחראי",
		None:          "אין",
		CondensedNote: "הערה: התמליל שלהלן קוצר כדי להתאים לדוח.",
	},
	types.LangFrench: {
		Title:         "Compte rendu de réunion",
		Summary:       "Résumé",
		Participants:  "Participants",
		Decisions:     "Décisions",
		ActionItems:   "Actions à mener",
		Transcript:    "Transcription",
		Owner:         "Responsable",
		Unassigned:    "Non attribué",
		None:          "Aucun",
		CondensedNote: "Remarque : la transcription ci-dessous a été condensée pour tenir dans le rapport.",
	},
	types.LangSpanish: {
		Title:         "Informe de la reunión",
		Summary:       "Resumen",
		Participants:  "Participantes",
		Decisions:     "Decisiones",
		ActionItems:   "Tareas pendientes",
		Transcript:    "Transcripción",
		Owner:         "Responsable",
		Unassigned:    "Sin asignar",
		None:          "Ninguno",
		CondensedNote: "Nota: la transcripción siguiente se condensó para ajustarse al informe.",
	},
	types.LangArabic: {
		Title:         "تقرير الاجتماع",
		Summary:       "الملخص",
		Participants:  "المشاركون",
		Decisions:     "القرارات",
		ActionItems:   "بنود العمل",
		Transcript:    "النص الكامل",
		Owner:         "المسؤول",
		Unassigned:    "غير مسند",
		None:          "لا يوجد",
		CondensedNote: "ملاحظة: تم اختصار النص أدناه ليتناسب مع التقرير.",
	},
}

// labelsFor falls back to English for anything unmapped.
func labelsFor(lang types.Language) labels {
	if l, ok := labelsByLang[lang]; ok {
		return l
	}
	return labelsByLang[types.LangEnglish]
}

// actionItemLine renders one action item as "description (owner)" text
// shared by all three renderers.
func actionItemLine(item types.ActionItem, l labels) string {
	owner := item.Owner
	if owner == "" {
		owner = l.Unassigned
	}
	return item.Description + " (" + l.Owner + ": " + owner + ")"
}
