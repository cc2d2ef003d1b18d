package types

// Language is one of the supported output languages.
type Language string

const (
	LangEnglish Language = "en"
	LangHebrew  Language = "he"
	LangFrench  Language = "fr"
	LangSpanish Language = "es"
	LangArabic  Language = "ar"
)

// Direction is the text direction used by document renderers.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

var supportedLanguages = map[Language]bool{
	LangEnglish: true,
	LangHebrew:  true,
	LangFrench:  true,
	LangSpanish: true,
	LangArabic:  true,
}

// IsSupported reports whether l is one of the enumerated languages.
func (l Language) IsSupported() bool {
	return supportedLanguages[l]
}

// Direction returns RTL for Hebrew and Arabic, LTR otherwise.
func (l Language) Direction() Direction {
	if l == LangHebrew || l == LangArabic {
		return DirectionRTL
	}
	return DirectionLTR
}

// ActionItem is a single task extracted from the meeting.
type ActionItem struct {
	Description string `json:"description"`
	Owner       string `json:"owner,omitempty"`
}

// PartialAnalysis is the output of analyzing one chunk. Created by the
// segment analyzer, consumed exactly once by the aggregator.
type PartialAnalysis struct {
	ChunkIndex     int          `json:"chunk_index"`
	Summary        string       `json:"summary"`
	Participants   []string     `json:"participants"`
	Decisions      []string     `json:"decisions"`
	ActionItems    []ActionItem `json:"action_items"`
	TranslatedText string       `json:"translated_text"`
}

// FinalAnalysis is the merged analysis returned to the caller.
// RawTranscript is always the untouched input transcript, regardless of
// chunking or condensation applied to TranslatedTranscript.
type FinalAnalysis struct {
	Summary              string       `json:"summary"`
	Participants         []string     `json:"participants"`
	Decisions            []string     `json:"decisions"`
	ActionItems          []ActionItem `json:"action_items"`
	TranslatedTranscript string       `json:"translated_transcript"`
	RawTranscript        string       `json:"raw_transcript"`
	Language             Language     `json:"language"`
	IsCondensed          bool         `json:"is_condensed"`

	// Incomplete is set when one or more chunks failed after the retry
	// budget and contributed empty fields (degrade policy).
	Incomplete    bool  `json:"incomplete,omitempty"`
	SkippedChunks []int `json:"skipped_chunks,omitempty"`
}
