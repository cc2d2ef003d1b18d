package analyzer

import (
	"fmt"
	"strings"

	"meeting-minutes-go/internal/types"
)

const segmentSystemPrompt = `You are a meeting analysis engine. You receive one segment of a meeting transcript and must extract structured information for THIS SEGMENT ONLY.

Return ONLY a JSON object with exactly this shape:
{
  "summary": "1-3 sentence summary of this segment",
  "participants": ["names of people speaking or mentioned as present"],
  "decisions": ["decisions clearly stated or agreed in this segment"],
  "action_items": [{"description": "what needs to be done", "owner": "person or empty string"}],
  "translated_text": "this segment rewritten as a clean, readable transcript in the target language"
}

Rules:
- Extract only what is explicitly present in the segment. Never invent names, decisions or tasks.
- Empty arrays and empty strings are valid answers.
- All output text, including the summary and translated_text, must be in the target language.
- Output the JSON object only. No markdown, no commentary.`

const synthesisSystemPrompt = `You are a meeting analysis engine. You receive section summaries of one meeting, in order. Rewrite them into a single coherent meeting summary in the target language.

Return ONLY a JSON object: {"summary": "3-5 sentence meeting summary"}
Do not add information that is not in the sections. Output the JSON object only.`

func segmentUserPrompt(chunkText string, index, total int, lang types.Language, priorSummary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target language: %s\n", lang)
	fmt.Fprintf(&b, "Segment %d of %d.\n\n", index+1, total)
	if priorSummary != "" {
		b.WriteString("Summary of earlier segments, for continuity only (do not re-extract from it):\n")
		b.WriteString(priorSummary)
		b.WriteString("\n\n")
	}
	b.WriteString("Transcript segment:\n\n")
	b.WriteString(chunkText)
	b.WriteString("\n\nOutput JSON only:")
	return b.String()
}

func synthesisUserPrompt(sectionSummaries []string, lang types.Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target language: %s\n\nSection summaries in order:\n", lang)
	for i, s := range sectionSummaries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\nOutput JSON only:")
	return b.String()
}
