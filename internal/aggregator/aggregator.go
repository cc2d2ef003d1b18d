// Package aggregator merges per-chunk partial analyses into one final
// analysis. Every rule here is deterministic: identical inputs always
// produce an identical FinalAnalysis.
package aggregator

import (
	"strings"

	"meeting-minutes-go/internal/types"
)

type Config struct {
	// SummaryCap and TranslatedCap are character limits; 0 disables the cap.
	SummaryCap    int
	TranslatedCap int
}

const (
	summaryJoiner    = " "
	translatedJoiner = "\n\n"
	ellipsis         = "…"
)

// Merge combines parts (one per chunk, in chunk order) with the original
// transcript. skipped lists chunk indexes whose analysis failed after the
// retry budget; their entries in parts carry empty fields and the result
// is flagged incomplete rather than dropped silently.
func Merge(parts []types.PartialAnalysis, rawTranscript string, lang types.Language, skipped []int, cfg Config) types.FinalAnalysis {
	final := types.FinalAnalysis{
		Participants:  []string{},
		Decisions:     []string{},
		ActionItems:   []types.ActionItem{},
		RawTranscript: rawTranscript,
		Language:      lang,
	}

	var summaries, translated []string
	seenParticipant := map[string]bool{}
	seenDecision := map[string]bool{}
	itemIndex := map[string]int{}

	for _, p := range parts {
		if s := strings.TrimSpace(p.Summary); s != "" {
			summaries = append(summaries, s)
		}
		if p.TranslatedText != "" {
			translated = append(translated, p.TranslatedText)
		}

		// Case- and whitespace-insensitive identity; first-seen casing
		// becomes the canonical spelling.
		for _, name := range p.Participants {
			canonical := strings.Join(strings.Fields(name), " ")
			if canonical == "" {
				continue
			}
			key := strings.ToLower(canonical)
			if !seenParticipant[key] {
				seenParticipant[key] = true
				final.Participants = append(final.Participants, canonical)
			}
		}

		for _, d := range p.Decisions {
			trimmed := strings.TrimSpace(d)
			if trimmed == "" {
				continue
			}
			key := normalize(trimmed)
			if !seenDecision[key] {
				seenDecision[key] = true
				final.Decisions = append(final.Decisions, trimmed)
			}
		}

		// Duplicate descriptions collapse regardless of owner; the first
		// occurrence wins, except an empty owner is backfilled by a later
		// duplicate that has one.
		for _, item := range p.ActionItems {
			desc := strings.TrimSpace(item.Description)
			if desc == "" {
				continue
			}
			key := normalize(desc)
			if idx, ok := itemIndex[key]; ok {
				if final.ActionItems[idx].Owner == "" && item.Owner != "" {
					final.ActionItems[idx].Owner = strings.TrimSpace(item.Owner)
				}
				continue
			}
			itemIndex[key] = len(final.ActionItems)
			final.ActionItems = append(final.ActionItems, types.ActionItem{
				Description: desc,
				Owner:       strings.TrimSpace(item.Owner),
			})
		}
	}

	final.Summary, _ = capText(strings.Join(summaries, summaryJoiner), cfg.SummaryCap)

	joined := strings.Join(translated, translatedJoiner)
	final.TranslatedTranscript, final.IsCondensed = capText(joined, cfg.TranslatedCap)

	if len(skipped) > 0 {
		final.Incomplete = true
		final.SkippedChunks = append([]int(nil), skipped...)
	}

	return final
}

// normalize folds case and collapses whitespace for dedup keys.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// capText truncates s to cap characters plus an ellipsis. The second
// return value reports whether truncation actually shortened the text —
// the definition of the is_condensed flag.
func capText(s string, limit int) (string, bool) {
	if limit <= 0 {
		return s, false
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]) + ellipsis, true
}
