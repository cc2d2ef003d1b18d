package analyzer

import (
	"context"

	"meeting-minutes-go/internal/chunker"
	"meeting-minutes-go/internal/jsonrepair"
	"meeting-minutes-go/internal/types"
)

// segmentRecord is the schema the model is asked to return for one chunk.
// "task" is accepted as an alias some models use for action items.
type segmentRecord struct {
	Summary      string   `json:"summary"`
	Participants []string `json:"participants"`
	Decisions    []string `json:"decisions"`
	ActionItems  []struct {
		Description string `json:"description"`
		Task        string `json:"task"`
		Owner       string `json:"owner"`
	} `json:"action_items"`
	TranslatedText string `json:"translated_text"`
}

// analyzeSegment runs one model call for one chunk and maps the repaired
// response into a PartialAnalysis. The retry budget lives in the llm
// client; a failure here is already final for this chunk.
func (a *Analyzer) analyzeSegment(ctx context.Context, chunk chunker.Chunk, total int, lang types.Language, priorSummary string) (types.PartialAnalysis, error) {
	raw, err := a.llm.Complete(ctx, segmentSystemPrompt, segmentUserPrompt(chunk.Text, chunk.Index, total, lang, priorSummary))
	if err != nil {
		return types.PartialAnalysis{}, &types.UpstreamError{Stage: types.StageSegment, Chunk: chunk.Index, Err: err}
	}

	var rec segmentRecord
	if err := jsonrepair.Unmarshal(raw, &rec); err != nil {
		return types.PartialAnalysis{}, err
	}

	part := types.PartialAnalysis{
		ChunkIndex:     chunk.Index,
		Summary:        rec.Summary,
		Participants:   rec.Participants,
		Decisions:      rec.Decisions,
		TranslatedText: rec.TranslatedText,
	}
	for _, item := range rec.ActionItems {
		desc := item.Description
		if desc == "" {
			desc = item.Task
		}
		if desc == "" {
			continue
		}
		part.ActionItems = append(part.ActionItems, types.ActionItem{
			Description: desc,
			Owner:       item.Owner,
		})
	}
	return part, nil
}
