// Package analyzer is the public entry point of the analysis pipeline. It
// decides between the single-call path and the chunked map-reduce path,
// drives per-segment model calls, and hands partial results to the
// aggregator. An Analyzer holds no per-request state and is safe for
// concurrent use.
package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"meeting-minutes-go/internal/aggregator"
	"meeting-minutes-go/internal/chunker"
	"meeting-minutes-go/internal/config"
	"meeting-minutes-go/internal/jsonrepair"
	"meeting-minutes-go/internal/llm"
	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/types"
)

// completer is satisfied by *llm.Client; tests inject fakes.
type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Config struct {
	ChunkBudget int
	Concurrency int
	// Synthesis adds one summary-rewrite call after aggregation on the
	// long path; off by default so call counts stay proportional to
	// chunk counts.
	Synthesis     bool
	SummaryCap    int
	TranslatedCap int
}

type Analyzer struct {
	llm completer
	cfg Config
	log *logger.Logger
}

func New(client *llm.Client, cfg Config) *Analyzer {
	if cfg.ChunkBudget <= 0 {
		cfg.ChunkBudget = config.DefaultChunkBudget
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Analyzer{llm: client, cfg: cfg, log: logger.New()}
}

// Analyze produces the final structured analysis for one transcript.
// Transcripts at or below the chunk budget take the single-call path; the
// chunk splitter is never invoked for them.
func (a *Analyzer) Analyze(ctx context.Context, transcript string, lang types.Language) (*types.FinalAnalysis, error) {
	log := a.log.WithComponent("analyzer").WithField("language", lang)

	if strings.TrimSpace(transcript) == "" {
		return &types.FinalAnalysis{
			Participants:  []string{},
			Decisions:     []string{},
			ActionItems:   []types.ActionItem{},
			RawTranscript: transcript,
			Language:      lang,
		}, nil
	}

	length := len([]rune(transcript))
	if length <= a.cfg.ChunkBudget {
		log.WithField("chars", length).Info("short transcript, single-call path")
		return a.analyzeShort(ctx, transcript, lang)
	}

	log.WithField("chars", length).Info("long transcript, chunked path")
	return a.analyzeLong(ctx, transcript, lang)
}

func (a *Analyzer) analyzeShort(ctx context.Context, transcript string, lang types.Language) (*types.FinalAnalysis, error) {
	whole := chunker.Chunk{Index: 0, Start: 0, End: len([]rune(transcript)), Text: transcript}
	part, err := a.analyzeSegment(ctx, whole, 1, lang, "")
	if err != nil {
		return nil, err
	}

	final := aggregator.Merge([]types.PartialAnalysis{part}, transcript, lang, nil, a.mergeConfig())
	return &final, nil
}

func (a *Analyzer) analyzeLong(ctx context.Context, transcript string, lang types.Language) (*types.FinalAnalysis, error) {
	log := a.log.WithComponent("analyzer")

	chunks := chunker.Split(transcript, a.cfg.ChunkBudget)
	log.WithField("chunks", len(chunks)).Info("transcript split")

	var (
		parts   []types.PartialAnalysis
		skipped []int
		err     error
	)
	if a.cfg.Concurrency > 1 {
		parts, skipped, err = a.mapConcurrent(ctx, chunks, lang)
	} else {
		parts, skipped, err = a.mapSequential(ctx, chunks, lang)
	}
	if err != nil {
		return nil, err
	}

	if len(skipped) == len(chunks) {
		// Nothing succeeded; degrading further would return an empty shell.
		return nil, &types.UpstreamError{Stage: types.StageSegment, Chunk: skipped[0], Err: errors.New("all segment analyses failed")}
	}

	final := aggregator.Merge(parts, transcript, lang, skipped, a.mergeConfig())

	if a.cfg.Synthesis && len(chunks) > 1 {
		a.synthesizeSummary(ctx, &final, parts, lang)
	}

	return &final, nil
}

// mapSequential analyzes chunks in order, threading a rolling summary of
// earlier segments into each prompt for continuity. A chunk that fails
// after the retry budget is skipped, not fatal (degrade policy).
func (a *Analyzer) mapSequential(ctx context.Context, chunks []chunker.Chunk, lang types.Language) ([]types.PartialAnalysis, []int, error) {
	log := a.log.WithComponent("analyzer")

	parts := make([]types.PartialAnalysis, len(chunks))
	var skipped []int
	var rolling []string

	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		part, err := a.analyzeSegment(ctx, c, len(chunks), lang, rollingSummary(rolling))
		if err != nil {
			log.WithError(err).WithField("chunk", c.Index).Warn("segment analysis failed, skipping chunk")
			parts[c.Index] = types.PartialAnalysis{ChunkIndex: c.Index}
			skipped = append(skipped, c.Index)
			continue
		}
		parts[c.Index] = part
		if part.Summary != "" {
			rolling = append(rolling, part.Summary)
		}
	}
	return parts, skipped, nil
}

// mapConcurrent fans chunks out over a bounded worker pool. Results land
// in an index-addressed slice, so aggregation sees chunk order no matter
// the completion order. No rolling context in this mode.
func (a *Analyzer) mapConcurrent(ctx context.Context, chunks []chunker.Chunk, lang types.Language) ([]types.PartialAnalysis, []int, error) {
	log := a.log.WithComponent("analyzer")

	parts := make([]types.PartialAnalysis, len(chunks))
	failed := make([]bool, len(chunks))
	sem := make(chan struct{}, a.cfg.Concurrency)
	var wg sync.WaitGroup

	for _, c := range chunks {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, nil, ctx.Err()
		}

		wg.Add(1)
		go func(c chunker.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()

			part, err := a.analyzeSegment(ctx, c, len(chunks), lang, "")
			if err != nil {
				log.WithError(err).WithField("chunk", c.Index).Warn("segment analysis failed, skipping chunk")
				parts[c.Index] = types.PartialAnalysis{ChunkIndex: c.Index}
				failed[c.Index] = true
				return
			}
			parts[c.Index] = part
		}(c)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var skipped []int
	for i, f := range failed {
		if f {
			skipped = append(skipped, i)
		}
	}
	return parts, skipped, nil
}

// synthesizeSummary issues one extra model call that rewrites the joined
// per-chunk summaries into a coherent whole. Best effort: on any failure
// the deterministic joined summary stays in place.
func (a *Analyzer) synthesizeSummary(ctx context.Context, final *types.FinalAnalysis, parts []types.PartialAnalysis, lang types.Language) {
	log := a.log.WithComponent("analyzer")

	var sections []string
	for _, p := range parts {
		if p.Summary != "" {
			sections = append(sections, p.Summary)
		}
	}
	if len(sections) < 2 {
		return
	}

	raw, err := a.llm.Complete(ctx, synthesisSystemPrompt, synthesisUserPrompt(sections, lang))
	if err != nil {
		log.WithError(err).Warn("synthesis call failed, keeping joined summary")
		return
	}
	var rec struct {
		Summary string `json:"summary"`
	}
	if err := jsonrepair.Unmarshal(raw, &rec); err != nil || strings.TrimSpace(rec.Summary) == "" {
		log.Warn("synthesis returned no usable summary, keeping joined summary")
		return
	}
	final.Summary = strings.TrimSpace(rec.Summary)
}

func (a *Analyzer) mergeConfig() aggregator.Config {
	return aggregator.Config{
		SummaryCap:    a.cfg.SummaryCap,
		TranslatedCap: a.cfg.TranslatedCap,
	}
}

// rollingSummary keeps the continuity context bounded to the most recent
// segment summaries.
func rollingSummary(summaries []string) string {
	const keep = 3
	if len(summaries) > keep {
		summaries = summaries[len(summaries)-keep:]
	}
	return strings.Join(summaries, " ")
}
