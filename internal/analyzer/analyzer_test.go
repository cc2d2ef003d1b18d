package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/types"
)

// fakeCompleter scripts model responses per segment. It parses the
// "Segment i of N" line out of the prompt to know which chunk it serves.
type fakeCompleter struct {
	mu        sync.Mutex
	calls     int32
	prompts   []string
	respond   func(segment, total int, user string) (string, error)
	failIndex map[int]error
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.prompts = append(f.prompts, user)
	f.mu.Unlock()

	seg, total := parseSegmentLine(user)
	if err, ok := f.failIndex[seg]; ok {
		return "", err
	}
	if f.respond != nil {
		return f.respond(seg, total, user)
	}
	return segmentJSON(seg), nil
}

func parseSegmentLine(user string) (int, int) {
	var seg, total int
	for _, line := range strings.Split(user, "\n") {
		if _, err := fmt.Sscanf(line, "Segment %d of %d.", &seg, &total); err == nil {
			return seg - 1, total
		}
	}
	return 0, 1
}

func segmentJSON(seg int) string {
	rec := map[string]any{
		"summary":         fmt.Sprintf("Summary of segment %d.", seg),
		"participants":    []string{fmt.Sprintf("Speaker %d", seg), "Alice"},
		"decisions":       []string{fmt.Sprintf("Decision %d", seg)},
		"action_items":    []map[string]string{{"description": fmt.Sprintf("Task %d", seg), "owner": ""}},
		"translated_text": fmt.Sprintf("[segment %d]", seg),
	}
	b, _ := json.Marshal(rec)
	return string(b)
}

func newTestAnalyzer(fake *fakeCompleter, cfg Config) *Analyzer {
	if cfg.ChunkBudget <= 0 {
		cfg.ChunkBudget = 20000
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Analyzer{llm: fake, cfg: cfg, log: logger.New()}
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	fake := &fakeCompleter{}
	a := newTestAnalyzer(fake, Config{})

	final, err := a.Analyze(context.Background(), "   \n ", types.LangEnglish)
	require.NoError(t, err)
	assert.Zero(t, fake.calls, "no model call for an empty transcript")
	assert.Empty(t, final.Summary)
	assert.Equal(t, "   \n ", final.RawTranscript)
}

func TestAnalyzeShortPathSingleCall(t *testing.T) {
	transcript := strings.Repeat("Alice speaks. ", 358) // ~5000 chars
	require.Less(t, len(transcript), 20000)

	fake := &fakeCompleter{}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000})

	final, err := a.Analyze(context.Background(), transcript, types.LangEnglish)
	require.NoError(t, err)

	assert.EqualValues(t, 1, fake.calls, "short path makes exactly one model call")
	assert.Equal(t, transcript, final.RawTranscript)
	assert.False(t, final.IsCondensed)
	assert.False(t, final.Incomplete)
	assert.Contains(t, fake.prompts[0], "Segment 1 of 1.")
}

func TestAnalyzeLongPathThreeChunks(t *testing.T) {
	transcript := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 1000) // 45000 chars

	fake := &fakeCompleter{}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000})

	final, err := a.Analyze(context.Background(), transcript, types.LangEnglish)
	require.NoError(t, err)

	assert.EqualValues(t, 3, fake.calls, "one model call per chunk, no synthesis by default")
	assert.Len(t, final.RawTranscript, 45000)
	assert.Equal(t, transcript, final.RawTranscript)

	// Partial results aggregated in chunk order.
	assert.Equal(t, "Summary of segment 0. Summary of segment 1. Summary of segment 2.", final.Summary)
	assert.Equal(t, "[segment 0]\n\n[segment 1]\n\n[segment 2]", final.TranslatedTranscript)
	assert.Equal(t, []string{"Decision 0", "Decision 1", "Decision 2"}, final.Decisions)
	// "Alice" repeats in every chunk but is kept once.
	assert.Contains(t, final.Participants, "Alice")
	assert.Equal(t, []string{"Speaker 0", "Alice", "Speaker 1", "Speaker 2"}, final.Participants)
	assert.False(t, final.Incomplete)
}

func TestAnalyzeLongPathRollingContext(t *testing.T) {
	transcript := strings.Repeat("Bob talks and talks. ", 3000) // 63000 chars

	fake := &fakeCompleter{}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000})

	_, err := a.Analyze(context.Background(), transcript, types.LangEnglish)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(fake.prompts), 2)
	assert.NotContains(t, fake.prompts[0], "Summary of earlier segments")
	assert.Contains(t, fake.prompts[1], "Summary of earlier segments")
	assert.Contains(t, fake.prompts[1], "Summary of segment 0.")
}

func TestAnalyzePartialChunkFailureDegrades(t *testing.T) {
	transcript := strings.Repeat("Carol presents the roadmap. ", 1608) // ~45000 chars

	fake := &fakeCompleter{failIndex: map[int]error{1: errors.New("rate limited")}}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000})

	final, err := a.Analyze(context.Background(), transcript, types.LangEnglish)
	require.NoError(t, err, "one failed chunk must not abort the request")

	assert.True(t, final.Incomplete)
	assert.Equal(t, []int{1}, final.SkippedChunks)
	assert.Equal(t, transcript, final.RawTranscript)
	assert.Equal(t, "Summary of segment 0. Summary of segment 2.", final.Summary)
}

func TestAnalyzeAllChunksFailedIsTerminal(t *testing.T) {
	transcript := strings.Repeat("Dana reads minutes. ", 2500) // 50000 chars

	fake := &fakeCompleter{failIndex: map[int]error{
		0: errors.New("down"), 1: errors.New("down"), 2: errors.New("down"),
	}}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000})

	_, err := a.Analyze(context.Background(), transcript, types.LangEnglish)
	require.Error(t, err)

	var upstream *types.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, types.StageSegment, upstream.Stage)
}

func TestAnalyzeShortPathFailureIsTerminal(t *testing.T) {
	fake := &fakeCompleter{failIndex: map[int]error{0: errors.New("auth failure")}}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000})

	_, err := a.Analyze(context.Background(), "a short transcript", types.LangHebrew)
	require.Error(t, err)

	var upstream *types.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 0, upstream.Chunk)
}

func TestAnalyzeConcurrentPreservesOrder(t *testing.T) {
	transcript := strings.Repeat("Eli explains the migration plan. ", 3000) // 99000 chars

	fake := &fakeCompleter{}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000, Concurrency: 4})

	final, err := a.Analyze(context.Background(), transcript, types.LangFrench)
	require.NoError(t, err)

	assert.EqualValues(t, 5, fake.calls)
	assert.Equal(t, transcript, final.RawTranscript)
	assert.Equal(t,
		"[segment 0]\n\n[segment 1]\n\n[segment 2]\n\n[segment 3]\n\n[segment 4]",
		final.TranslatedTranscript,
		"output order follows chunk index regardless of completion order")
}

func TestAnalyzeCancelledContext(t *testing.T) {
	transcript := strings.Repeat("Fay recaps decisions. ", 3000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeCompleter{}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000})

	_, err := a.Analyze(ctx, transcript, types.LangSpanish)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeMalformedButRepairableResponse(t *testing.T) {
	fake := &fakeCompleter{
		respond: func(seg, total int, user string) (string, error) {
			return `Here is the JSON: {"summary": "ok", "participants": ["Gil"], "decisions": [], "action_items": [], "translated_text": "ok"} Thanks!`, nil
		},
	}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000})

	final, err := a.Analyze(context.Background(), "short one", types.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, "ok", final.Summary)
	assert.Equal(t, []string{"Gil"}, final.Participants)
}

func TestAnalyzeSynthesisRewritesSummary(t *testing.T) {
	transcript := strings.Repeat("Hana walks through metrics. ", 1608) // ~45000 chars

	fake := &fakeCompleter{
		respond: func(seg, total int, user string) (string, error) {
			if strings.Contains(user, "Section summaries in order") {
				return `{"summary": "One coherent meeting summary."}`, nil
			}
			return segmentJSON(seg), nil
		},
	}
	a := newTestAnalyzer(fake, Config{ChunkBudget: 20000, Synthesis: true})

	final, err := a.Analyze(context.Background(), transcript, types.LangEnglish)
	require.NoError(t, err)

	assert.EqualValues(t, 4, fake.calls, "three segment calls plus one synthesis call")
	assert.Equal(t, "One coherent meeting summary.", final.Summary)
}
