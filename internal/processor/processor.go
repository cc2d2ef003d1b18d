// Package processor runs the full meeting flow: validate the upload,
// transcribe it, then analyze the transcript into the structured report.
package processor

import (
	"context"
	"time"

	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/types"
)

type transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

type transcriptAnalyzer interface {
	Analyze(ctx context.Context, transcript string, lang types.Language) (*types.FinalAnalysis, error)
}

// Result is returned by /process-meeting.
type Result struct {
	Filename   string               `json:"filename"`
	Transcript string               `json:"transcript"`
	Analysis   *types.FinalAnalysis `json:"analysis"`
	DurationMs int64                `json:"duration_ms"`
}

type Processor struct {
	transcriber transcriber
	analyzer    transcriptAnalyzer
	log         *logger.Logger
}

func New(t transcriber, a transcriptAnalyzer) *Processor {
	return &Processor{transcriber: t, analyzer: a, log: logger.New()}
}

// ProcessMeeting runs one upload end to end. Validation failures surface
// as *ValidationError so the HTTP layer can map them to 400s.
func (p *Processor) ProcessMeeting(ctx context.Context, audio []byte, filename, langCode string) (*Result, error) {
	log := p.log.WithComponent("processor").WithField("filename", filename)
	start := time.Now()

	name, err := ValidateAudio(audio, filename)
	if err != nil {
		return nil, err
	}
	lang, err := ValidateLanguage(langCode)
	if err != nil {
		return nil, err
	}

	transcript, err := p.transcriber.Transcribe(ctx, audio, name)
	if err != nil {
		return nil, err
	}
	log.WithField("chars", len(transcript)).Info("transcript ready")

	analysis, err := p.analyzer.Analyze(ctx, transcript, lang)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Filename:   name,
		Transcript: transcript,
		Analysis:   analysis,
		DurationMs: time.Since(start).Milliseconds(),
	}
	log.WithField("duration_ms", res.DurationMs).Info("meeting processed")
	return res, nil
}

// AnalyzeTranscript skips transcription for callers that already hold the
// text.
func (p *Processor) AnalyzeTranscript(ctx context.Context, transcript, langCode string) (*types.FinalAnalysis, error) {
	lang, err := ValidateLanguage(langCode)
	if err != nil {
		return nil, err
	}
	return p.analyzer.Analyze(ctx, transcript, lang)
}
