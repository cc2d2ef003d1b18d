package types

import "fmt"

// Stage identifies which pipeline step produced a failure.
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageSegment    Stage = "segment"
	StageSynthesis  Stage = "synthesis"
	StageRender     Stage = "render"
)

// MalformedOutputError means the model response could not be parsed even
// after all repair passes. Raw keeps the original text for diagnostics.
type MalformedOutputError struct {
	Raw string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output (%d bytes, unrecoverable)", len(e.Raw))
}

// UpstreamError is a failed outbound model call after the retry budget.
// Chunk is -1 when the failure is not tied to a specific chunk.
type UpstreamError struct {
	Stage     Stage
	Chunk     int
	Retryable bool
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.Chunk >= 0 {
		return fmt.Sprintf("upstream failure at stage=%s chunk=%d: %v", e.Stage, e.Chunk, e.Err)
	}
	return fmt.Sprintf("upstream failure at stage=%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
