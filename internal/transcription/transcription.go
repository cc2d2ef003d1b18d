// Package transcription turns uploaded meeting audio into plain text via
// the Whisper API. Supports mock mode via env USE_MOCK_TRANSCRIBE=true for
// offline demos.
package transcription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/types"
)

const mockTranscript = "MOCK TRANSCRIPT: Alice opens the meeting. The team decides to ship version two in March. Bob will update the roadmap."

// audioAPI is the slice of the OpenAI client we use, mockable in tests.
type audioAPI interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	CallTimeout time.Duration
	MaxAttempts int
}

type Transcriber struct {
	cfg Config
	api audioAPI
	log *logger.Logger
}

func New(cfg Config) *Transcriber {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Minute
	}
	return &Transcriber{
		cfg: cfg,
		api: openai.NewClientWithConfig(oc),
		log: logger.New(),
	}
}

// Transcribe sends one audio payload and returns the transcript text.
// filename carries the extension Whisper uses to detect the container.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	log := t.log.WithComponent("transcription").WithField("filename", filename)

	if os.Getenv("USE_MOCK_TRANSCRIBE") == "true" {
		log.Info("mock transcribe mode ON")
		return mockTranscript, nil
	}

	if len(audio) == 0 {
		return "", errors.New("empty audio payload")
	}

	var text string
	attempt := 0
	op := func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
		defer cancel()

		resp, err := t.api.CreateTranscription(callCtx, openai.AudioRequest{
			Model:    t.cfg.Model,
			Reader:   bytes.NewReader(audio),
			FilePath: filename,
		})
		if err != nil {
			if !retryable(err) {
				log.WithError(err).Warn("transcription failed permanently")
				return backoff.Permanent(err)
			}
			log.WithError(err).WithField("attempt", attempt).Warn("transcription failed, will retry")
			return err
		}
		text = resp.Text
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(t.cfg.MaxAttempts-1))
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", &types.UpstreamError{
			Stage: types.StageTranscribe,
			Chunk: -1,
			Err:   fmt.Errorf("transcription failed after %d attempts: %w", attempt, err),
		}
	}

	log.WithField("chars", len(text)).Info("transcription complete")
	return text, nil
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return !errors.Is(err, context.Canceled)
}
