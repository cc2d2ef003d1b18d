package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-minutes-go/internal/config"
	"meeting-minutes-go/internal/processor"
	"meeting-minutes-go/internal/types"
)

type stubTranscriber struct{ text string }

func (s *stubTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return s.text, nil
}

type stubAnalyzer struct {
	analysis *types.FinalAnalysis
	gotLang  types.Language
}

func (s *stubAnalyzer) Analyze(ctx context.Context, transcript string, lang types.Language) (*types.FinalAnalysis, error) {
	s.gotLang = lang
	return s.analysis, nil
}

func newStubProcessor(lang types.Language) *processor.Processor {
	return processor.New(
		&stubTranscriber{text: "the transcript"},
		&stubAnalyzer{analysis: &types.FinalAnalysis{
			Summary:       "done",
			Participants:  []string{"Alice"},
			Decisions:     []string{},
			ActionItems:   []types.ActionItem{},
			RawTranscript: "the transcript",
			Language:      lang,
		}},
	)
}

func uploadRequest(t *testing.T, path, filename, lang string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("language", lang))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestExportDocxTagsFilenameWithLanguage(t *testing.T) {
	h := exportHandler(newStubProcessor(types.LangHebrew), "docx", config.Config{})

	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "/process-meeting/export-docx", "standup.mp3", "he"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "meeting-report-he.docx")
	assert.Contains(t, rec.Header().Get("Content-Type"), "wordprocessingml")
	require.Greater(t, rec.Body.Len(), 4)
	assert.Equal(t, []byte("PK"), rec.Body.Bytes()[:2])
}

func TestExportRenderFailureReturnsErrorStatus(t *testing.T) {
	// A font path that does not exist makes the pdf renderer fail.
	cfg := config.Config{PDFFontPath: "/nonexistent/font.ttf"}
	h := exportHandler(newStubProcessor(types.LangEnglish), "pdf", cfg)

	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "/process-meeting/export-pdf", "standup.mp3", "en"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"), "no download headers on failure")

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestExportRejectsBadUpload(t *testing.T) {
	h := exportHandler(newStubProcessor(types.LangEnglish), "xlsx", config.Config{})

	rec := httptest.NewRecorder()
	h(rec, uploadRequest(t, "/process-meeting/export-xlsx", "notes.txt", "en"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeTranscriptEndpoint(t *testing.T) {
	h := analyzeTranscriptHandler(newStubProcessor(types.LangFrench))

	body := strings.NewReader(`{"transcript": "Alice: bonjour.", "language": "fr"}`)
	req := httptest.NewRequest(http.MethodPost, "/analyze-transcript", body)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var analysis types.FinalAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "done", analysis.Summary)
}

func TestAnalyzeTranscriptRejectsUnknownLanguage(t *testing.T) {
	h := analyzeTranscriptHandler(newStubProcessor(types.LangEnglish))

	body := strings.NewReader(`{"transcript": "hello", "language": "de"}`)
	req := httptest.NewRequest(http.MethodPost, "/analyze-transcript", body)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeTranscriptRejectsNonPost(t *testing.T) {
	h := analyzeTranscriptHandler(newStubProcessor(types.LangEnglish))

	req := httptest.NewRequest(http.MethodGet, "/analyze-transcript", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
