package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"meeting-minutes-go/internal/analyzer"
	"meeting-minutes-go/internal/config"
	"meeting-minutes-go/internal/document"
	"meeting-minutes-go/internal/llm"
	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/processor"
	"meeting-minutes-go/internal/transcription"
	"meeting-minutes-go/internal/types"
)

const maxUploadBytes = 100 << 20 // 100 MB

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "meeting-minutes-go").Info("starting service")

	cfg := config.Load()

	chat := llm.NewClient(llm.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.ChatModel,
		CallTimeout: cfg.CallTimeout,
		MaxAttempts: cfg.MaxAttempts,
	})
	whisper := transcription.New(transcription.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.WhisperModel,
		MaxAttempts: cfg.MaxAttempts,
	})
	an := analyzer.New(chat, analyzer.Config{
		ChunkBudget:   cfg.ChunkBudget,
		Concurrency:   cfg.Concurrency,
		Synthesis:     cfg.Synthesis,
		SummaryCap:    cfg.SummaryCap,
		TranslatedCap: cfg.TranslatedCap,
	})
	proc := processor.New(whisper, an)

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/supported-formats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"formats":   processor.SupportedFormats(),
			"languages": []types.Language{types.LangEnglish, types.LangHebrew, types.LangFrench, types.LangSpanish, types.LangArabic},
		})
	})

	// full flow: audio upload in, JSON report out
	mux.HandleFunc("/process-meeting", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "process-meeting")
		reqLog.Info("process request received")

		audio, filename, langCode, ok := readUpload(w, r, reqLog)
		if !ok {
			return
		}

		res, err := proc.ProcessMeeting(r.Context(), audio, filename, langCode)
		if err != nil {
			writeError(w, reqLog, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/analyze-transcript", analyzeTranscriptHandler(proc))

	mux.HandleFunc("/process-meeting/export-docx", exportHandler(proc, "docx", cfg))
	mux.HandleFunc("/process-meeting/export-pdf", exportHandler(proc, "pdf", cfg))
	mux.HandleFunc("/process-meeting/export-xlsx", exportHandler(proc, "xlsx", cfg))

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

var exportContentTypes = map[string]string{
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pdf":  "application/pdf",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// exportHandler runs the full flow, then renders the analysis in the
// requested format instead of returning JSON. The document is rendered
// into memory first so a render failure still produces an error status
// instead of a truncated download.
func exportHandler(proc *processor.Processor, format string, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "export-"+format)
		reqLog.Info("export request received")

		audio, filename, langCode, ok := readUpload(w, r, reqLog)
		if !ok {
			return
		}

		res, err := proc.ProcessMeeting(r.Context(), audio, filename, langCode)
		if err != nil {
			writeError(w, reqLog, err)
			return
		}

		var buf bytes.Buffer
		switch format {
		case "docx":
			err = document.RenderDocx(res.Analysis, &buf)
		case "pdf":
			err = document.RenderPDF(res.Analysis, cfg.PDFFontPath, &buf)
		case "xlsx":
			err = document.RenderXlsx(res.Analysis, &buf)
		}
		if err != nil {
			writeError(w, reqLog, &types.UpstreamError{Stage: types.StageRender, Chunk: -1, Err: err})
			return
		}

		w.Header().Set("Content-Type", exportContentTypes[format])
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("meeting-report-%s.%s", res.Analysis.Language, format)))
		if _, err := buf.WriteTo(w); err != nil {
			reqLog.WithError(err).Warn("client disconnected during download")
		}
	}
}

// analyzeTranscriptHandler skips transcription for callers that already
// hold the text.
func analyzeTranscriptHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "analyze-transcript")
		reqLog.Info("analyze request received")

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Transcript string `json:"transcript"`
			Language   string `json:"language"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
			reqLog.WithError(err).Warn("bad request body")
			http.Error(w, "expected JSON body with transcript and language", http.StatusBadRequest)
			return
		}

		analysis, err := proc.AnalyzeTranscript(r.Context(), req.Transcript, req.Language)
		if err != nil {
			writeError(w, reqLog, err)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	}
}

// readUpload parses the multipart form: "file" holds the audio, "language"
// the optional report language. Writes the error response itself.
func readUpload(w http.ResponseWriter, r *http.Request, reqLog *logrus.Entry) ([]byte, string, string, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, "", "", false
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		reqLog.WithError(err).Warn("bad multipart form")
		http.Error(w, "expected multipart form with a file field", http.StatusBadRequest)
		return nil, "", "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		reqLog.WithError(err).Warn("missing file field")
		http.Error(w, "missing file field", http.StatusBadRequest)
		return nil, "", "", false
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		reqLog.WithError(err).Warn("failed to read upload")
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return nil, "", "", false
	}
	return audio, header.Filename, r.FormValue("language"), true
}

// writeError maps pipeline errors onto HTTP status codes: validation
// failures are the caller's fault, upstream failures are 502s.
func writeError(w http.ResponseWriter, reqLog *logrus.Entry, err error) {
	var verr *processor.ValidationError
	if errors.As(err, &verr) {
		reqLog.WithError(err).Warn("rejected request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
		return
	}
	var upstream *types.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.Stage == types.StageRender {
			reqLog.WithError(err).Error("render failure")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to render report"})
			return
		}
		reqLog.WithError(err).Error("upstream failure")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": upstream.Error()})
		return
	}
	var malformed *types.MalformedOutputError
	if errors.As(err, &malformed) {
		reqLog.WithError(err).Error("unrecoverable model output")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "model returned unusable output"})
		return
	}
	reqLog.WithError(err).Error("processing failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
