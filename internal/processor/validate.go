package processor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"meeting-minutes-go/internal/types"
)

// allowedFormats maps an audio file extension (no dot) to the canonical
// form used downstream. "mpg" is folded into "mpeg".
var allowedFormats = map[string]string{
	"mp3":  "mp3",
	"wav":  "wav",
	"m4a":  "m4a",
	"aac":  "aac",
	"ogg":  "ogg",
	"flac": "flac",
	"webm": "webm",
	"mp4":  "mp4",
	"mpeg": "mpeg",
	"mpg":  "mpeg",
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateAudio checks the upload before anything touches the network.
// It returns the filename rewritten with the canonical extension.
func ValidateAudio(audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", &ValidationError{Field: "file", Reason: "empty audio payload"}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", &ValidationError{Field: "file", Reason: "filename has no extension"}
	}
	canonical, ok := allowedFormats[ext]
	if !ok {
		return "", &ValidationError{Field: "file", Reason: fmt.Sprintf("unsupported format %q, expected one of: %s", ext, SupportedFormatsString())}
	}

	if canonical != ext {
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + "." + canonical
	}
	return filename, nil
}

// ValidateLanguage parses the requested report language. Empty defaults to
// English.
func ValidateLanguage(code string) (types.Language, error) {
	if strings.TrimSpace(code) == "" {
		return types.LangEnglish, nil
	}
	lang := types.Language(strings.ToLower(strings.TrimSpace(code)))
	if !lang.IsSupported() {
		return "", &ValidationError{Field: "language", Reason: fmt.Sprintf("unsupported language %q, expected one of: en, he, fr, es, ar", code)}
	}
	return lang, nil
}

// SupportedFormats returns the accepted upload extensions, sorted.
func SupportedFormats() []string {
	out := make([]string, 0, len(allowedFormats))
	for ext := range allowedFormats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func SupportedFormatsString() string {
	return strings.Join(SupportedFormats(), ", ")
}
