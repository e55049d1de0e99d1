package logger

import (
	"io"
	"regexp"
)

const redacted = "[REDACTED]"

// Redactor masks secrets that reach the log through tool parameters,
// tool errors or execution records.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor with the default patterns
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// Provider API keys
			regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
			regexp.MustCompile(`AKIA[0-9A-Z]{16}`),

			// Authorization headers
			regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._~+/=-]+`),

			// JSON-encoded parameters, e.g. "api_key":"..."
			regexp.MustCompile(`(?i)("(?:api_key|apikey|password|passwd|secret|token|access_token)"\s*:\s*")[^"]*(")`),

			// key=value pairs
			regexp.MustCompile(`(?i)((?:api_key|apikey|password|passwd|secret|token)=)[^\s&"]+`),
		},
	}
}

// AddPattern adds a custom redaction pattern. Capture groups 1 and 2, when
// present, are kept around the masked value.
func (r *Redactor) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, re)
	return nil
}

// Redact masks every match in s
func (r *Redactor) Redact(s string) string {
	result := s
	for _, pattern := range r.patterns {
		switch pattern.NumSubexp() {
		case 0:
			result = pattern.ReplaceAllString(result, redacted)
		case 1:
			result = pattern.ReplaceAllString(result, "${1}"+redacted)
		default:
			result = pattern.ReplaceAllString(result, "${1}"+redacted+"${2}")
		}
	}
	return result
}

// Wrap returns a writer that redacts before writing to w
func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{
		writer:   w,
		redactor: r,
	}
}

type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

// Write reports len(p) on success so callers never see a short write for
// output that shrank or grew under redaction.
func (w *redactingWriter) Write(p []byte) (int, error) {
	if _, err := w.writer.Write([]byte(w.redactor.Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
