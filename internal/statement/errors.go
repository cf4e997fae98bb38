package statement

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxRawTextLen bounds the model output carried inside errors.
const maxRawTextLen = 500

// ConfigurationError reports a missing or unusable upstream credential.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// UpstreamError reports a failed call to the AI service. StatusCode is zero when
// the request never got a response (network failure, timeout, cancellation).
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString("upstream error")
	if e.Provider != "" {
		b.WriteString(" (" + e.Provider + ")")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Body != "" {
		b.WriteString(": " + truncate(e.Body))
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedResponseError reports model output that does not parse into the
// expected shape. Stage names the call that produced it.
type MalformedResponseError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed %s response", e.Stage)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Raw != "" {
		msg += fmt.Sprintf(" (raw: %q)", e.Raw)
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func newMalformed(stage, raw string, err error) *MalformedResponseError {
	return &MalformedResponseError{Stage: stage, Raw: truncate(raw), Err: err}
}

// NewMalformedResponse builds a MalformedResponseError with the raw text truncated.
func NewMalformedResponse(stage, raw string, err error) error {
	return newMalformed(stage, raw, err)
}

// IncompleteResultError reports a parsed result missing required fields.
type IncompleteResultError struct {
	Missing []string
}

func (e *IncompleteResultError) Error() string {
	return "incomplete analysis result: missing " + strings.Join(e.Missing, ", ")
}

// truncate cuts s to at most maxRawTextLen bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxRawTextLen {
		return s
	}
	cut := maxRawTextLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
