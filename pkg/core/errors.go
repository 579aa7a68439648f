package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxErrorBodyText = 200

// DecodeError describes a payload that did not match the expected shape.
type DecodeError struct {
	// Path is a JSONPath-like pointer to the offending value (e.g. "$.modules[2].status").
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return "unexpected payload: " + e.Reason
	}
	return fmt.Sprintf("unexpected payload at %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusError is returned when a remote endpoint answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("request to %s failed with status %d", e.URL, e.Code)
	if body := strings.TrimSpace(e.Body); body != "" {
		if len(body) > maxErrorBodyText {
			cut := maxErrorBodyText
			for cut > 0 && !utf8.RuneStart(body[cut]) {
				cut--
			}
			body = body[:cut] + "..."
		}
		msg += ": " + body
	}
	return msg
}
