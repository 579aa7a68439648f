package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// Status
// =============================================================================

// Status is the review state of a module tile.
type Status string

// Status values accepted on the wire.
const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFlagged  Status = "flagged"
	StatusUrgent   Status = "urgent"
	StatusCritical Status = "critical"
)

// AllStatuses lists every valid status in display order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusComplete, StatusFlagged, StatusUrgent, StatusCritical}
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusComplete, StatusFlagged, StatusUrgent, StatusCritical:
		return true
	default:
		return false
	}
}

// ParseStatus converts a string to a Status value. Only the exact lowercase
// names are accepted, matching Module.Validate.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (want one of pending, complete, flagged, urgent, critical)", s)
	}
	return st, nil
}

// UnmarshalJSON rejects statuses outside the enumeration.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Tone is the display color family of a tile's count.
type Tone string

// Tones used by every renderer.
const (
	ToneGreen  Tone = "green"
	ToneCyan   Tone = "cyan"
	ToneYellow Tone = "yellow"
)

// Tone maps a status to its count color: complete is green, flagged is cyan,
// everything else is yellow.
func (s Status) Tone() Tone {
	switch s {
	case StatusComplete:
		return ToneGreen
	case StatusFlagged:
		return ToneCyan
	default:
		return ToneYellow
	}
}

// =============================================================================
// Module
// =============================================================================

// Module is a single compliance or dormancy metric tile.
type Module struct {
	Title      string `json:"title" yaml:"title"`
	Count      string `json:"count" yaml:"count"`
	Status     Status `json:"status" yaml:"status"`
	StatusText string `json:"statusText" yaml:"statusText"`
}

// Validate checks the invariants of a module record.
func (m Module) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return errors.New("title is required")
	}
	if !m.Status.Valid() {
		return fmt.Errorf("invalid status %q", m.Status)
	}
	return nil
}

// ModulesPayload is the body served by a module endpoint.
type ModulesPayload struct {
	Modules []Module `json:"modules"`
}

// CloneModules returns a copy of mods that shares no backing array.
func CloneModules(mods []Module) []Module {
	if mods == nil {
		return nil
	}
	out := make([]Module, len(mods))
	copy(out, mods)
	return out
}

// wireModule mirrors Module with pointer fields so missing keys can be told
// apart from empty values.
type wireModule struct {
	Title      *string         `json:"title"`
	Count      *string         `json:"count"`
	Status     json.RawMessage `json:"status"`
	StatusText *string         `json:"statusText"`
}

// DecodeModulesPayload reads and validates a modules payload.
// The payload must be an object with a "modules" array; each element must carry
// a non-empty title, string count and statusText, and a known status.
func DecodeModulesPayload(r io.Reader) (*ModulesPayload, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read modules payload: %w", err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{Path: "$", Reason: "payload is not a JSON object", Err: err}
	}

	raw, ok := envelope["modules"]
	if !ok {
		return nil, &DecodeError{Path: "$.modules", Reason: "missing required key"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, &DecodeError{Path: "$.modules", Reason: "must be an array", Err: err}
	}

	payload := &ModulesPayload{Modules: make([]Module, 0, len(items))}
	for i, item := range items {
		m, err := decodeModule(item)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Path = fmt.Sprintf("$.modules[%d]%s", i, de.Path)
				return nil, de
			}
			return nil, err
		}
		payload.Modules = append(payload.Modules, m)
	}

	return payload, nil
}

func decodeModule(item json.RawMessage) (Module, error) {
	var w wireModule
	dec := json.NewDecoder(bytes.NewReader(item))
	if err := dec.Decode(&w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Module{}, &DecodeError{Path: "." + typeErr.Field, Reason: "must be a " + typeErr.Type.String(), Err: err}
		}
		return Module{}, &DecodeError{Reason: "must be an object", Err: err}
	}

	switch {
	case w.Title == nil || strings.TrimSpace(*w.Title) == "":
		return Module{}, &DecodeError{Path: ".title", Reason: "missing required key"}
	case w.Count == nil:
		return Module{}, &DecodeError{Path: ".count", Reason: "missing required key"}
	case len(w.Status) == 0:
		return Module{}, &DecodeError{Path: ".status", Reason: "missing required key"}
	case w.StatusText == nil:
		return Module{}, &DecodeError{Path: ".statusText", Reason: "missing required key"}
	}

	var st Status
	if err := json.Unmarshal(w.Status, &st); err != nil {
		return Module{}, &DecodeError{Path: ".status", Reason: err.Error(), Err: err}
	}

	return Module{
		Title:      *w.Title,
		Count:      *w.Count,
		Status:     st,
		StatusText: *w.StatusText,
	}, nil
}
